package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	rowSelector      = "table tbody tr"
	defaultUserAgent = "NoticeHubBot/1.0"
	defaultTimeout   = 20 * time.Second
)

// Row 对应表格中的一行：Cells 为各 td 的文本，Href 为行内第一个 a 标签的 href
type Row struct {
	Cells     []string
	Href      string
	HasAnchor bool
}

// Cell 返回第 i 列的文本
func (r Row) Cell(i int) (string, error) {
	if i < 0 || i >= len(r.Cells) {
		return "", fmt.Errorf("column %d of %d: %w", i, len(r.Cells), errMissingCell)
	}
	return r.Cells[i], nil
}

// PageFetcher 拉取页面并解析出表格行（网络 + HTML 解析边界）
type PageFetcher interface {
	FetchRows(ctx context.Context, uri string) ([]Row, error)
}

// CollyFetcher 基于 colly 的 PageFetcher，colly 负责编码探测与超时
type CollyFetcher struct {
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

func (f *CollyFetcher) FetchRows(ctx context.Context, uri string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.userAgent()),
		colly.DetectCharset(),
	)
	c.SetRequestTimeout(f.timeout())

	rows := make([]Row, 0, 64)
	c.OnHTML(rowSelector, func(e *colly.HTMLElement) {
		rows = append(rows, rowFromSelection(e.DOM))
	})

	if err := c.Visit(uri); err != nil {
		return nil, fmt.Errorf("collector: visit %s: %w", uri, err)
	}
	c.Wait()

	if len(rows) == 0 {
		f.logger().Info("page has no table rows", "uri", uri)
	}
	return rows, nil
}

func (f *CollyFetcher) userAgent() string {
	if f.UserAgent != "" {
		return f.UserAgent
	}
	return defaultUserAgent
}

func (f *CollyFetcher) timeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return defaultTimeout
}

func (f *CollyFetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// ParseRows 从原始 HTML 中解析表格行，与 CollyFetcher 使用同一选择器
func ParseRows(r io.Reader) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("collector: parse html: %w", err)
	}

	var rows []Row
	doc.Find(rowSelector).Each(func(_ int, s *goquery.Selection) {
		rows = append(rows, rowFromSelection(s))
	})
	return rows, nil
}

func rowFromSelection(s *goquery.Selection) Row {
	var row Row
	s.Find("td").Each(func(_ int, td *goquery.Selection) {
		row.Cells = append(row.Cells, td.Text())
	})

	if a := s.Find("a").First(); a.Length() > 0 {
		row.HasAnchor = true
		href, _ := a.Attr("href")
		row.Href = strings.TrimSpace(href)
	}
	return row
}
