package collector

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/sync/errgroup"
)

const (
	comicSiteURL      = "http://dilbert.com"
	comicDefaultCount = 10
	comicConcurrency  = 4
	comicDateLayout   = "2006-01-02"
)

var errNoComicImage = errors.New("strip page has no comic image")

// ComicFetcher 抓取最近 Count 天的每日漫画，每天一条 Notice，描述中内嵌图片
type ComicFetcher struct {
	SiteURL   string
	Count     int
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

func (c *ComicFetcher) Name() string {
	return "dilbert"
}

func (c *ComicFetcher) Fetch(ctx context.Context) ([]Notice, error) {
	logger := c.logger()

	latest, err := c.latestDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("dilbert: resolve latest strip: %w", err)
	}

	count := c.Count
	if count <= 0 {
		count = comicDefaultCount
	}

	// 每个 goroutine 只写自己的下标，无需加锁
	strips := make([]Notice, count)
	fetched := make([]bool, count)

	var g errgroup.Group
	g.SetLimit(comicConcurrency)
	for i := 0; i < count; i++ {
		date := latest.AddDate(0, 0, -i)
		g.Go(func() error {
			n, err := c.fetchStrip(ctx, date)
			if err != nil {
				logger.Warn("fetch strip failed", "date", date.Format(comicDateLayout), "err", err)
				return nil
			}
			strips[i] = n
			fetched[i] = true
			return nil
		})
	}
	_ = g.Wait()

	results := make([]Notice, 0, count)
	for i, ok := range fetched {
		if ok {
			results = append(results, strips[i])
		}
	}
	if len(results) == 0 {
		logger.Info("dilbert: no strips fetched")
	}
	return results, nil
}

// StripURI 返回某天漫画页地址
func (c *ComicFetcher) StripURI(date time.Time) string {
	return c.siteURL() + "/strip/" + date.Format(comicDateLayout)
}

func (c *ComicFetcher) latestDate(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	var href string
	col := c.newCollector()
	col.OnHTML("a[class*='comic-title-link']", func(e *colly.HTMLElement) {
		if href == "" {
			href = strings.TrimSpace(e.Attr("href"))
		}
	})
	if err := col.Visit(c.siteURL() + "/"); err != nil {
		return time.Time{}, err
	}

	href = strings.TrimSuffix(href, "/")
	if len(href) < len(comicDateLayout) {
		return time.Time{}, fmt.Errorf("unexpected latest strip link %q", href)
	}
	return time.Parse(comicDateLayout, href[len(href)-len(comicDateLayout):])
}

func (c *ComicFetcher) fetchStrip(ctx context.Context, date time.Time) (Notice, error) {
	if err := ctx.Err(); err != nil {
		return Notice{}, err
	}

	uri := c.StripURI(date)
	var title, image string

	col := c.newCollector()
	col.OnHTML("span.comic-title-name", func(e *colly.HTMLElement) {
		if title == "" {
			title = cleanText(e.Text)
		}
	})
	col.OnHTML("img[class*='img-comic']", func(e *colly.HTMLElement) {
		if image == "" {
			image = e.Request.AbsoluteURL(e.Attr("src"))
		}
	})
	if err := col.Visit(uri); err != nil {
		return Notice{}, err
	}

	if image == "" {
		return Notice{}, errNoComicImage
	}
	if title == "" {
		title = date.Format(titleDateLayout)
	}

	return Notice{
		Title:       toValidUTF8(title),
		Description: fmt.Sprintf(`<p><img src="%s"></p>`, html.EscapeString(image)),
		PublishedAt: date,
		Link:        uri,
		Source:      c.Name(),
		RawData: map[string]any{
			"image": image,
		},
	}, nil
}

func (c *ComicFetcher) newCollector() *colly.Collector {
	col := colly.NewCollector(colly.UserAgent(defaultUserAgent))
	if c.UserAgent != "" {
		col.UserAgent = c.UserAgent
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	col.SetRequestTimeout(timeout)
	return col
}

func (c *ComicFetcher) siteURL() string {
	if c.SiteURL != "" {
		return strings.TrimSuffix(c.SiteURL, "/")
	}
	return comicSiteURL
}

func (c *ComicFetcher) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
