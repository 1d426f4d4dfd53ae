package collector

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
)

var ipuNoticePages = []struct {
	code string
	uri  string
}{
	{"ipu_notices", "http://ipu.ac.in/notices.php"},
	{"ipu_exam_notices", "http://ipu.ac.in/exam_notices.php"},
	{"ipu_exam_datesheet", "http://ipu.ac.in/exam_datesheet.php"},
	{"ipu_exam_results", "http://ipu.ac.in/exam_results.php"},
}

const ipuResultsURI = "http://164.100.158.135/ExamResults/ExamResultsmain.htm"

// SourcePage 绑定一个页面地址与它的列布局
type SourcePage struct {
	Code   string
	URI    string
	Layout Layout
	Pages  PageFetcher
	Logger *slog.Logger
}

func (p *SourcePage) Name() string {
	return p.Code
}

// Fetch 拉取页面并逐行提取；拉取失败只影响当前数据源
func (p *SourcePage) Fetch(ctx context.Context) ([]Notice, error) {
	rows, err := p.Pages.FetchRows(ctx, p.URI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Code, err)
	}
	return slices.Collect(p.Notices(rows)), nil
}

// Notices 按行惰性产出 Notice
func (p *SourcePage) Notices(rows []Row) iter.Seq[Notice] {
	logger := p.logger().With("source", p.Code, "uri", p.URI)
	return func(yield func(Notice) bool) {
		for i, row := range rows {
			n := Extract(row, p.Layout, logger.With("row", i))
			n.Source = p.Code
			if !yield(n) {
				return
			}
		}
	}
}

func (p *SourcePage) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// IPUSources 返回 4 个普通公告页与 1 个成绩公告页
func IPUSources(pages PageFetcher, logger *slog.Logger) []Fetcher {
	standard := StandardLayout()
	fetchers := make([]Fetcher, 0, len(ipuNoticePages)+1)
	for _, pg := range ipuNoticePages {
		fetchers = append(fetchers, &SourcePage{
			Code:   pg.code,
			URI:    pg.uri,
			Layout: standard,
			Pages:  pages,
			Logger: logger,
		})
	}
	fetchers = append(fetchers, &SourcePage{
		Code:   "ipu_results",
		URI:    ipuResultsURI,
		Layout: ResultsLayout(),
		Pages:  pages,
		Logger: logger,
	})
	return fetchers
}
