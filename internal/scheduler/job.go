package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LJTian/NoticeHub/internal/collector"
	"github.com/LJTian/NoticeHub/internal/feed"
	"github.com/LJTian/NoticeHub/internal/processor"
)

// Job 描述一份 feed：由哪些数据源组成、频道信息以及条目上限
type Job struct {
	Name     string
	Metadata feed.Metadata
	Fetchers []collector.Fetcher
	Cap      int
}

// Output 一次构建的产物
type Output struct {
	Name     string
	Notices  []processor.ProcessedNotice
	Document []byte
	Failed   []string
}

// Build 采集 → 聚合 → 渲染。只有渲染失败会返回错误，数据源失败仅体现在 Failed 中。
func (j *Job) Build(ctx context.Context, logger *slog.Logger) (*Output, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("feed", j.Name)

	results := Collect(ctx, j.Fetchers, logger)

	out := &Output{Name: j.Name}
	batches := make([][]collector.Notice, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			out.Failed = append(out.Failed, r.Source)
			continue
		}
		batches = append(batches, r.Notices)
	}

	agg := processor.NewAggregator(j.Cap, logger)
	out.Notices = agg.Process(batches...)

	doc, err := feed.Render(processor.Notices(out.Notices), j.Metadata)
	if err != nil {
		return nil, fmt.Errorf("scheduler: render %s: %w", j.Name, err)
	}
	out.Document = doc

	logger.Info("feed built", "items", len(out.Notices), "failed_sources", len(out.Failed))
	return out, nil
}

// IPUJob 汇总 IPU 各公告页
func IPUJob(pages collector.PageFetcher, limit int, logger *slog.Logger) *Job {
	return &Job{
		Name: "ipu",
		Metadata: feed.Metadata{
			Title:       "IPU Notices / Circulars",
			Description: "Aggregate RSS feed of circulars uploaded to various ipu websites.",
			Link:        "http://prajjwal.com",
			SelfLink:    "http://rss.prajjwal.com/ipu.xml",
		},
		Fetchers: collector.IPUSources(pages, logger),
		Cap:      limit,
	}
}

// ComicJob 最近 count 天的每日漫画
func ComicJob(comics *collector.ComicFetcher) *Job {
	return &Job{
		Name: "dilbert",
		Metadata: feed.Metadata{
			Title:       "Dilbert Comics",
			Description: "Custom RSS Feed",
			Link:        "http://dilbert.com",
			SelfLink:    "http://rss.prajjwal.com/dilbert.xml",
		},
		Fetchers: []collector.Fetcher{comics},
	}
}
