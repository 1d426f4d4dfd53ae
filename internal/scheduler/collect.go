package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LJTian/NoticeHub/internal/collector"
)

// Result 单个数据源的采集结果，Err 非空时 Notices 为空
type Result struct {
	Source  string
	Notices []collector.Notice
	Err     error
}

// Collect 并发拉取所有数据源，等待全部结束后返回（与 fetchers 顺序一致）。
// 单个数据源失败只记录日志，不影响其它数据源。
func Collect(ctx context.Context, fetchers []collector.Fetcher, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, len(fetchers))
	var wg sync.WaitGroup
	for i, f := range fetchers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := f.Name()
			logger.Info("fetch source", "source", name)

			items, err := f.Fetch(ctx)
			if err != nil {
				logger.Error("fetch source failed", "source", name, "err", err)
				results[i] = Result{Source: name, Err: err}
				return
			}
			if len(items) == 0 {
				logger.Warn("fetch source got 0 items", "source", name)
			}
			results[i] = Result{Source: name, Notices: items}
		}()
	}
	wg.Wait()

	return results
}
