package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"sort"

	"github.com/LJTian/NoticeHub/internal/collector"
)

// DefaultCap 一份 feed 最多保留的条目数
const DefaultCap = 1000

// ProcessedNotice 是写入存储层 / 渲染前的统一结构
type ProcessedNotice struct {
	ID string
	collector.Notice
}

// Aggregator 合并多个数据源的结果：过滤无日期条目、按日期倒序、按链接去重、截断
type Aggregator struct {
	Cap    int
	Logger *slog.Logger
}

func NewAggregator(limit int, logger *slog.Logger) *Aggregator {
	return &Aggregator{Cap: limit, Logger: logger}
}

func (a *Aggregator) Process(batches ...[]collector.Notice) []ProcessedNotice {
	var merged []collector.Notice
	for _, b := range batches {
		merged = append(merged, b...)
	}

	dated := make([]collector.Notice, 0, len(merged))
	for _, n := range merged {
		if !n.Dated() {
			continue
		}
		dated = append(dated, n)
	}
	dropped := len(merged) - len(dated)

	// 同一日期保持输入顺序
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].PublishedAt.After(dated[j].PublishedAt)
	})

	limit := a.cap()
	out := make([]ProcessedNotice, 0, min(len(dated), limit))
	seen := make(map[string]struct{}, len(dated))
	for _, n := range dated {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[n.Link]; ok {
			continue
		}
		seen[n.Link] = struct{}{}
		out = append(out, ProcessedNotice{ID: hashURL(n.Link), Notice: n})
	}

	a.logger().Info("aggregated notices",
		"merged", len(merged), "undated", dropped, "kept", len(out), "cap", limit)
	return out
}

func (a *Aggregator) cap() int {
	if a.Cap > 0 {
		return a.Cap
	}
	return DefaultCap
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Notices 去掉 ID，按原顺序返回
func Notices(items []ProcessedNotice) []collector.Notice {
	out := make([]collector.Notice, len(items))
	for i, it := range items {
		out[i] = it.Notice
	}
	return out
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}
