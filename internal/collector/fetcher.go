package collector

import (
	"context"
	"time"
)

// Notice 统一采集后的基础结构，一条公告 / 一条漫画
type Notice struct {
	Title       string
	Description string
	// 零值表示日期解析失败，聚合时会被过滤掉
	PublishedAt time.Time
	// Link 同时是去重键
	Link    string
	Source  string
	RawData map[string]any
}

// Dated 报告日期是否解析成功
func (n Notice) Dated() bool {
	return !n.PublishedAt.IsZero()
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Notice, error)
}
