package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LJTian/NoticeHub/internal/processor"
	"github.com/robfig/cron/v3"
)

// Sink 保存构建结果，由 storage.Store 实现
type Sink interface {
	SaveBatch(feed string, items []processor.ProcessedNotice) error
	SaveDocument(ctx context.Context, feed string, doc []byte) error
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    []*Job
	sink    Sink
	logger  *slog.Logger
	timeout time.Duration
}

func New(spec string, jobs []*Job, sink Sink, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		jobs:    jobs,
		sink:    sink,
		logger:  logger,
		timeout: 5 * time.Minute,
	}

	_, err := c.AddFunc(spec, func() { s.RunOnce(context.Background()) })
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 启动后立即构建一轮，避免 feed 在首个 cron 周期内为空
	go s.RunOnce(context.Background())
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 构建所有 feed 并写入 Sink，各 feed 互不影响
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Info("start build job...")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runJob(ctx, j)
		}()
	}
	wg.Wait()

	s.logger.Info("build job done (all feeds)")
}

func (s *Scheduler) runJob(ctx context.Context, j *Job) {
	logger := s.logger.With("feed", j.Name)

	out, err := j.Build(ctx, s.logger)
	if err != nil {
		logger.Error("build feed failed", "err", err)
		return
	}
	if s.sink == nil {
		return
	}
	if err := s.sink.SaveBatch(j.Name, out.Notices); err != nil {
		logger.Error("save notices failed", "err", err)
	}
	if err := s.sink.SaveDocument(ctx, j.Name, out.Document); err != nil {
		logger.Error("save feed document failed", "err", err)
		return
	}
	logger.Info("feed saved", "items", len(out.Notices), "bytes", len(out.Document))
}
