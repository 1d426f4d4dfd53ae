package main

import (
	"log"

	"github.com/LJTian/NoticeHub/internal/api"
	"github.com/LJTian/NoticeHub/internal/collector"
	"github.com/LJTian/NoticeHub/internal/config"
	"github.com/LJTian/NoticeHub/internal/scheduler"
	"github.com/LJTian/NoticeHub/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger, closeLog, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer closeLog()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, logger)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}
	store.DocumentTTL = cfg.FeedCacheTTL

	pages := &collector.CollyFetcher{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Logger:    logger,
	}
	jobs := []*scheduler.Job{
		scheduler.IPUJob(pages, cfg.FeedCap, logger),
		scheduler.ComicJob(&collector.ComicFetcher{
			Count:     cfg.ComicCount,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.FetchTimeout,
			Logger:    logger,
		}),
	}

	// 确保各个 feed 存在
	for _, j := range jobs {
		if _, err := store.EnsureChannel(j.Name, j.Metadata.Title, j.Metadata.SelfLink); err != nil {
			log.Fatalf("ensure channel %s failed: %v", j.Name, err)
		}
	}

	s, err := scheduler.New(cfg.CronSpec, jobs, store, logger)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	r := gin.Default()
	api.NewServer(store).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	logger.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
