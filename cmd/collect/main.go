package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/LJTian/NoticeHub/internal/collector"
	"github.com/LJTian/NoticeHub/internal/config"
	"github.com/LJTian/NoticeHub/internal/scheduler"
	"github.com/spf13/cobra"
)

var comicCount int

// 一个仅执行一次构建的命令行入口：把 feed 写到 stdout
var rootCmd = &cobra.Command{
	Use:   "collect",
	Short: "Build an RSS feed once and print it to stdout",
}

var ipuCmd = &cobra.Command{
	Use:   "ipu",
	Short: "Aggregate IPU notice pages into one feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(cfg *config.Config, logger *slog.Logger) *scheduler.Job {
			pages := &collector.CollyFetcher{
				UserAgent: cfg.UserAgent,
				Timeout:   cfg.FetchTimeout,
				Logger:    logger,
			}
			return scheduler.IPUJob(pages, cfg.FeedCap, logger)
		})
	},
}

var comicCmd = &cobra.Command{
	Use:     "comic",
	Aliases: []string{"dilbert"},
	Short:   "Build a feed of the latest daily comic strips",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(cfg *config.Config, logger *slog.Logger) *scheduler.Job {
			count := comicCount
			if count <= 0 {
				count = cfg.ComicCount
			}
			return scheduler.ComicJob(&collector.ComicFetcher{
				Count:     count,
				UserAgent: cfg.UserAgent,
				Timeout:   cfg.FetchTimeout,
				Logger:    logger,
			})
		})
	},
}

func init() {
	comicCmd.Flags().IntVarP(&comicCount, "count", "n", 0, "Number of strips (default COMIC_COUNT or 10)")
	rootCmd.AddCommand(ipuCmd, comicCmd)
	rootCmd.SilenceUsage = true
}

func run(ctx context.Context, newJob func(*config.Config, *slog.Logger) *scheduler.Job) error {
	cfg := config.Load()

	logger, closeLog, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	job := newJob(cfg, logger)
	out, err := job.Build(ctx, logger)
	if err != nil {
		// 渲染失败时不输出半份文档
		return err
	}

	if _, err := os.Stdout.Write(out.Document); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}

func main() {
	log.SetOutput(os.Stderr)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("collect failed: %v", err)
	}
}
