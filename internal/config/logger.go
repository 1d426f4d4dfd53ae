package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger 按配置创建诊断日志。stdout 留给 feed 输出，所以默认写 stderr。
// 返回的 close 函数用于关闭日志文件。
func (c *Config) NewLogger() (*slog.Logger, func() error, error) {
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("config: open log file %s: %w", c.LogFile, err)
		}
		w = f
		closeFn = f.Close
	}

	logger := slog.New(slog.NewTextHandler(w, nil))
	for _, err := range c.warnings {
		logger.Warn("config value ignored", "err", err)
	}
	logger.Info("config loaded", "port", c.AppPort, "cron", c.CronSpec, "cap", c.FeedCap)

	return logger, closeFn, nil
}
