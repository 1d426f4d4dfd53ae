package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	FeedCap      int
	ComicCount   int
	FetchTimeout time.Duration
	UserAgent    string
	FeedCacheTTL time.Duration

	// LogFile 非空时诊断日志写入该文件，否则写到 stderr
	LogFile string

	// 加载时发现的非法取值，由 NewLogger 写入诊断日志
	warnings []error
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=noticehub password=noticehub dbname=noticehub port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6380"),
		CronSpec:    getEnv("CRON_SPEC", "*/30 * * * *"),
		UserAgent:   getEnv("USER_AGENT", "NoticeHubBot/1.0"),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	var err error
	if cfg.FeedCap, err = getEnvInt("FEED_CAP", 1000); err != nil {
		cfg.warnings = append(cfg.warnings, err)
	}
	if cfg.ComicCount, err = getEnvInt("COMIC_COUNT", 10); err != nil {
		cfg.warnings = append(cfg.warnings, err)
	}
	if cfg.FetchTimeout, err = getEnvDuration("FETCH_TIMEOUT", 20*time.Second); err != nil {
		cfg.warnings = append(cfg.warnings, err)
	}
	if cfg.FeedCacheTTL, err = getEnvDuration("FEED_CACHE_TTL", time.Hour); err != nil {
		cfg.warnings = append(cfg.warnings, err)
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt 非法或非正数时返回默认值，并附带说明原因的错误
func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("config: invalid %s=%q, using %d", key, v, def)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("config: invalid %s=%q, using %s", key, v, def)
	}
	return d, nil
}
