package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LJTian/NoticeHub/internal/processor"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	listCacheTTL       = 5 * time.Minute
	defaultDocumentTTL = time.Hour
	descriptionMaxLen  = 2000
)

// ErrNoDocument 该 feed 尚未构建或缓存已过期
var ErrNoDocument = errors.New("storage: feed document not available")

// Channel 描述一份 feed，例如 ipu / dilbert
type Channel struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Code     string `gorm:"size:64;uniqueIndex" json:"code"`
	Name     string `gorm:"size:128" json:"name"`
	SelfLink string `gorm:"size:256" json:"selfLink"`
	Status   string `gorm:"size:32;index" json:"status"` // active / disabled

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Notice struct {
	ID            string            `gorm:"primaryKey;size:40" json:"id"`
	Feed          string            `gorm:"size:64;index" json:"feed"`
	Source        string            `gorm:"size:64;index" json:"source"`
	Title         string            `gorm:"size:512" json:"title"`
	URL           string            `gorm:"size:1024;uniqueIndex" json:"url"`
	Description   string            `gorm:"type:text" json:"description"`
	PublishedAt   time.Time         `gorm:"index" json:"publishedAt"`
	PublishedDate string            `gorm:"size:10;index" json:"publishedDate"`
	ExtraData     datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB          *gorm.DB
	Redis       *redis.Client
	DocumentTTL time.Duration
	Logger      *slog.Logger
}

func NewStore(dsn, redisAddr string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}

	if err := db.AutoMigrate(&Channel{}, &Notice{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed", "addr", redisAddr, "err", err)
	}

	return &Store{DB: db, Redis: rdb, DocumentTTL: defaultDocumentTTL, Logger: logger}, nil
}

// EnsureChannel 确保某个 feed 存在
func (s *Store) EnsureChannel(code, name, selfLink string) (*Channel, error) {
	ch := &Channel{}
	if err := s.DB.Where("code = ?", code).First(ch).Error; err == nil {
		return ch, nil
	}

	ch = &Channel{
		Code:     code,
		Name:     name,
		SelfLink: selfLink,
		Status:   "active",
	}
	if err := s.DB.Create(ch).Error; err != nil {
		return nil, err
	}
	return ch, nil
}

// SaveBatch 保存一批公告，以 URL 作为幂等键，已存在时更新标题与描述
func (s *Store) SaveBatch(feed string, items []processor.ProcessedNotice) error {
	for _, it := range items {
		title := toValidUTF8(it.Title)
		description := truncateRunesDB(toValidUTF8(it.Description), descriptionMaxLen)
		pubDate := it.PublishedAt.UTC().Format("2006-01-02")

		n := &Notice{
			ID:            it.ID,
			Feed:          feed,
			Source:        it.Source,
			Title:         title,
			URL:           it.Link,
			Description:   description,
			PublishedAt:   it.PublishedAt,
			PublishedDate: pubDate,
			ExtraData:     datatypes.JSONMap(it.RawData),
		}

		if err := s.DB.Where("url = ?", it.Link).FirstOrCreate(n).Error; err != nil {
			return fmt.Errorf("storage: save %s: %w", it.Link, err)
		}
		if err := s.DB.Model(n).Updates(map[string]any{
			"title":          title,
			"description":    description,
			"published_at":   it.PublishedAt,
			"published_date": pubDate,
		}).Error; err != nil {
			s.logger().Warn("update notice failed", "url", it.Link, "err", err)
		}
	}
	return nil
}

// ListNotices 按日期倒序返回某个 feed 的公告，使用 Redis 做简单缓存
func (s *Store) ListNotices(feed string, limit int) ([]Notice, error) {
	if limit <= 0 || limit > processor.DefaultCap {
		limit = 20
	}

	ctx := context.Background()
	cacheKey := listCacheKey(feed, limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Notice
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Notice
	db := s.DB.Model(&Notice{})
	if feed != "" {
		db = db.Where("feed = ?", feed)
	}
	if err := db.Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}

// SaveDocument 缓存最新渲染好的 feed 文档
func (s *Store) SaveDocument(ctx context.Context, feed string, doc []byte) error {
	ttl := s.DocumentTTL
	if ttl <= 0 {
		ttl = defaultDocumentTTL
	}
	if err := s.Redis.Set(ctx, documentKey(feed), doc, ttl).Err(); err != nil {
		return fmt.Errorf("storage: cache document %s: %w", feed, err)
	}
	return nil
}

// Document 读取最新的 feed 文档
func (s *Store) Document(ctx context.Context, feed string) ([]byte, error) {
	bs, err := s.Redis.Get(ctx, documentKey(feed)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read document %s: %w", feed, err)
	}
	return bs, nil
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func listCacheKey(feed string, limit int) string {
	return fmt.Sprintf("notices:list:%s:%d", feed, limit)
}

func documentKey(feed string) string {
	return "feed:doc:" + feed
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
