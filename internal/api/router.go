package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/LJTian/NoticeHub/internal/storage"
	"github.com/gin-gonic/gin"
)

const rssContentType = "application/rss+xml; charset=utf-8"

// NoticeStore API 依赖的存储能力，由 storage.Store 实现
type NoticeStore interface {
	ListNotices(feed string, limit int) ([]storage.Notice, error)
	Document(ctx context.Context, feed string) ([]byte, error)
}

type Server struct {
	store NoticeStore
}

func NewServer(store NoticeStore) *Server {
	return &Server{store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/feeds/:name", s.feedDocument)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/notices", s.listNotices)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// feedDocument 返回最新构建的 RSS 文档，/feeds/ipu.xml 与 /feeds/ipu 等价
func (s *Server) feedDocument(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ".xml")

	doc, err := s.store.Document(c.Request.Context(), name)
	if errors.Is(err, storage.ErrNoDocument) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "feed not built yet",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.Data(http.StatusOK, rssContentType, doc)
}

func (s *Server) listNotices(c *gin.Context) {
	feed := c.Query("feed")

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := s.store.ListNotices(feed, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}
