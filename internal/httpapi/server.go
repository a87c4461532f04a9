// Package httpapi поднимает служебный HTTP API: здоровье, метрики Prometheus
// и read-only доступ к таблицам лидеров и карточкам пользователей.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/features/dabs"
	"serotonyl.ru/dabs-bot/internal/metrics"
)

// Economy: то, что API читает из экономики.
type Economy interface {
	Leaderboard(ctx context.Context, key dabs.SortKey, board dabs.Board) ([]dabs.Entry, error)
	Check(ctx context.Context, userID, targetID string, detailed bool) (*dabs.CheckResult, error)
}

// Names: отображаемые имена участников.
type Names interface {
	DisplayName(ctx context.Context, userID int64) string
}

// Server: HTTP-сервер API.
type Server struct {
	http *http.Server
}

// NewRouter собирает gin-роутер со всеми маршрутами.
func NewRouter(economy Economy, names Names) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handlers{economy: economy, names: names}
	router.GET("/healthz", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/leaderboard", h.leaderboard)
		api.GET("/users/:id", h.user)
	}
	return router
}

// NewServer создаёт сервер на addr.
func NewServer(addr string, economy Economy, names Names) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(economy, names),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start слушает порт в фоне. Ошибка старта только логируется: бот работает и без API.
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.http.Addr).Info("HTTP API запущен")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP API упал")
		}
	}()
}

// Shutdown дожидается текущих запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestLogger пишет запросы в logrus вместо стандартного логгера gin.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"took":   time.Since(start),
		}).Debug("HTTP запрос")
	}
}
