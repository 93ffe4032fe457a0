package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dewei/MarketDiary/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Server 日记存储API服务器
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

// NewServer 创建新的API服务器
func NewServer(port string, readTimeout, writeTimeout time.Duration) *Server {
	router := gin.New()

	// 设置中间件
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return &Server{
		router: router,
		srv:    srv,
	}
}

// SetupRoutes 设置路由
func (s *Server) SetupRoutes(handlers *Handlers) {
	// 健康检查
	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/ready", handlers.ReadinessCheck)

	// 公共信息流，无需认证
	s.router.GET("/api/feed", handlers.GetFeed)

	// 日记接口，需要持有者凭证
	entries := s.router.Group("/api/entries")
	entries.Use(AuthRequired())
	{
		entries.GET("", handlers.ListEntries)
		entries.GET("/:id", handlers.GetEntry)
		entries.POST("", handlers.CreateEntry)
		entries.PUT("/:id", handlers.UpdateEntry)
		entries.DELETE("/:id", handlers.DeleteEntry)
	}

	// 管理员接口
	admin := s.router.Group("/api/admin")
	admin.Use(AuthRequired())
	{
		admin.GET("/entries", handlers.AdminListEntries)
	}
}

// Start 启动服务器并等待中断信号
func (s *Server) Start() {
	// 在goroutine中启动服务器
	go func() {
		logger.Log.Infof("API服务器启动在 %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("正在关闭服务器...")

	// 设置超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭
	if err := s.srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("服务器关闭失败: %v", err)
	}

	logger.Log.Info("服务器已关闭")
}
