package main

import (
	"github.com/dewei/MarketDiary/pkg/api"
	"github.com/dewei/MarketDiary/pkg/config"
	"github.com/dewei/MarketDiary/pkg/database"
	"github.com/dewei/MarketDiary/pkg/logger"
	"github.com/dewei/MarketDiary/pkg/messaging"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig(config.GetDefaultConfigPath())
	if err != nil {
		panic(err)
	}

	// 初始化日志
	if err := logger.Init(cfg.App.LogLevel, cfg.App.LogFile); err != nil {
		panic(err)
	}
	logger.Log.Info("启动日记存储服务...")

	// 连接数据库
	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.Fatalf("初始化数据库失败: %v", err)
	}
	defer db.Close()

	// 连接NATS，失败时继续运行但不发布信息流事件
	var feed *messaging.FeedPublisher
	if cfg.NATS.URL != "" {
		feed, err = messaging.NewFeedPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Log.Warnf("连接NATS失败，信息流事件不可用: %v", err)
		} else {
			defer feed.Close()
		}
	}

	// 创建API处理程序
	handlers := api.NewHandlers(db.Entry(), feed)

	// 创建并启动服务器
	server := api.NewServer(cfg.API.Port, cfg.API.ReadTimeout, cfg.API.WriteTimeout)
	server.SetupRoutes(handlers)
	server.Start()
}
