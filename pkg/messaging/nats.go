package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dewei/MarketDiary/pkg/logger"
	"github.com/dewei/MarketDiary/pkg/model"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// 公共信息流的 Stream 与主题
const (
	feedStream  = "FEED_STREAM"
	feedSubject = "feed.shared"
)

// FeedEvent 标题进入公共信息流的事件
type FeedEvent struct {
	EntryID  string         `json:"entryId"`
	OwnerID  string         `json:"ownerId"`
	Headline model.Headline `json:"headline"`
	SharedAt time.Time      `json:"sharedAt"`
}

// FeedPublisher 公共信息流事件发布器
type FeedPublisher struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewFeedPublisher 创建信息流发布器
func NewFeedPublisher(natsURL string) (*FeedPublisher, error) {
	// 连接NATS
	nc, err := nats.Connect(natsURL,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Log.Warnf("NATS连接断开: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS重新连接成功")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	// 创建JetStream上下文
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	publisher := &FeedPublisher{
		conn:      nc,
		jetStream: js,
		ctx:       ctx,
		cancel:    cancel,
	}

	// 初始化信息流Stream
	if err := publisher.setupStream(); err != nil {
		logger.Log.Warnf("设置Stream失败: %v", err)
	}

	return publisher, nil
}

// setupStream 设置信息流Stream
func (p *FeedPublisher) setupStream() error {
	config := jetstream.StreamConfig{
		Name:        feedStream,
		Subjects:    []string{"feed.*"},
		Description: "公共信息流事件",
		Retention:   jetstream.LimitsPolicy,
		MaxMsgs:     10000,
		MaxBytes:    50 * 1024 * 1024,    // 50MB
		MaxAge:      30 * 24 * time.Hour, // 保留30天
	}

	_, err := p.jetStream.CreateOrUpdateStream(p.ctx, config)
	if err != nil {
		return fmt.Errorf("创建/更新Stream %s 失败: %w", feedStream, err)
	}
	return nil
}

// PublishShared 发布标题分享事件
func (p *FeedPublisher) PublishShared(event FeedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	_, err = p.jetStream.Publish(p.ctx, feedSubject, payload)
	if err != nil {
		return fmt.Errorf("发布消息到 %s 失败: %w", feedSubject, err)
	}

	logger.Log.Debugf("发布分享事件: entry=%s, headline=%s", event.EntryID, event.Headline.ID)
	return nil
}

// Close 关闭连接
func (p *FeedPublisher) Close() {
	p.cancel()
	if p.conn != nil {
		p.conn.Close()
	}
}

// IsConnected 检查连接状态
func (p *FeedPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
