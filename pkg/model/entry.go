package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockKind 股票类别：全球市场或本地市场
type StockKind string

const (
	StockGlobal StockKind = "global"
	StockLocal  StockKind = "local"
)

// Stock 单只股票的当日记录
// PercentChange 始终由 Price 和 PriorDayPrice 推导，仅为展示和查询方便而持久化
type Stock struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Kind          StockKind `json:"kind"`
	Price         float64   `json:"price"`
	PriorDayPrice float64   `json:"priorDayPrice"`
	PercentChange float64   `json:"percentChange"`
}

// Headline 新闻标题
// Shared 为 true 且 URL 是合法的绝对 HTTP(S) 链接时才会进入公共信息流
// 分享是单向操作，本系统不提供取消分享
type Headline struct {
	ID     string `json:"id,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
	Shared bool   `json:"shared,omitempty"`
}

// Entry 一条日记：某个日期下的股票记录和新闻标题集合
// 归属于唯一的 OwnerID，权限校验由远端存储负责
type Entry struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         string     `gorm:"index;not null" json:"ownerId"`
	Date            Date       `gorm:"serializer:json;not null" json:"date"`
	Stocks          []Stock    `gorm:"serializer:json" json:"stocks"`
	LocalHeadlines  []Headline `gorm:"serializer:json" json:"localHeadlines"`
	GlobalHeadlines []Headline `gorm:"serializer:json" json:"globalHeadlines"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// BeforeCreate 入库前分配实体 ID
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// EntryDraft 创建/更新日记时发送的载荷
// 只包含客户端可以决定的字段，id、归属和时间戳由远端存储分配
type EntryDraft struct {
	Date            Date       `json:"date"`
	Stocks          []Stock    `json:"stocks"`
	LocalHeadlines  []Headline `json:"localHeadlines"`
	GlobalHeadlines []Headline `json:"globalHeadlines"`
}

// Draft 从完整日记提取创建/更新载荷，丢弃仅客户端可见的字段
func (e *Entry) Draft() EntryDraft {
	return EntryDraft{
		Date:            e.Date,
		Stocks:          e.Stocks,
		LocalHeadlines:  e.LocalHeadlines,
		GlobalHeadlines: e.GlobalHeadlines,
	}
}

// SharedHeadlines 返回日记中所有已公开的标题
func (e *Entry) SharedHeadlines() []Headline {
	var shared []Headline
	for _, h := range e.LocalHeadlines {
		if h.IsPublic() {
			shared = append(shared, h)
		}
	}
	for _, h := range e.GlobalHeadlines {
		if h.IsPublic() {
			shared = append(shared, h)
		}
	}
	return shared
}

// IsPublic 判断标题是否满足进入公共信息流的条件
func (h Headline) IsPublic() bool {
	return h.Shared && IsAbsoluteHTTPURL(h.URL)
}
