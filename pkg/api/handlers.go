package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dewei/MarketDiary/pkg/calc"
	"github.com/dewei/MarketDiary/pkg/database"
	"github.com/dewei/MarketDiary/pkg/logger"
	"github.com/dewei/MarketDiary/pkg/messaging"
	"github.com/dewei/MarketDiary/pkg/model"
	"github.com/gin-gonic/gin"
)

// 单条日记里各类行的数量上限，和客户端表单保持一致
const maxRows = 15

// Handlers API处理程序
type Handlers struct {
	entries *database.EntryDB
	feed    *messaging.FeedPublisher
}

// NewHandlers 创建新的API处理程序，feed 可以为 nil（不发布信息流事件）
func NewHandlers(entries *database.EntryDB, feed *messaging.FeedPublisher) *Handlers {
	return &Handlers{
		entries: entries,
		feed:    feed,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// ListEntries 查询当前用户的日记列表
func (h *Handlers) ListEntries(c *gin.Context) {
	user := currentUser(c)

	entries, err := h.entries.ListByOwner(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Server error",
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetEntry 查询单条日记，管理员可以查看任何用户的日记
func (h *Handlers) GetEntry(c *gin.Context) {
	user := currentUser(c)

	entry, err := h.entries.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if entry.OwnerID != user.ID && !user.IsAdmin() {
		// 对外不暴露他人日记的存在
		c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// CreateEntry 创建日记
// 响应使用 {entry: {...}} 包装，客户端对两种响应形态都兼容
func (h *Handlers) CreateEntry(c *gin.Context) {
	user := currentUser(c)

	var draft model.EntryDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if message, ok := validateDraft(&draft); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": message})
		return
	}

	entry := &model.Entry{
		OwnerID:         user.ID,
		Date:            draft.Date,
		Stocks:          draft.Stocks,
		LocalHeadlines:  draft.LocalHeadlines,
		GlobalHeadlines: draft.GlobalHeadlines,
	}

	if err := h.entries.Create(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// 创建时带入的已分享标题直接进入公共信息流
	h.publishShared(entry, nil)

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// UpdateEntry 更新日记
// 更新只允许归属用户本人；管理员的跨用户权限仅限查看和删除
func (h *Handlers) UpdateEntry(c *gin.Context) {
	user := currentUser(c)

	existing, err := h.entries.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if existing.OwnerID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
		return
	}

	var draft model.EntryDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if message, ok := validateDraft(&draft); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": message})
		return
	}

	// 记录更新前已公开的标题，保存后只发布新进入公共信息流的
	prevPublic := publicHeadlineIDs(existing)

	existing.Date = draft.Date
	existing.Stocks = draft.Stocks
	existing.LocalHeadlines = draft.LocalHeadlines
	existing.GlobalHeadlines = draft.GlobalHeadlines

	if err := h.entries.Update(existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	h.publishShared(existing, prevPublic)

	c.JSON(http.StatusOK, existing)
}

// DeleteEntry 删除日记，管理员可以删除任何用户的日记
func (h *Handlers) DeleteEntry(c *gin.Context) {
	user := currentUser(c)

	entry, err := h.entries.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if entry.OwnerID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"message": "Entry not found"})
		return
	}

	if err := h.entries.Delete(entry.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry removed"})
}

// GetFeed 公共信息流：全部用户已分享的标题
func (h *Handlers) GetFeed(c *gin.Context) {
	entries, err := h.entries.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	feed := make([]model.Headline, 0)
	for i := range entries {
		feed = append(feed, entries[i].SharedHeadlines()...)
	}

	c.JSON(http.StatusOK, gin.H{"data": feed})
}

// AdminListEntries 管理员查询全部用户的日记
func (h *Handlers) AdminListEntries(c *gin.Context) {
	user := currentUser(c)
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		return
	}

	entries, err := h.entries.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// validateDraft 服务端校验，规则和客户端预检一致
// 同时重算每行的涨跌幅，持久化的值不允许偏离两个价格的推导结果
func validateDraft(draft *model.EntryDraft) (string, bool) {
	if draft.Date.IsZero() {
		return "Date is required", false
	}
	if len(draft.Stocks) > maxRows {
		return "Maximum 15 stocks allowed", false
	}
	if len(draft.LocalHeadlines) > maxRows {
		return "Maximum 15 local headlines allowed", false
	}
	if len(draft.GlobalHeadlines) > maxRows {
		return "Maximum 15 global headlines allowed", false
	}

	valid := 0
	for i := range draft.Stocks {
		stock := &draft.Stocks[i]
		if strings.TrimSpace(stock.Name) == "" || strings.TrimSpace(stock.Symbol) == "" {
			continue
		}
		valid++

		if stock.Price <= 0 || stock.PriorDayPrice <= 0 {
			return "All stocks must have valid price and one-day price values greater than zero", false
		}
		stock.PercentChange = calc.PercentChange(stock.Price, stock.PriorDayPrice)
	}

	if valid == 0 {
		return "At least one stock with name and symbol is required", false
	}

	return "", true
}

// publicHeadlineIDs 收集日记里已公开标题的 ID
func publicHeadlineIDs(entry *model.Entry) map[string]bool {
	ids := make(map[string]bool)
	for _, h := range entry.SharedHeadlines() {
		ids[h.ID] = true
	}
	return ids
}

// publishShared 把新进入公共信息流的标题发布到消息系统
// 发布失败只记日志，不影响请求本身
func (h *Handlers) publishShared(entry *model.Entry, prevPublic map[string]bool) {
	if h.feed == nil {
		return
	}

	for _, headline := range entry.SharedHeadlines() {
		if prevPublic != nil && prevPublic[headline.ID] {
			continue
		}
		event := messaging.FeedEvent{
			EntryID:  entry.ID,
			OwnerID:  entry.OwnerID,
			Headline: headline,
			SharedAt: time.Now(),
		}
		if err := h.feed.PublishShared(event); err != nil {
			logger.Log.Warnf("发布分享事件失败: %v", err)
		}
	}
}
