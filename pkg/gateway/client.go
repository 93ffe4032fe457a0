package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dewei/MarketDiary/pkg/model"
)

// TokenProvider 提供当前的持有者凭证，允许登录态在客户端生命周期内变化
type TokenProvider func() string

// Client 日记远端存储的类型化 HTTP 客户端
// 每个请求都在 x-auth-token 头上附带持有者凭证
type Client struct {
	BaseURL string
	Token   TokenProvider
	Client  *http.Client
}

// NewClient 创建新的远端存储客户端
func NewClient(baseURL string, timeout time.Duration, token TokenProvider) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListEntries 获取当前用户的全部日记
func (c *Client) ListEntries(ctx context.Context) ([]model.Entry, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/entries", nil)
	if err != nil {
		return nil, err
	}

	var entries []model.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &ResponseShapeError{Detail: "invalid entry list response"}
	}
	return entries, nil
}

// GetEntry 按 ID 获取单条日记
func (c *Client) GetEntry(ctx context.Context, id string) (*model.Entry, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/entries/"+id, nil)
	if err != nil {
		return nil, err
	}

	var entry model.Entry
	if err := json.Unmarshal(body, &entry); err != nil || entry.ID == "" {
		return nil, &ResponseShapeError{Detail: "invalid entry response"}
	}
	return &entry, nil
}

// CreateEntry 创建日记
// 远端存储可能返回裸的日记对象，也可能返回 {entry: {...}} 包装，按顺序尝试两种形态
func (c *Client) CreateEntry(ctx context.Context, draft model.EntryDraft) (*model.Entry, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/entries", draft)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Entry *model.Entry `json:"entry"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Entry != nil && envelope.Entry.ID != "" {
		return envelope.Entry, nil
	}

	var entry model.Entry
	if err := json.Unmarshal(body, &entry); err == nil && entry.ID != "" {
		return &entry, nil
	}

	return nil, &ResponseShapeError{Detail: "Entry saved but invalid response format"}
}

// UpdateEntry 更新日记，返回更新后的完整日记
func (c *Client) UpdateEntry(ctx context.Context, id string, draft model.EntryDraft) (*model.Entry, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/entries/"+id, draft)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &EmptyResponseError{}
	}

	var entry model.Entry
	if err := json.Unmarshal(body, &entry); err != nil || entry.ID == "" {
		return nil, &ResponseShapeError{Detail: "invalid entry response"}
	}
	return &entry, nil
}

// DeleteEntry 删除日记，响应体不做要求
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/entries/"+id, nil)
	return err
}

// do 执行 HTTP 请求并返回响应体
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("序列化请求失败: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.Token != nil {
		if token := c.Token(); token != "" {
			httpReq.Header.Set("x-auth-token", token)
		}
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{
			Status:  resp.StatusCode,
			Message: serverMessage(body, resp.StatusCode),
		}
	}

	return body, nil
}

// serverMessage 从错误响应体提取用户可见的消息
// 提取顺序必须保持 message -> msg -> 状态文本，保证界面文案和既有行为一致
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Msg != "" {
			return payload.Msg
		}
	}
	return http.StatusText(status)
}
