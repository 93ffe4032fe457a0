package auth

import (
	"encoding/json"
	"fmt"

	"github.com/dewei/MarketDiary/pkg/localstore"
	"github.com/dewei/MarketDiary/pkg/model"
)

// 本地存储中的固定键
const (
	tokenKey = "token"
	userKey  = "user"
)

// Credentials 登录凭证的本地持久化
// 令牌由外部认证服务签发，这里只负责保存和读取
type Credentials struct {
	store *localstore.Store
}

// NewCredentials 创建凭证存储
func NewCredentials(store *localstore.Store) *Credentials {
	return &Credentials{store: store}
}

// SaveToken 保存持有者令牌
func (c *Credentials) SaveToken(token string) error {
	return c.store.Set(tokenKey, token)
}

// Token 读取持有者令牌，未登录时返回空字符串
func (c *Credentials) Token() string {
	token, _, _ := c.store.Get(tokenKey)
	return token
}

// SaveUser 保存当前用户身份
func (c *Credentials) SaveUser(user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("序列化用户信息失败: %w", err)
	}
	return c.store.Set(userKey, string(data))
}

// User 读取当前用户身份，未登录时第二个返回值为 false
func (c *Credentials) User() (model.User, bool) {
	data, ok, err := c.store.Get(userKey)
	if err != nil || !ok {
		return model.User{}, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return model.User{}, false
	}
	return user, true
}

// Clear 清除登录凭证和用户身份
func (c *Credentials) Clear() error {
	if err := c.store.Delete(tokenKey); err != nil {
		return err
	}
	return c.store.Delete(userKey)
}
