package draft

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dewei/MarketDiary/pkg/localstore"
	"github.com/dewei/MarketDiary/pkg/model"
)

// 草稿键前缀，按用户 ID 区分
const keyPrefix = "cachedStocks-"

// Cache 每用户的未提交股票行草稿
// 只服务于"新建日记"表单：编辑已有日记时不写入；
// 提交成功后也不清除，草稿留到用户下次新建时仍可复用
type Cache struct {
	store *localstore.Store
}

// NewCache 创建草稿缓存
func NewCache(store *localstore.Store) *Cache {
	return &Cache{store: store}
}

// Save 覆盖写入用户的草稿
// 所有行都是默认内容（名称、代码为空且价格非正）时不写入，
// 避免刚清空的表单冲掉之前有用的草稿
func (c *Cache) Save(ownerID string, stocks []model.Stock) error {
	if !hasContent(stocks) {
		return nil
	}

	data, err := json.Marshal(stocks)
	if err != nil {
		return fmt.Errorf("序列化草稿失败: %w", err)
	}
	return c.store.Set(keyPrefix+ownerID, string(data))
}

// Load 读取用户的草稿，没有草稿时第二个返回值为 false
func (c *Cache) Load(ownerID string) ([]model.Stock, bool, error) {
	data, ok, err := c.store.Get(keyPrefix + ownerID)
	if err != nil || !ok {
		return nil, false, err
	}

	var stocks []model.Stock
	if err := json.Unmarshal([]byte(data), &stocks); err != nil {
		return nil, false, fmt.Errorf("解析草稿失败: %w", err)
	}
	if len(stocks) == 0 {
		return nil, false, nil
	}
	return stocks, true, nil
}

// Clear 删除用户的草稿
func (c *Cache) Clear(ownerID string) error {
	return c.store.Delete(keyPrefix + ownerID)
}

// hasContent 判断草稿里是否存在非默认内容的行
func hasContent(stocks []model.Stock) bool {
	for _, stock := range stocks {
		if strings.TrimSpace(stock.Name) != "" ||
			strings.TrimSpace(stock.Symbol) != "" ||
			stock.Price > 0 || stock.PriorDayPrice > 0 {
			return true
		}
	}
	return false
}
