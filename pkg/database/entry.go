package database

import (
	"errors"
	"fmt"

	"github.com/dewei/MarketDiary/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound 日记不存在
var ErrNotFound = errors.New("entry not found")

// EntryDB 日记表的访问对象
type EntryDB struct {
	db *gorm.DB
}

// ListByOwner 按归属用户查询日记，新的在前
func (e *EntryDB) ListByOwner(ownerID string) ([]model.Entry, error) {
	var entries []model.Entry
	err := e.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("查询日记列表失败: %w", err)
	}
	return entries, nil
}

// ListAll 查询全部用户的日记，管理员视图使用
func (e *EntryDB) ListAll() ([]model.Entry, error) {
	var entries []model.Entry
	err := e.db.Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("查询日记列表失败: %w", err)
	}
	return entries, nil
}

// GetByID 按 ID 查询单条日记
func (e *EntryDB) GetByID(id string) (*model.Entry, error) {
	var entry model.Entry
	err := e.db.First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询日记失败: %w", err)
	}
	return &entry, nil
}

// Create 创建日记，为缺少 ID 的内嵌行分配 ID
func (e *EntryDB) Create(entry *model.Entry) error {
	assignRowIDs(entry)
	if err := e.db.Create(entry).Error; err != nil {
		return fmt.Errorf("创建日记失败: %w", err)
	}
	return nil
}

// Update 保存更新后的日记
func (e *EntryDB) Update(entry *model.Entry) error {
	assignRowIDs(entry)
	if err := e.db.Save(entry).Error; err != nil {
		return fmt.Errorf("更新日记失败: %w", err)
	}
	return nil
}

// Delete 按 ID 删除日记
func (e *EntryDB) Delete(id string) error {
	result := e.db.Delete(&model.Entry{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("删除日记失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// assignRowIDs 为没有 ID 的股票行和标题行分配 ID
func assignRowIDs(entry *model.Entry) {
	for i := range entry.Stocks {
		if entry.Stocks[i].ID == "" {
			entry.Stocks[i].ID = uuid.New().String()
		}
	}
	for i := range entry.LocalHeadlines {
		if entry.LocalHeadlines[i].ID == "" {
			entry.LocalHeadlines[i].ID = uuid.New().String()
		}
	}
	for i := range entry.GlobalHeadlines {
		if entry.GlobalHeadlines[i].ID == "" {
			entry.GlobalHeadlines[i].ID = uuid.New().String()
		}
	}
}
