package database

import (
	"fmt"
	"time"

	"github.com/dewei/MarketDiary/pkg/config"
	"github.com/dewei/MarketDiary/pkg/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Postgres 日记存储的数据库连接
type Postgres struct {
	db *gorm.DB
}

// NewPostgres 创建新的数据库连接并迁移表结构
func NewPostgres(cfg *config.Config) (*Postgres, error) {
	dbCfg := cfg.Database.Postgres

	// 构建连接字符串
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.DBName, dbCfg.SSLMode,
	)

	// 连接数据库
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库连接失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 迁移表结构
	if err := db.AutoMigrate(&model.Entry{}); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close 关闭数据库连接
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Entry 返回日记访问对象
func (p *Postgres) Entry() *EntryDB {
	return &EntryDB{db: p.db}
}
