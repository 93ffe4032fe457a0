package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App struct {
		Name     string `yaml:"name"`
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
		LogFile  string `yaml:"log_file"`
	} `yaml:"app"`

	Remote struct {
		BaseURL          string        `yaml:"base_url"`
		Timeout          time.Duration `yaml:"timeout"`
		DebounceInterval time.Duration `yaml:"debounce_interval"`
	} `yaml:"remote"`

	Local struct {
		StorePath   string `yaml:"store_path"`
		RefreshSpec string `yaml:"refresh_spec"`
	} `yaml:"local"`

	Database struct {
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"database"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`
}

// DefaultConfig 返回开箱即用的默认配置
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "MarketDiary"
	cfg.App.Env = "dev"
	cfg.App.LogLevel = "info"
	cfg.Remote.BaseURL = "http://localhost:5000"
	cfg.Remote.Timeout = 30 * time.Second
	cfg.Remote.DebounceInterval = 300 * time.Millisecond
	home, _ := os.UserHomeDir()
	cfg.Local.StorePath = filepath.Join(home, ".marketdiary", "local.db")
	cfg.Local.RefreshSpec = "@every 1m"
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Port = 5432
	cfg.Database.Postgres.User = "postgres"
	cfg.Database.Postgres.DBName = "marketdiary"
	cfg.Database.Postgres.SSLMode = "disable"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.API.Port = "5000"
	cfg.API.ReadTimeout = 10 * time.Second
	cfg.API.WriteTimeout = 10 * time.Second
	return cfg
}

// LoadConfig 从文件加载配置，文件不存在时返回默认配置
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			overrideFromEnv(config)
			return config, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量覆盖
	overrideFromEnv(config)

	return config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用配置
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		config.App.LogLevel = env
	}

	// 远端存储配置
	if env := os.Getenv("REMOTE_BASE_URL"); env != "" {
		config.Remote.BaseURL = env
	}

	// 数据库配置
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Postgres.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.Postgres.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.Postgres.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Postgres.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.Postgres.DBName = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}

	// API配置
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	if path := os.Getenv("MARKETDIARY_CONFIG"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}

	return filepath.Join(home, ".marketdiary", "config.yaml")
}
