package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig 应用配置
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"Database"`
	Log      LogConfig      `mapstructure:"Log"`
	Server   ServerConfig   `mapstructure:"Server"`
}

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Database string `mapstructure:"Database" validate:"required"` // 库名，sqlite 下为文件路径
	Username string `mapstructure:"Username"`
	Password string `mapstructure:"Password"`
	Host     string `mapstructure:"Host"`
	Port     int    `mapstructure:"Port" validate:"gte=0,lte=65535"`
	Dialect  string `mapstructure:"Dialect" validate:"oneof=postgres mysql sqlite"`
	SSLMode  string `mapstructure:"SSLMode"`
	// Setup 为 true 时删除并重建所有表（破坏性操作）
	// 不从配置文件或环境变量读取，只能由 setup、example 命令在确认后设置
	Setup bool `mapstructure:"-"`
	// AutoMigrate 为 true 时非破坏性地补齐表结构
	AutoMigrate bool `mapstructure:"AutoMigrate"`
	// Logging 为 true 时将 SQL 语句输出到 debug 日志
	Logging bool `mapstructure:"Logging"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"Level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"Format" validate:"oneof=console json"`
	File       string `mapstructure:"File"`
	MaxSize    int    `mapstructure:"MaxSize"`
	MaxBackups int    `mapstructure:"MaxBackups"`
	MaxAge     int    `mapstructure:"MaxAge"`
	Compress   bool   `mapstructure:"Compress"`
}

// ServerConfig 只读 HTTP 接口配置
type ServerConfig struct {
	Addr string `mapstructure:"Addr" validate:"required"`
}

// envBindings 配置项与环境变量的对应关系
var envBindings = map[string]string{
	"Database.Database":    "DB_NAME",
	"Database.Username":    "DB_USERNAME",
	"Database.Password":    "DB_PASS",
	"Database.Host":        "DB_HOST",
	"Database.Port":        "DB_PORT",
	"Database.Dialect":     "DB_DIALECT",
	"Database.SSLMode":     "DB_SSLMODE",
	"Database.AutoMigrate": "DB_AUTO_MIGRATE",
	"Database.Logging":     "DB_LOGGING",
	"Log.Level":            "LOG_LEVEL",
	"Log.Format":           "LOG_FORMAT",
	"Log.File":             "LOG_FILE",
	"Server.Addr":          "SERVER_ADDR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Database.Database", "nodeiot")
	v.SetDefault("Database.Username", "nodeiot")
	v.SetDefault("Database.Password", "nodeiot")
	v.SetDefault("Database.Host", "localhost")
	v.SetDefault("Database.Port", 0)
	v.SetDefault("Database.Dialect", "postgres")
	v.SetDefault("Database.SSLMode", "disable")
	v.SetDefault("Database.AutoMigrate", false)
	v.SetDefault("Database.Logging", false)

	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "console")
	v.SetDefault("Log.MaxSize", 100)
	v.SetDefault("Log.MaxBackups", 3)
	v.SetDefault("Log.MaxAge", 7)

	v.SetDefault("Server.Addr", ":8080")
}

// Load 读取配置，优先级：环境变量 > 配置文件 > 默认值
// path 为空时在 ./configs 和当前目录查找可选的 config.yaml
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Database.Dialect = strings.ToLower(cfg.Database.Dialect)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func Validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
