package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/nodeiot/iotdb/internal/config"
	applog "github.com/nodeiot/iotdb/internal/logger"
	"github.com/nodeiot/iotdb/internal/migrate"
	"github.com/nodeiot/iotdb/internal/repo"
	"github.com/nodeiot/iotdb/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// DB 数据库句柄及绑定在其上的两个访问模块，进程生命周期内复用
type DB struct {
	Agent  *service.AgentService
	Metric *service.MetricService

	db *gorm.DB
}

// Open 建立连接、按需同步表结构，并返回绑定好的访问模块
// cfg.Setup 为 true 时会删除并重建全部表
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("连接数据库",
		zap.String("dialect", cfg.Dialect),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: applog.NewGormLogger(logger, cfg.Logging),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := newDB(gdb, logger)
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	switch {
	case cfg.Setup:
		err = migrate.Recreate(ctx, logger, gdb)
	case cfg.AutoMigrate:
		err = migrate.Up(ctx, logger, gdb)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("数据库就绪", zap.String("dialect", cfg.Dialect))
	return db, nil
}

func newDB(gdb *gorm.DB, logger *zap.Logger) *DB {
	agentRepo := repo.NewAgentRepo(gdb)
	metricRepo := repo.NewMetricRepo(gdb)
	return &DB{
		Agent:  service.NewAgentService(logger.Named("agent"), agentRepo),
		Metric: service.NewMetricService(logger.Named("metric"), agentRepo, metricRepo),
		db:     gdb,
	}
}

// Ping 检查数据库连接
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dialector 根据配置构造 gorm 方言
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Dialect) {
	case DialectPostgres:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, sslMode)
		return postgres.Open(dsn), nil
	case DialectMySQL:
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.Username, cfg.Password, cfg.Host, port, cfg.Database)
		return mysql.Open(dsn), nil
	case DialectSQLite:
		return sqlite.Open(SQLiteDSN(cfg.Database)), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
}

// SQLiteDSN 为 sqlite 文件路径追加外键约束开关
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}
