package migrate

import (
	"context"
	"fmt"

	"github.com/nodeiot/iotdb/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Up 非破坏性地创建或补齐 agents、metrics 表及外键
func Up(ctx context.Context, logger *zap.Logger, db *gorm.DB) error {
	logger.Info("开始同步表结构")

	// agents 必须先于 metrics 创建，外键依赖它
	if err := db.WithContext(ctx).AutoMigrate(&models.Agent{}, &models.Metric{}); err != nil {
		logger.Error("同步表结构失败", zap.Error(err))
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("表结构同步完成")
	return nil
}

// Recreate 删除 agents、metrics 表后重新创建，会清空全部数据
func Recreate(ctx context.Context, logger *zap.Logger, db *gorm.DB) error {
	logger.Warn("删除数据表", zap.Strings("tables", []string{"metrics", "agents"}))

	migrator := db.WithContext(ctx).Migrator()
	// 先删子表，避免外键约束阻止删除
	for _, model := range []interface{}{&models.Metric{}, &models.Agent{}} {
		if !migrator.HasTable(model) {
			continue
		}
		if err := migrator.DropTable(model); err != nil {
			logger.Error("删除数据表失败", zap.Error(err))
			return fmt.Errorf("drop table: %w", err)
		}
	}

	return Up(ctx, logger, db)
}
