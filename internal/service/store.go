package service

import (
	"context"

	"github.com/nodeiot/iotdb/internal/models"
)

// AgentStore 探针存储端口，repo.AgentRepo 为其 gorm 实现
type AgentStore interface {
	FindByID(ctx context.Context, id uint) (*models.Agent, error)
	// FindOne 不存在时返回 (nil, nil)
	FindOne(ctx context.Context, f models.AgentFilter) (*models.Agent, error)
	FindMany(ctx context.Context, f models.AgentFilter) ([]models.Agent, error)
	Create(ctx context.Context, agent *models.Agent) error
	// Update 返回受影响的行数
	Update(ctx context.Context, agent *models.Agent, f models.AgentFilter) (int64, error)
}

// MetricStore 指标存储端口
type MetricStore interface {
	Create(ctx context.Context, metric *models.Metric) error
	FindMany(ctx context.Context, f models.MetricFilter) ([]models.Metric, error)
}
