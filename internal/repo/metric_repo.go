package repo

import (
	"context"

	"github.com/nodeiot/iotdb/internal/models"
	"gorm.io/gorm"
)

type MetricRepo struct {
	db *gorm.DB
}

func NewMetricRepo(db *gorm.DB) *MetricRepo {
	return &MetricRepo{
		db: db,
	}
}

// Create 保存一条指标，AgentID 必须指向已存在的探针
func (r *MetricRepo) Create(ctx context.Context, metric *models.Metric) error {
	return r.db.WithContext(ctx).Omit("Agent").Create(metric).Error
}

// FindMany 查询某个探针的指标（按创建时间倒序），可选按类型过滤
func (r *MetricRepo) FindMany(ctx context.Context, f models.MetricFilter) ([]models.Metric, error) {
	metrics := make([]models.Metric, 0)
	query := r.db.WithContext(ctx).
		Model(&models.Metric{}).
		Select("metrics.*").
		Joins("JOIN agents ON agents.id = metrics.agent_id").
		Where("agents.uuid = ?", f.AgentUUID)
	if f.Type != "" {
		query = query.Where("metrics.type = ?", f.Type)
	}
	err := query.Order("metrics.created_at DESC").
		Order("metrics.id DESC").
		Find(&metrics).Error
	return metrics, err
}
