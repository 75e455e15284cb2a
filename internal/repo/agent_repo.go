package repo

import (
	"context"
	"errors"

	"github.com/nodeiot/iotdb/internal/models"
	"gorm.io/gorm"
)

// agentUpdateColumns 更新时显式写入的列，保证 connected=false 等零值也能落库
var agentUpdateColumns = []string{"name", "username", "hostname", "pid", "connected"}

// AgentRepo 探针数据访问层
type AgentRepo struct {
	db *gorm.DB
}

// NewAgentRepo 创建仓库
func NewAgentRepo(db *gorm.DB) *AgentRepo {
	return &AgentRepo{db: db}
}

func (r *AgentRepo) where(ctx context.Context, f models.AgentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Agent{})
	if f.UUID != nil {
		query = query.Where("uuid = ?", *f.UUID)
	}
	if f.Username != nil {
		query = query.Where("username = ?", *f.Username)
	}
	if f.Connected != nil {
		query = query.Where("connected = ?", *f.Connected)
	}
	return query
}

// FindByID 根据内部自增ID获取探针，不存在时返回 nil
func (r *AgentRepo) FindByID(ctx context.Context, id uint) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindOne 按条件获取单个探针，不存在时返回 nil
func (r *AgentRepo) FindOne(ctx context.Context, f models.AgentFilter) (*models.Agent, error) {
	var agent models.Agent
	err := r.where(ctx, f).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindMany 按条件查询探针列表，空条件返回全部
func (r *AgentRepo) FindMany(ctx context.Context, f models.AgentFilter) ([]models.Agent, error) {
	agents := make([]models.Agent, 0)
	err := r.where(ctx, f).Order("id ASC").Find(&agents).Error
	return agents, err
}

// Create 创建探针
func (r *AgentRepo) Create(ctx context.Context, agent *models.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

// Update 按条件更新探针描述字段，返回受影响的行数
func (r *AgentRepo) Update(ctx context.Context, agent *models.Agent, f models.AgentFilter) (int64, error) {
	if f == (models.AgentFilter{}) {
		return 0, gorm.ErrMissingWhereClause
	}
	result := r.where(ctx, f).
		Select(agentUpdateColumns).
		Updates(agent)
	return result.RowsAffected, result.Error
}
