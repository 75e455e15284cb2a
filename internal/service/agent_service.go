package service

import (
	"context"
	"errors"

	"github.com/nodeiot/iotdb/internal/models"
	"go.uber.org/zap"
)

// ErrMissingUUID 探针缺少 uuid，无法作为 upsert 的键
var ErrMissingUUID = errors.New("agent uuid is required")

// AgentService 探针服务
type AgentService struct {
	logger *zap.Logger
	store  AgentStore
}

func NewAgentService(logger *zap.Logger, store AgentStore) *AgentService {
	return &AgentService{
		logger: logger,
		store:  store,
	}
}

// CreateOrUpdate 按 uuid 创建或更新探针
// 先查后写，不在事务中执行；同一 uuid 的并发首次创建由唯一索引兜底
func (s *AgentService) CreateOrUpdate(ctx context.Context, agent models.Agent) (*models.Agent, error) {
	if agent.UUID == "" {
		return nil, ErrMissingUUID
	}
	cond := models.AgentFilter{UUID: models.String(agent.UUID)}

	existingAgent, err := s.store.FindOne(ctx, cond)
	if err != nil {
		return nil, err
	}

	if existingAgent != nil {
		updated, err := s.store.Update(ctx, &agent, cond)
		if err != nil {
			return nil, err
		}
		if updated == 0 {
			s.logger.Debug("探针更新未影响任何行",
				zap.String("uuid", agent.UUID))
			return existingAgent, nil
		}
		s.logger.Debug("探针已更新",
			zap.String("uuid", agent.UUID),
			zap.Int64("rows", updated))
		return s.store.FindOne(ctx, cond)
	}

	if err := s.store.Create(ctx, &agent); err != nil {
		return nil, err
	}
	s.logger.Debug("探针已创建",
		zap.String("uuid", agent.UUID),
		zap.Uint("id", agent.ID))
	return &agent, nil
}

// FindByID 根据内部ID获取探针，不存在时返回 nil
func (s *AgentService) FindByID(ctx context.Context, id uint) (*models.Agent, error) {
	return s.store.FindByID(ctx, id)
}

// FindByUUID 根据 uuid 获取探针，不存在时返回 nil
func (s *AgentService) FindByUUID(ctx context.Context, uuid string) (*models.Agent, error) {
	return s.store.FindOne(ctx, models.AgentFilter{UUID: models.String(uuid)})
}

// FindAll 列出所有探针
func (s *AgentService) FindAll(ctx context.Context) ([]models.Agent, error) {
	return s.store.FindMany(ctx, models.AgentFilter{})
}

// FindConnected 列出所有在线探针
func (s *AgentService) FindConnected(ctx context.Context) ([]models.Agent, error) {
	return s.store.FindMany(ctx, models.AgentFilter{Connected: models.Bool(true)})
}

// FindByUsername 列出某个用户下的在线探针（固定附加 connected=true）
func (s *AgentService) FindByUsername(ctx context.Context, username string) ([]models.Agent, error) {
	return s.store.FindMany(ctx, models.AgentFilter{
		Username:  models.String(username),
		Connected: models.Bool(true),
	})
}
