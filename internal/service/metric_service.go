package service

import (
	"context"
	"errors"

	"github.com/nodeiot/iotdb/internal/models"
	"go.uber.org/zap"
)

// ErrAgentNotFound 指标所属的探针不存在
var ErrAgentNotFound = errors.New("agent not found")

// MetricService 指标服务，所有操作都限定在某个探针下
type MetricService struct {
	logger  *zap.Logger
	agents  AgentStore
	metrics MetricStore
}

func NewMetricService(logger *zap.Logger, agents AgentStore, metrics MetricStore) *MetricService {
	return &MetricService{
		logger:  logger,
		agents:  agents,
		metrics: metrics,
	}
}

// Create 为 uuid 对应的探针保存一条指标
func (s *MetricService) Create(ctx context.Context, agentUUID string, metric models.Metric) (*models.Metric, error) {
	agent, err := s.agents.FindOne(ctx, models.AgentFilter{UUID: models.String(agentUUID)})
	if err != nil {
		return nil, err
	}
	if agent == nil {
		s.logger.Warn("探针不存在，丢弃指标",
			zap.String("uuid", agentUUID),
			zap.String("type", metric.Type))
		return nil, ErrAgentNotFound
	}

	metric.ID = 0
	metric.AgentID = agent.ID
	if err := s.metrics.Create(ctx, &metric); err != nil {
		return nil, err
	}
	return &metric, nil
}

// FindByAgentUUID 查询探针的全部指标
func (s *MetricService) FindByAgentUUID(ctx context.Context, agentUUID string) ([]models.Metric, error) {
	return s.metrics.FindMany(ctx, models.MetricFilter{AgentUUID: agentUUID})
}

// FindByTypeAgentUUID 查询探针某一类型的指标
func (s *MetricService) FindByTypeAgentUUID(ctx context.Context, typ, agentUUID string) ([]models.Metric, error) {
	return s.metrics.FindMany(ctx, models.MetricFilter{
		AgentUUID: agentUUID,
		Type:      typ,
	})
}
