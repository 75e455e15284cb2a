package service

import (
	"context"
	"sync"

	"github.com/nodeiot/iotdb/internal/models"
)

// stubAgentStore 内存实现的探针存储，记录每次调用的参数
type stubAgentStore struct {
	mu     sync.Mutex
	agents []models.Agent
	nextID uint
	// updateRows 不为 nil 时覆盖 Update 返回的行数
	updateRows *int64
	err        error

	findByIDCalls []uint
	findOneCalls  []models.AgentFilter
	findManyCalls []models.AgentFilter
	createCalls   []models.Agent
	updateCalls   []models.AgentFilter
}

func newStubAgentStore(agents ...models.Agent) *stubAgentStore {
	s := &stubAgentStore{}
	for _, a := range agents {
		s.nextID++
		a.ID = s.nextID
		s.agents = append(s.agents, a)
	}
	return s
}

func matchAgent(a models.Agent, f models.AgentFilter) bool {
	if f.UUID != nil && a.UUID != *f.UUID {
		return false
	}
	if f.Username != nil && a.Username != *f.Username {
		return false
	}
	if f.Connected != nil && a.Connected != *f.Connected {
		return false
	}
	return true
}

func (s *stubAgentStore) FindByID(ctx context.Context, id uint) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findByIDCalls = append(s.findByIDCalls, id)
	if s.err != nil {
		return nil, s.err
	}
	for _, a := range s.agents {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s *stubAgentStore) FindOne(ctx context.Context, f models.AgentFilter) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findOneCalls = append(s.findOneCalls, f)
	if s.err != nil {
		return nil, s.err
	}
	for _, a := range s.agents {
		if matchAgent(a, f) {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s *stubAgentStore) FindMany(ctx context.Context, f models.AgentFilter) ([]models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findManyCalls = append(s.findManyCalls, f)
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.Agent, 0)
	for _, a := range s.agents {
		if matchAgent(a, f) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *stubAgentStore) Create(ctx context.Context, agent *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls = append(s.createCalls, *agent)
	if s.err != nil {
		return s.err
	}
	s.nextID++
	agent.ID = s.nextID
	s.agents = append(s.agents, *agent)
	return nil
}

func (s *stubAgentStore) Update(ctx context.Context, agent *models.Agent, f models.AgentFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls = append(s.updateCalls, f)
	if s.err != nil {
		return 0, s.err
	}
	if s.updateRows != nil {
		return *s.updateRows, nil
	}
	var rows int64
	for i, a := range s.agents {
		if matchAgent(a, f) {
			a.Name = agent.Name
			a.Username = agent.Username
			a.Hostname = agent.Hostname
			a.PID = agent.PID
			a.Connected = agent.Connected
			s.agents[i] = a
			rows++
		}
	}
	return rows, nil
}

// stubMetricStore 内存实现的指标存储，按 AgentID 关联 stubAgentStore 中的探针
type stubMetricStore struct {
	mu      sync.Mutex
	agents  *stubAgentStore
	metrics []models.Metric
	nextID  uint
	err     error

	createCalls   []models.Metric
	findManyCalls []models.MetricFilter
}

func newStubMetricStore(agents *stubAgentStore) *stubMetricStore {
	return &stubMetricStore{agents: agents}
}

func (s *stubMetricStore) Create(ctx context.Context, metric *models.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls = append(s.createCalls, *metric)
	if s.err != nil {
		return s.err
	}
	s.nextID++
	metric.ID = s.nextID
	s.metrics = append(s.metrics, *metric)
	return nil
}

func (s *stubMetricStore) FindMany(ctx context.Context, f models.MetricFilter) ([]models.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findManyCalls = append(s.findManyCalls, f)
	if s.err != nil {
		return nil, s.err
	}

	var agentID uint
	s.agents.mu.Lock()
	for _, a := range s.agents.agents {
		if a.UUID == f.AgentUUID {
			agentID = a.ID
		}
	}
	s.agents.mu.Unlock()

	result := make([]models.Metric, 0)
	if agentID == 0 {
		return result, nil
	}
	// 与 gorm 实现保持一致：新指标在前
	for i := len(s.metrics) - 1; i >= 0; i-- {
		m := s.metrics[i]
		if m.AgentID != agentID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}
