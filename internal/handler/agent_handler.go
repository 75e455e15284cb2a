package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nodeiot/iotdb/internal/models"
	"github.com/nodeiot/iotdb/internal/service"
	"go.uber.org/zap"
)

// AgentHandler 探针与指标的只读接口
type AgentHandler struct {
	logger  *zap.Logger
	agents  *service.AgentService
	metrics *service.MetricService
	pinger  Pinger
}

// Pinger 数据库连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewAgentHandler 创建处理器
func NewAgentHandler(logger *zap.Logger, agents *service.AgentService, metrics *service.MetricService, pinger Pinger) *AgentHandler {
	return &AgentHandler{
		logger:  logger,
		agents:  agents,
		metrics: metrics,
		pinger:  pinger,
	}
}

// Register 注册路由
func (h *AgentHandler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/agents", h.ListAgents)
	api.GET("/agents/:uuid", h.GetAgent)
	api.GET("/agents/:uuid/metrics", h.ListMetrics)
}

// ListAgents 查询探针列表
// GET /api/agents?connected=true&username=xxx
func (h *AgentHandler) ListAgents(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		agents []models.Agent
		err    error
	)
	username := c.QueryParam("username")
	connected, _ := strconv.ParseBool(c.QueryParam("connected"))
	switch {
	case username != "":
		// 按用户名查询时只返回在线探针
		agents, err = h.agents.FindByUsername(ctx, username)
	case connected:
		agents, err = h.agents.FindConnected(ctx)
	default:
		agents, err = h.agents.FindAll(ctx)
	}
	if err != nil {
		h.logger.Error("查询探针列表失败", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询探针列表失败",
		})
	}
	return c.JSON(http.StatusOK, agents)
}

// GetAgent 根据 uuid 获取探针
// GET /api/agents/:uuid
func (h *AgentHandler) GetAgent(c echo.Context) error {
	uuid := c.Param("uuid")
	agent, err := h.agents.FindByUUID(c.Request().Context(), uuid)
	if err != nil {
		h.logger.Error("查询探针失败", zap.String("uuid", uuid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询探针失败",
		})
	}
	if agent == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "agent not found",
		})
	}
	return c.JSON(http.StatusOK, agent)
}

// ListMetrics 查询探针的指标，可按类型过滤
// GET /api/agents/:uuid/metrics?type=memory
func (h *AgentHandler) ListMetrics(c echo.Context) error {
	ctx := c.Request().Context()
	uuid := c.Param("uuid")

	agent, err := h.agents.FindByUUID(ctx, uuid)
	if err != nil {
		h.logger.Error("查询探针失败", zap.String("uuid", uuid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询探针失败",
		})
	}
	if agent == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "agent not found",
		})
	}

	var metrics []models.Metric
	if typ := c.QueryParam("type"); typ != "" {
		metrics, err = h.metrics.FindByTypeAgentUUID(ctx, typ, uuid)
	} else {
		metrics, err = h.metrics.FindByAgentUUID(ctx, uuid)
	}
	if err != nil {
		h.logger.Error("查询指标失败", zap.String("uuid", uuid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "查询指标失败",
		})
	}
	return c.JSON(http.StatusOK, metrics)
}

// Health 健康检查
// GET /healthz
func (h *AgentHandler) Health(c echo.Context) error {
	if err := h.pinger.Ping(c.Request().Context()); err != nil {
		h.logger.Warn("数据库连接检查失败", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
