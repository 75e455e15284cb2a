package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nodeiot/iotdb/internal/config"
	"github.com/nodeiot/iotdb/internal/database"
	"github.com/nodeiot/iotdb/internal/models"
	"go.uber.org/zap/zaptest"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func newTestServer(t *testing.T, pinger Pinger) (*echo.Echo, *database.DB) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Database: filepath.Join(t.TempDir(), "handler.db"),
		Dialect:  database.DialectSQLite,
		Setup:    true,
	}, logger)
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if pinger == nil {
		pinger = db
	}
	e := echo.New()
	NewAgentHandler(logger, db.Agent, db.Metric, pinger).Register(e)

	ctx := context.Background()
	for _, a := range []models.Agent{
		{UUID: "yyy", Name: "test", Username: "platzi", Hostname: "h", PID: 1, Connected: true},
		{UUID: "www", Name: "test", Username: "platzi", Hostname: "h", PID: 2, Connected: false},
		{UUID: "zzz", Name: "test", Username: "other", Hostname: "h", PID: 3, Connected: true},
	} {
		if _, err := db.Agent.CreateOrUpdate(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	for _, m := range []models.Metric{{Type: "memory", Value: "300"}, {Type: "cpu", Value: "3.5"}} {
		if _, err := db.Metric.Create(ctx, "yyy", m); err != nil {
			t.Fatal(err)
		}
	}
	return e, db
}

func doGet(t *testing.T, e *echo.Echo, target string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("解析响应失败: %v, body=%s", err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestAgentHandler_ListAgents(t *testing.T) {
	e, _ := newTestServer(t, nil)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/agents", 3},
		{"/api/agents?connected=true", 2},
		{"/api/agents?username=platzi", 1},
		{"/api/agents?username=nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var agents []models.Agent
			if code := doGet(t, e, tt.target, &agents); code != http.StatusOK {
				t.Fatalf("状态码应为 200，实际 %d", code)
			}
			if len(agents) != tt.want {
				t.Errorf("期望 %d 个探针，实际 %d 个", tt.want, len(agents))
			}
		})
	}
}

func TestAgentHandler_GetAgent(t *testing.T) {
	e, _ := newTestServer(t, nil)

	var agent models.Agent
	if code := doGet(t, e, "/api/agents/yyy", &agent); code != http.StatusOK {
		t.Fatalf("状态码应为 200，实际 %d", code)
	}
	if agent.UUID != "yyy" || agent.PID != 1 {
		t.Errorf("返回的探针不符: %+v", agent)
	}

	if code := doGet(t, e, "/api/agents/missing", nil); code != http.StatusNotFound {
		t.Errorf("不存在的探针应返回 404，实际 %d", code)
	}
}

func TestAgentHandler_ListMetrics(t *testing.T) {
	e, _ := newTestServer(t, nil)

	var metrics []models.Metric
	if code := doGet(t, e, "/api/agents/yyy/metrics", &metrics); code != http.StatusOK {
		t.Fatalf("状态码应为 200，实际 %d", code)
	}
	if len(metrics) != 2 {
		t.Errorf("应返回 2 条指标，实际 %d 条", len(metrics))
	}

	metrics = nil
	if code := doGet(t, e, "/api/agents/yyy/metrics?type=memory", &metrics); code != http.StatusOK {
		t.Fatalf("状态码应为 200，实际 %d", code)
	}
	if len(metrics) != 1 || metrics[0].Value != "300" {
		t.Errorf("应只返回 memory 指标，实际 %+v", metrics)
	}

	metrics = nil
	if code := doGet(t, e, "/api/agents/zzz/metrics", &metrics); code != http.StatusOK {
		t.Fatalf("状态码应为 200，实际 %d", code)
	}
	if len(metrics) != 0 {
		t.Errorf("zzz 没有指标，实际 %d 条", len(metrics))
	}

	if code := doGet(t, e, "/api/agents/missing/metrics", nil); code != http.StatusNotFound {
		t.Errorf("不存在的探针应返回 404，实际 %d", code)
	}
}

func TestAgentHandler_Health(t *testing.T) {
	e, _ := newTestServer(t, nil)
	if code := doGet(t, e, "/healthz", nil); code != http.StatusOK {
		t.Errorf("健康检查应返回 200，实际 %d", code)
	}

	down, _ := newTestServer(t, fakePinger{err: errors.New("down")})
	if code := doGet(t, down, "/healthz", nil); code != http.StatusServiceUnavailable {
		t.Errorf("数据库不可用时应返回 503，实际 %d", code)
	}
}
