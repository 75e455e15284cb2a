package probe

import (
	"context"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/nodeiot/iotdb/internal/models"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	MetricMemory = "memory"
	MetricCPU    = "cpu"
)

// HostCollector 本机信息采集器，把当前进程描述为一个探针
type HostCollector struct {
	// cpuWindow CPU 使用率采样窗口
	cpuWindow time.Duration
}

// NewHostCollector 创建本机信息采集器
func NewHostCollector() *HostCollector {
	return &HostCollector{cpuWindow: 500 * time.Millisecond}
}

// Agent 采集主机名、用户名和进程号
func (h *HostCollector) Agent(ctx context.Context, uuid, name string) (models.Agent, error) {
	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return models.Agent{}, err
	}

	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	if name == "" {
		name = hostInfo.Hostname
	}

	return models.Agent{
		UUID:      uuid,
		Name:      name,
		Username:  username,
		Hostname:  hostInfo.Hostname,
		PID:       os.Getpid(),
		Connected: true,
	}, nil
}

// Metrics 采集内存已用字节数与 CPU 使用率
func (h *HostCollector) Metrics(ctx context.Context) ([]models.Metric, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	metrics := []models.Metric{
		{Type: MetricMemory, Value: strconv.FormatUint(vm.Used, 10)},
	}

	// CPU 采集失败不影响内存指标上报
	if percents, err := cpu.PercentWithContext(ctx, h.cpuWindow, false); err == nil && len(percents) > 0 {
		metrics = append(metrics, models.Metric{
			Type:  MetricCPU,
			Value: strconv.FormatFloat(percents[0], 'f', 2, 64),
		})
	}
	return metrics, nil
}
