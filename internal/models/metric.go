package models

import "time"

// Metric 探针上报的单条指标，创建后不再修改
type Metric struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID   uint      `gorm:"not null;index:idx_metrics_agent_type,priority:1" json:"agentId"` // 所属探针
	Type      string    `gorm:"size:64;not null;index:idx_metrics_agent_type,priority:2" json:"type"`
	Value     string    `gorm:"type:text;not null" json:"value"` // 数值统一以字符串保存
	CreatedAt time.Time `gorm:"index:idx_metrics_created" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Agent 多对一：指标属于一个探针
	Agent *Agent `gorm:"foreignKey:AgentID" json:"-"`
}

func (Metric) TableName() string {
	return "metrics"
}

// MetricFilter 指标查询条件，始终限定在某个探针下
type MetricFilter struct {
	AgentUUID string
	Type      string
}
