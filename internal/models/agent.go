package models

import "time"

// Agent 探针（被监控的主机或进程）
type Agent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      string    `gorm:"column:uuid;size:64;not null;uniqueIndex:ux_agents_uuid" json:"uuid"` // 探针上报的唯一标识（upsert 的自然键）
	Name      string    `gorm:"size:255;not null" json:"name"`
	Username  string    `gorm:"size:255;not null;index" json:"username"`
	Hostname  string    `gorm:"size:255;not null" json:"hostname"`
	PID       int       `gorm:"column:pid;not null" json:"pid"`          // 上报时的进程号
	Connected bool      `gorm:"not null;default:false" json:"connected"` // 当前是否在线
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Metrics 一对多：一个探针拥有多个指标
	Metrics []Metric `gorm:"foreignKey:AgentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"metrics,omitempty"`
}

func (Agent) TableName() string {
	return "agents"
}

// AgentFilter 探针查询条件，nil 字段不参与过滤；非 nil 时按值精确匹配，空字符串同样作为条件
type AgentFilter struct {
	UUID      *string
	Username  *string
	Connected *bool
}

// Bool 返回 b 的指针，用于构造过滤条件
func Bool(b bool) *bool {
	return &b
}

// String 返回 s 的指针，用于构造过滤条件
func String(s string) *string {
	return &s
}
