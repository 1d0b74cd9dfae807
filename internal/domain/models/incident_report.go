package models

import "time"

// IncidentStatus 事件报告状态
type IncidentStatus string

const (
	IncidentStatusOpen   IncidentStatus = "open"
	IncidentStatusClosed IncidentStatus = "closed"
)

// IncidentSeverity 事件严重程度
type IncidentSeverity string

const (
	IncidentSeverityLow    IncidentSeverity = "low"
	IncidentSeverityMedium IncidentSeverity = "medium"
	IncidentSeverityHigh   IncidentSeverity = "high"
)

// IncidentReport 表示保安提交的事件报告
type IncidentReport struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	GuardID     uint             `gorm:"not null;index" json:"guard_id"`
	GuardName   string           `gorm:"type:varchar(100)" json:"guard_name"`
	Location    string           `gorm:"type:varchar(100)" json:"location"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Severity    IncidentSeverity `gorm:"type:varchar(10);default:'low'" json:"severity"`
	Status      IncidentStatus   `gorm:"type:varchar(10);default:'open'" json:"status"`
	Timestamp   time.Time        `gorm:"not null;index" json:"timestamp"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
