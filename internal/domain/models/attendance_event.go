package models

import "time"

// EventKind 考勤事件类型
type EventKind string

const (
	EventKindClockIn  EventKind = "clock_in"
	EventKindClockOut EventKind = "clock_out"
	EventKindCheckIn  EventKind = "check_in"
)

// EventOutcome 考勤事件结果
type EventOutcome string

const (
	EventOutcomeSuccess EventOutcome = "success"
	EventOutcomeFailed  EventOutcome = "failed"
)

// AttendanceEvent 表示一条考勤事件。事件日志只追加，从不修改或删除，
// 单个保安按时间戳排序的事件序列是推导在岗状态的唯一依据.
type AttendanceEvent struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	EventID       string       `gorm:"type:varchar(40);uniqueIndex" json:"event_id"` // 事件唯一标识
	GuardID       uint         `gorm:"not null;index:idx_guard_ts" json:"guard_id"`
	GuardName     string       `gorm:"type:varchar(100)" json:"guard_name"`
	Kind          EventKind    `gorm:"type:varchar(20);not null" json:"kind"`
	Timestamp     time.Time    `gorm:"not null;index:idx_guard_ts" json:"timestamp"`
	Outcome       EventOutcome `gorm:"type:varchar(10);not null" json:"outcome"`
	LocationID    *uint        `json:"location_id"`
	LocationLabel string       `gorm:"type:varchar(100)" json:"location_label"` // 位置名称快照或自由文本
	Latitude      float64      `json:"latitude"`                                // 上报坐标，用于审计
	Longitude     float64      `json:"longitude"`
	Distance      float64      `json:"distance"` // 与值守位置的实测距离（米）
	Reason        string       `gorm:"type:varchar(100)" json:"reason,omitempty"` // 失败原因，如 geofence/shift_window
	CreatedAt     time.Time    `json:"created_at"`
}

// Succeeded 判断事件是否成功
func (e *AttendanceEvent) Succeeded() bool {
	return e.Outcome == EventOutcomeSuccess
}
