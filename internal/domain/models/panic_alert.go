package models

import "time"

// PanicAlert 表示一条紧急求助警报。警报由保安触发，
// 持续存在直到管理员执行一键清除（清除是全量操作，不按单条撤销）.
type PanicAlert struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AlertID       string    `gorm:"type:varchar(40);uniqueIndex" json:"alert_id"` // 警报唯一标识
	GuardName     string    `gorm:"type:varchar(100);not null" json:"guard_name"`
	LocationID    *uint     `json:"location_id"`
	LocationLabel string    `gorm:"type:varchar(100)" json:"location_label"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt     time.Time `json:"created_at"`
}
