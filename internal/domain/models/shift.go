package models

import "time"

// Shift 表示保安某一天的排班。约束：每个保安每天最多一条排班，
// EndTime 小于等于 StartTime 表示跨夜班（持续到次日）.
type Shift struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GuardID    uint      `gorm:"not null;uniqueIndex:idx_guard_day" json:"guard_id"`
	Day        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_guard_day" json:"day"` // 格式: 2006-01-02
	StartTime  string    `gorm:"type:varchar(5);not null" json:"start_time"`                     // 格式: 15:04 (24小时制)
	EndTime    string    `gorm:"type:varchar(5);not null" json:"end_time"`                       // 格式: 15:04 (24小时制)
	LocationID *uint     `json:"location_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Guard    *Guard    `gorm:"foreignKey:GuardID" json:"guard,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// ShiftDayFormat 排班日期的存储格式
const ShiftDayFormat = "2006-01-02"

// IsOvernight 判断是否为跨夜班
func (s *Shift) IsOvernight() bool {
	return s.EndTime <= s.StartTime
}
