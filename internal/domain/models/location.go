package models

import "time"

// DefaultGeofenceRadius 默认电子围栏半径（米），位置未设置半径时生效
const DefaultGeofenceRadius = 30.0

// Location 表示值守位置。历史考勤事件只引用位置ID，
// 修改坐标或半径只影响之后的围栏校验.
type Location struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Radius    float64   `json:"radius"` // 围栏半径（米），0或负数视为未设置
	Remark    string    `gorm:"type:text" json:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveRadius 返回实际生效的围栏半径。
// defaultRadius取配置值，非正时回退到内置默认
func (l *Location) EffectiveRadius(defaultRadius float64) float64 {
	if l.Radius > 0 {
		return l.Radius
	}
	if defaultRadius > 0 {
		return defaultRadius
	}
	return DefaultGeofenceRadius
}
