package models

import "time"

// PresenceState 保安在岗状态。该状态不落库，
// 每次由考勤事件序列、排班和当前时间重新推导.
type PresenceState string

const (
	PresenceOffDuty       PresenceState = "off_duty"
	PresenceOnTime        PresenceState = "on_time"
	PresenceLate          PresenceState = "late"
	PresenceMissedCheckIn PresenceState = "missed_check_in"
)

// PresenceStatus 单个保安的推导状态
type PresenceStatus struct {
	GuardID        uint          `json:"guard_id"`
	GuardName      string        `json:"guard_name"`
	State          PresenceState `json:"state"`
	LoginTime      *time.Time    `json:"login_time,omitempty"`        // 最近一次成功上岗打卡时间
	NextCheckInDue *time.Time    `json:"next_check_in_due,omitempty"` // 下次签到截止时间
	LateMinutes    int           `json:"late_minutes,omitempty"`      // 迟到分钟数，仅迟到状态有效
	LocationID     *uint         `json:"location_id,omitempty"`
}

// OnDuty 判断保安是否在岗
func (p *PresenceStatus) OnDuty() bool {
	return p.State != PresenceOffDuty
}

// PresenceSnapshot 全量在岗状态快照。Version 单调递增，
// 观察方只能用更高版本的快照整体替换本地状态，不允许合并两次读取.
type PresenceSnapshot struct {
	Version     int64            `json:"version"`
	GeneratedAt time.Time        `json:"generated_at"`
	Guards      []PresenceStatus `json:"guards"`
}
