package services

import (
	"sync"
	"time"

	"guardian-http-service/pkg/logger"
)

// MissedCheckInHandler 签到超时回调，在截止时间过后未确认时触发
type MissedCheckInHandler func(guardID uint, deadline time.Time)

// InterfaceCheckInScheduler defines the check-in scheduler interface
type InterfaceCheckInScheduler interface {
	Arm(guardID uint, base time.Time)
	Confirm(guardID uint, at time.Time)
	Disarm(guardID uint)
	NextDue(guardID uint) (time.Time, bool)
	Stop()
}

// guardDeadline 单个保安的签到计时状态
type guardDeadline struct {
	deadline   time.Time
	timer      *time.Timer
	generation uint64
}

// CheckInScheduler 维护每个在岗保安的签到截止时间。
// 每个保安一个独立的可撤销计时器，保安之间互不依赖。
// 状态机: 无截止时间 → 已设定(deadline) → 确认(成功签到，重新起算)
// 或超时(触发漏检回调后重新起算，保安获得新的签到窗口而不是卡死).
type CheckInScheduler struct {
	interval time.Duration
	onMissed MissedCheckInHandler

	mu        sync.Mutex
	deadlines map[uint]*guardDeadline
	// 每个保安的计时器代次，撤销或重设时递增，
	// 用于丢弃已作废计时器的延迟回调
	generations map[uint]uint64
	stopped     bool
}

// NewCheckInScheduler 创建一个新的签到调度器。
// interval 必须为正数，onMissed 可为空.
func NewCheckInScheduler(interval time.Duration, onMissed MissedCheckInHandler) *CheckInScheduler {
	if interval <= 0 {
		interval = 60 * time.Minute
	}
	return &CheckInScheduler{
		interval:    interval,
		onMissed:    onMissed,
		deadlines:   make(map[uint]*guardDeadline),
		generations: make(map[uint]uint64),
	}
}

// Arm 上岗后设定首个签到截止时间，基准为上岗打卡时间
func (s *CheckInScheduler) Arm(guardID uint, base time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.armLocked(guardID, base.Add(s.interval))
}

// Confirm 成功签到确认当前截止时间，并以签到时间为基准重新起算。
// 失败的签到不会走到这里——只有成功结果才能确认截止时间.
func (s *CheckInScheduler) Confirm(guardID uint, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if _, ok := s.deadlines[guardID]; !ok {
		// 未设定截止时间（未上岗）的签到不启动计时
		return
	}
	s.armLocked(guardID, at.Add(s.interval))
}

// Disarm 下岗时撤销签到计时，撤销后不再触发任何回调
func (s *CheckInScheduler) Disarm(guardID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked(guardID)
}

// NextDue 查询保安的下次签到截止时间
func (s *CheckInScheduler) NextDue(guardID uint) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gd, ok := s.deadlines[guardID]
	if !ok {
		return time.Time{}, false
	}
	return gd.deadline, true
}

// Stop 停止调度器并撤销所有计时器
func (s *CheckInScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for guardID := range s.deadlines {
		s.disarmLocked(guardID)
	}
}

// armLocked 设定截止时间并启动计时器，调用方必须持有锁
func (s *CheckInScheduler) armLocked(guardID uint, deadline time.Time) {
	// 旧计时器先撤销，保证每个保安只有一个活跃计时器
	s.disarmLocked(guardID)

	s.generations[guardID]++
	generation := s.generations[guardID]

	gd := &guardDeadline{deadline: deadline, generation: generation}
	wait := time.Until(deadline)
	if wait < 0 {
		wait = 0
	}
	gd.timer = time.AfterFunc(wait, func() {
		s.expire(guardID, generation)
	})
	s.deadlines[guardID] = gd
}

// disarmLocked 撤销计时器，调用方必须持有锁
func (s *CheckInScheduler) disarmLocked(guardID uint) {
	gd, ok := s.deadlines[guardID]
	if !ok {
		return
	}
	if gd.timer != nil {
		gd.timer.Stop()
	}
	s.generations[guardID]++
	delete(s.deadlines, guardID)
}

// expire 截止时间到达且未确认，触发漏检回调并重新起算
func (s *CheckInScheduler) expire(guardID uint, generation uint64) {
	s.mu.Lock()
	gd, ok := s.deadlines[guardID]
	if !ok || gd.generation != generation || s.stopped {
		// 计时器已被撤销或重设，过期回调作废
		s.mu.Unlock()
		return
	}
	deadline := gd.deadline
	// 重新起算，保安获得新的签到窗口
	s.armLocked(guardID, deadline.Add(s.interval))
	onMissed := s.onMissed
	s.mu.Unlock()

	logger.Warning("保安 %d 签到超时，截止时间 %s", guardID, deadline.Format(time.RFC3339))
	if onMissed != nil {
		onMissed(guardID, deadline)
	}
}
