package services

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
	"guardian-http-service/pkg/logger"
)

// InterfacePresenceService defines the presence service interface
type InterfacePresenceService interface {
	DeriveStatus(guard *models.Guard, events []models.AttendanceEvent, shift *models.Shift, now time.Time) models.PresenceStatus
	DeriveGuard(guardID uint, now time.Time) (*models.PresenceStatus, error)
	SweepOnce(now time.Time) (*models.PresenceSnapshot, error)
	Snapshot() *models.PresenceSnapshot
	Start()
	Stop()
}

// PresenceService 周期性地从事件日志全量重算所有保安的在岗状态。
// 重算是只读、幂等的纯投影——状态从不落库，不存在第二份会漂移的事实源。
// 两次重算周期内的显示以快照为准，短暂滞后由快照版本号和生成时间标明.
type PresenceService struct {
	DB     *gorm.DB
	Config *config.Config
	Store  InterfaceEventLogStore
	Shifts InterfaceShiftService
	Redis  InterfaceRedisService      // 可为空，为空时只用本地快照
	MQTT   InterfaceMQTTAlertService  // 可为空，为空时不对外广播

	// 上一次重算产生的快照
	snapshotMu sync.RWMutex
	snapshot   *models.PresenceSnapshot

	// sweepMu 保证同一时刻只有一次重算在执行，
	// 重算幂等且无副作用，重叠的周期直接跳过而不是排队
	sweepMu      sync.Mutex
	localVersion int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresenceService 创建一个新的在岗状态服务
func NewPresenceService(
	db *gorm.DB,
	cfg *config.Config,
	store InterfaceEventLogStore,
	shifts InterfaceShiftService,
	redisService InterfaceRedisService,
	mqttService InterfaceMQTTAlertService,
) *PresenceService {
	return &PresenceService{
		DB:     db,
		Config: cfg,
		Store:  store,
		Shifts: shifts,
		Redis:  redisService,
		MQTT:   mqttService,
		stopCh: make(chan struct{}),
	}
}

// 1 DeriveStatus 从单个保安的事件序列推导当前状态。纯函数：
// 事件、排班、当前时间都由调用方注入，相同输入永远得到相同状态。
// 推导规则:
//   - 在岗判定：存在成功的上岗打卡，且没有更晚的下岗打卡。
//     时间戳相同时下岗优先——宁可不显示在岗，也不显示幽灵保安；
//   - 上岗时间晚于排班开始时刻为迟到，否则准时；
//   - 签到截止时间 = 最近一次成功签到（没有则取上岗打卡）+ 签到间隔，
//     截止时间已过且无后续成功签到时为漏检，漏检显示优先于迟到/准时.
func (s *PresenceService) DeriveStatus(guard *models.Guard, events []models.AttendanceEvent, shift *models.Shift, now time.Time) models.PresenceStatus {
	status := models.PresenceStatus{
		GuardID:    guard.ID,
		GuardName:  guard.Name,
		State:      models.PresenceOffDuty,
		LocationID: guard.LocationID,
	}

	sorted := sortEventsDesc(events)
	if !onDutyFromEvents(sorted) {
		return status
	}

	clockIn := latestSuccessfulEvent(sorted, models.EventKindClockIn)
	loginTime := clockIn.Timestamp
	status.LoginTime = &loginTime

	// 准时/迟到：上岗打卡时间与排班开始时刻比较
	status.State = models.PresenceOnTime
	if shift != nil {
		if start, ok := shiftStartOnDay(shift, clockIn.Timestamp); ok && clockIn.Timestamp.After(start) {
			status.State = models.PresenceLate
			status.LateMinutes = int(clockIn.Timestamp.Sub(start) / time.Minute)
		}
	}

	// 签到截止时间以最近一次成功签到为基准，没有签到则以上岗打卡为基准。
	// 上岗之前的历史签到不算数.
	base := clockIn.Timestamp
	if checkIn := latestSuccessfulEvent(sorted, models.EventKindCheckIn); checkIn != nil && !checkIn.Timestamp.Before(clockIn.Timestamp) {
		base = checkIn.Timestamp
	}
	due := base.Add(s.checkInInterval())
	status.NextCheckInDue = &due

	// 漏检优先于迟到/准时显示
	if !now.Before(due) {
		status.State = models.PresenceMissedCheckIn
	}

	return status
}

// 2 DeriveGuard 读取事件日志并推导单个保安的当前状态
func (s *PresenceService) DeriveGuard(guardID uint, now time.Time) (*models.PresenceStatus, error) {
	var guard models.Guard
	if err := s.DB.First(&guard, guardID).Error; err != nil {
		return nil, err
	}

	events, err := s.Store.ReadEvents(guardID)
	if err != nil {
		return nil, err
	}

	shift, err := s.shiftForClockInDay(guardID, events, now)
	if err != nil {
		return nil, err
	}

	status := s.DeriveStatus(&guard, events, shift, now)
	return &status, nil
}

// 3 SweepOnce 全量重算所有保安的在岗状态并生成新快照。
// 上一轮还在执行时直接跳过本轮，返回 (nil, nil).
func (s *PresenceService) SweepOnce(now time.Time) (*models.PresenceSnapshot, error) {
	if !s.sweepMu.TryLock() {
		return nil, nil
	}
	defer s.sweepMu.Unlock()

	var guards []models.Guard
	if err := s.DB.Where("status = ?", "active").Find(&guards).Error; err != nil {
		return nil, err
	}

	roster := make([]models.PresenceStatus, 0, len(guards))
	for i := range guards {
		guard := &guards[i]

		events, err := s.Store.ReadEvents(guard.ID)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			// 从未产生过事件的保安不进入在岗名单
			continue
		}

		shift, err := s.shiftForClockInDay(guard.ID, events, now)
		if err != nil {
			return nil, err
		}

		status := s.DeriveStatus(guard, events, shift, now)
		if status.OnDuty() {
			roster = append(roster, status)
		}
	}

	snapshot := &models.PresenceSnapshot{
		Version:     s.nextVersion(),
		GeneratedAt: now,
		Guards:      roster,
	}

	s.snapshotMu.Lock()
	s.snapshot = snapshot
	s.snapshotMu.Unlock()

	// 快照缓存和广播失败不影响重算结果，下一轮会覆盖
	if s.Redis != nil {
		ttl := 2 * s.Config.PresenceSweepInterval()
		if err := s.Redis.CachePresenceSnapshot(snapshot, ttl); err != nil {
			logger.Warning("缓存在岗快照失败: %v", err)
		}
	}
	if s.MQTT != nil {
		if err := s.MQTT.PublishPresenceSnapshot(snapshot); err != nil {
			logger.Warning("广播在岗快照失败: %v", err)
		}
	}

	return snapshot, nil
}

// 4 Snapshot 返回最近一次重算产生的快照，尚未重算过时返回空快照
func (s *PresenceService) Snapshot() *models.PresenceSnapshot {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	if s.snapshot != nil {
		return s.snapshot
	}
	return &models.PresenceSnapshot{GeneratedAt: time.Now(), Guards: []models.PresenceStatus{}}
}

// 5 Start 启动周期性重算
func (s *PresenceService) Start() {
	go func() {
		ticker := time.NewTicker(s.Config.PresenceSweepInterval())
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case now := <-ticker.C:
				if _, err := s.SweepOnce(now); err != nil {
					logger.Error("在岗状态重算失败: %v", err)
				}
			}
		}
	}()
}

// 6 Stop 停止周期性重算
func (s *PresenceService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// checkInInterval 返回签到间隔，配置缺失时取默认60分钟
func (s *PresenceService) checkInInterval() time.Duration {
	if s.Config != nil {
		return s.Config.CheckInInterval()
	}
	return 60 * time.Minute
}

// nextVersion 产生单调递增的快照版本号，Redis不可用时退化为本地计数
func (s *PresenceService) nextVersion() int64 {
	if s.Redis != nil {
		if version, err := s.Redis.NextPresenceVersion(); err == nil {
			return version
		}
	}
	return atomic.AddInt64(&s.localVersion, 1)
}

// shiftForClockInDay 查询保安上岗打卡当日的排班。
// 跨夜班在午夜之后仍以上岗当日的排班为准.
func (s *PresenceService) shiftForClockInDay(guardID uint, events []models.AttendanceEvent, now time.Time) (*models.Shift, error) {
	day := now.Format(models.ShiftDayFormat)
	if clockIn := latestSuccessfulEvent(sortEventsDesc(events), models.EventKindClockIn); clockIn != nil {
		day = clockIn.Timestamp.Format(models.ShiftDayFormat)
	}
	return s.Shifts.GetShiftForDay(guardID, day)
}

// sortEventsDesc 返回按时间戳降序排列的事件副本。
// 存储层按降序返回，但推导不依赖这一点，乱序输入同样正确.
func sortEventsDesc(events []models.AttendanceEvent) []models.AttendanceEvent {
	sorted := make([]models.AttendanceEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// latestSuccessfulEvent 返回最近一条指定类型的成功事件，没有则返回nil。
// 失败事件不参与状态推导——围栏外的打卡不改变任何状态.
func latestSuccessfulEvent(eventsDesc []models.AttendanceEvent, kind models.EventKind) *models.AttendanceEvent {
	for i := range eventsDesc {
		if eventsDesc[i].Kind == kind && eventsDesc[i].Succeeded() {
			return &eventsDesc[i]
		}
	}
	return nil
}

// onDutyFromEvents 从降序事件序列推导是否在岗。
// 上岗打卡必须严格晚于下岗打卡——时间戳相同时按下岗处理.
func onDutyFromEvents(eventsDesc []models.AttendanceEvent) bool {
	clockIn := latestSuccessfulEvent(eventsDesc, models.EventKindClockIn)
	if clockIn == nil {
		return false
	}
	clockOut := latestSuccessfulEvent(eventsDesc, models.EventKindClockOut)
	if clockOut == nil {
		return true
	}
	return clockIn.Timestamp.After(clockOut.Timestamp)
}

// shiftStartOnDay 计算排班在指定日期的开始时刻
func shiftStartOnDay(shift *models.Shift, day time.Time) (time.Time, bool) {
	start, err := parseClock(shift.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), start/60, start%60, 0, 0, day.Location()), true
}
