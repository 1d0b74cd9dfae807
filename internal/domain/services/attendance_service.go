package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// 考勤操作的错误分类。策略拒绝不在此列——围栏或排班时段不通过
// 属于正常业务结果，事件以失败结果落库后通过 ClockResult 返回.
var (
	// ErrGuardNotFound 保安不存在
	ErrGuardNotFound = errors.New("保安不存在")
	// ErrGuardNotConfigured 保安未配置值守位置，需管理员处理
	ErrGuardNotConfigured = errors.New("保安未配置值守位置")
	// ErrNoShiftToday 保安当日没有排班，需管理员处理
	ErrNoShiftToday = errors.New("保安当日没有排班")
	// ErrStoreUnavailable 事件存储不可达，调用方应整体重试
	ErrStoreUnavailable = errors.New("事件存储暂不可用")
)

// 策略拒绝原因
const (
	RejectReasonGeofence    = "geofence"
	RejectReasonShiftWindow = "shift_window"
)

// InterfaceEventLogStore 定义事件日志存储的窄接口。
// 日志只追加：单条追加要么完整落库要么完全失败，不存在部分写入.
type InterfaceEventLogStore interface {
	AppendEvent(event *models.AttendanceEvent) error
	ReadEvents(guardID uint) ([]models.AttendanceEvent, error)
	ReadEventsPage(guardID uint, page, pageSize int) ([]models.AttendanceEvent, int64, error)
}

// GormEventLogStore 基于GORM的事件日志存储实现
type GormEventLogStore struct {
	DB *gorm.DB
}

// NewGormEventLogStore 创建一个新的事件日志存储
func NewGormEventLogStore(db *gorm.DB) InterfaceEventLogStore {
	return &GormEventLogStore{DB: db}
}

// AppendEvent 追加一条考勤事件
func (s *GormEventLogStore) AppendEvent(event *models.AttendanceEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if err := s.DB.Create(event).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ReadEvents 读取保安的全部考勤事件，按时间戳降序（最新在前）
func (s *GormEventLogStore) ReadEvents(guardID uint) ([]models.AttendanceEvent, error) {
	var events []models.AttendanceEvent
	if err := s.DB.Where("guard_id = ?", guardID).
		Order("timestamp DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

// ReadEventsPage 分页读取考勤事件，guardID为0时返回全部保安的事件
func (s *GormEventLogStore) ReadEventsPage(guardID uint, page, pageSize int) ([]models.AttendanceEvent, int64, error) {
	var events []models.AttendanceEvent
	var total int64

	query := s.DB.Model(&models.AttendanceEvent{})
	if guardID > 0 {
		query = query.Where("guard_id = ?", guardID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	offset := (page - 1) * pageSize
	if err := query.Order("timestamp DESC").Limit(pageSize).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return events, total, nil
}

// ClockResult 考勤操作结果。Accepted为假表示策略拒绝，
// 失败事件同样已落库（RejectReason 标明原因）.
type ClockResult struct {
	Event        *models.AttendanceEvent `json:"event"`
	Action       models.EventKind        `json:"action"`
	Accepted     bool                    `json:"accepted"`
	RejectReason string                  `json:"reject_reason,omitempty"`
	Distance     float64                 `json:"distance"`
}

// InterfaceAttendanceService defines the attendance service interface
type InterfaceAttendanceService interface {
	Clock(guardID uint, latitude, longitude float64, now time.Time) (*ClockResult, error)
	CheckIn(guardID uint, latitude, longitude float64, now time.Time) (*ClockResult, error)
	GetEvents(guardID uint, page, pageSize int) ([]models.AttendanceEvent, int64, error)
	IsOnDuty(guardID uint) (bool, error)
}

// AttendanceService 提供上下岗打卡和值守签到服务，
// 在事件落库前执行配置校验、排班时段校验和电子围栏校验.
type AttendanceService struct {
	DB        *gorm.DB
	Config    *config.Config
	Store     InterfaceEventLogStore
	Shifts    InterfaceShiftService
	Geofence  InterfaceGeofenceService
	Scheduler InterfaceCheckInScheduler
}

// NewAttendanceService 创建一个新的考勤服务
func NewAttendanceService(
	db *gorm.DB,
	cfg *config.Config,
	store InterfaceEventLogStore,
	shifts InterfaceShiftService,
	geofence InterfaceGeofenceService,
	scheduler InterfaceCheckInScheduler,
) InterfaceAttendanceService {
	return &AttendanceService{
		DB:        db,
		Config:    cfg,
		Store:     store,
		Shifts:    shifts,
		Geofence:  geofence,
		Scheduler: scheduler,
	}
}

// 1 Clock 上岗/下岗打卡。打卡方向由当前在岗状态推导：
// 在岗则本次为下岗，不在岗则本次为上岗（与保安端的单按钮交互一致）。
// 两个方向都要求通过排班时段和电子围栏校验.
func (s *AttendanceService) Clock(guardID uint, latitude, longitude float64, now time.Time) (*ClockResult, error) {
	guard, location, err := s.loadGuardWithLocation(guardID)
	if err != nil {
		return nil, err
	}

	shift, err := s.Shifts.GetShiftForDay(guardID, now.Format(models.ShiftDayFormat))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if shift == nil {
		return nil, ErrNoShiftToday
	}

	onDuty, err := s.IsOnDuty(guardID)
	if err != nil {
		return nil, err
	}
	kind := models.EventKindClockIn
	if onDuty {
		kind = models.EventKindClockOut
	}

	// 排班时段校验先于围栏校验，两者任一不通过都记录失败事件
	if !s.Shifts.InShiftWindow(shift, now) {
		result, err := s.recordRejected(guard, location, kind, now, latitude, longitude, 0, RejectReasonShiftWindow)
		return result, err
	}

	check := s.Geofence.Validate(latitude, longitude, location)
	if !check.Accepted {
		result, err := s.recordRejected(guard, location, kind, now, latitude, longitude, check.Distance, RejectReasonGeofence)
		return result, err
	}

	event := s.newEvent(guard, location, kind, now, latitude, longitude, check.Distance, models.EventOutcomeSuccess, "")
	if err := s.Store.AppendEvent(event); err != nil {
		return nil, err
	}

	// 上岗启动签到计时，下岗立即撤销计时，下岗后不再产生签到截止时间
	switch kind {
	case models.EventKindClockIn:
		s.Scheduler.Arm(guardID, now)
	case models.EventKindClockOut:
		s.Scheduler.Disarm(guardID)
	}

	return &ClockResult{
		Event:    event,
		Action:   kind,
		Accepted: true,
		Distance: check.Distance,
	}, nil
}

// 2 CheckIn 周期性值守签到，只做围栏校验。
// 跨夜班保安在排班时段边缘也必须能确认在岗，因此不校验排班时段。
// 失败签到不会确认签到截止时间，保安需在围栏内重试.
func (s *AttendanceService) CheckIn(guardID uint, latitude, longitude float64, now time.Time) (*ClockResult, error) {
	guard, location, err := s.loadGuardWithLocation(guardID)
	if err != nil {
		return nil, err
	}

	check := s.Geofence.Validate(latitude, longitude, location)
	if !check.Accepted {
		result, err := s.recordRejectedCheckIn(guard, location, now, latitude, longitude, check.Distance)
		return result, err
	}

	event := s.newEvent(guard, location, models.EventKindCheckIn, now, latitude, longitude, check.Distance, models.EventOutcomeSuccess, "")
	if err := s.Store.AppendEvent(event); err != nil {
		return nil, err
	}

	// 成功签到确认当前截止时间并重新起算下一个周期
	s.Scheduler.Confirm(guardID, now)

	return &ClockResult{
		Event:    event,
		Action:   models.EventKindCheckIn,
		Accepted: true,
		Distance: check.Distance,
	}, nil
}

// 3 GetEvents 分页查询考勤事件
func (s *AttendanceService) GetEvents(guardID uint, page, pageSize int) ([]models.AttendanceEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.Store.ReadEventsPage(guardID, page, pageSize)
}

// 4 IsOnDuty 从事件日志推导保安当前是否在岗
func (s *AttendanceService) IsOnDuty(guardID uint) (bool, error) {
	events, err := s.Store.ReadEvents(guardID)
	if err != nil {
		return false, err
	}
	return onDutyFromEvents(sortEventsDesc(events)), nil
}

// loadGuardWithLocation 加载保安及其值守位置，缺失任一项都属于配置错误
func (s *AttendanceService) loadGuardWithLocation(guardID uint) (*models.Guard, *models.Location, error) {
	var guard models.Guard
	if err := s.DB.First(&guard, guardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGuardNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if guard.LocationID == nil {
		return nil, nil, ErrGuardNotConfigured
	}

	var location models.Location
	if err := s.DB.First(&location, *guard.LocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 引用的值守位置已不存在，同样需要管理员处理
			return nil, nil, ErrGuardNotConfigured
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &guard, &location, nil
}

// newEvent 构造一条考勤事件
func (s *AttendanceService) newEvent(
	guard *models.Guard,
	location *models.Location,
	kind models.EventKind,
	now time.Time,
	latitude, longitude, distance float64,
	outcome models.EventOutcome,
	reason string,
) *models.AttendanceEvent {
	return &models.AttendanceEvent{
		EventID:       uuid.New().String(),
		GuardID:       guard.ID,
		GuardName:     guard.Name,
		Kind:          kind,
		Timestamp:     now,
		Outcome:       outcome,
		LocationID:    guard.LocationID,
		LocationLabel: location.Name,
		Latitude:      latitude,
		Longitude:     longitude,
		Distance:      distance,
		Reason:        reason,
	}
}

// recordRejected 记录一条策略拒绝的打卡事件。
// 失败事件同样落库，保安状态保持不变.
func (s *AttendanceService) recordRejected(
	guard *models.Guard,
	location *models.Location,
	kind models.EventKind,
	now time.Time,
	latitude, longitude, distance float64,
	reason string,
) (*ClockResult, error) {
	event := s.newEvent(guard, location, kind, now, latitude, longitude, distance, models.EventOutcomeFailed, reason)
	if err := s.Store.AppendEvent(event); err != nil {
		return nil, err
	}
	return &ClockResult{
		Event:        event,
		Action:       kind,
		Accepted:     false,
		RejectReason: reason,
		Distance:     distance,
	}, nil
}

// recordRejectedCheckIn 记录一条围栏拒绝的签到事件
func (s *AttendanceService) recordRejectedCheckIn(
	guard *models.Guard,
	location *models.Location,
	now time.Time,
	latitude, longitude, distance float64,
) (*ClockResult, error) {
	event := s.newEvent(guard, location, models.EventKindCheckIn, now, latitude, longitude, distance, models.EventOutcomeFailed, RejectReasonGeofence)
	if err := s.Store.AppendEvent(event); err != nil {
		return nil, err
	}
	return &ClockResult{
		Event:        event,
		Action:       models.EventKindCheckIn,
		Accepted:     false,
		RejectReason: RejectReasonGeofence,
		Distance:     distance,
	}, nil
}
