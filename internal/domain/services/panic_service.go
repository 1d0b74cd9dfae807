package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
	"guardian-http-service/pkg/logger"
)

// PanicNotification 推送给订阅方的警报通知。
// 通知按至少一次语义送达：可能重复、可能丢失，
// 订阅方以 Version 为准做幂等处理，丢失的通知靠全量拉取追平.
type PanicNotification struct {
	Type    string              `json:"type"` // alert/clear
	Version int64               `json:"version"`
	Alerts  []models.PanicAlert `json:"alerts"`
}

// 通知类型
const (
	PanicNotifyAlert = "alert"
	PanicNotifyClear = "clear"
)

// InterfacePanicAlertService defines the panic alert service interface
type InterfacePanicAlertService interface {
	Trigger(guardName, locationLabel string, locationID *uint) (*models.PanicAlert, error)
	Reset() error
	Outstanding() ([]models.PanicAlert, int64, error)
	Subscribe(observerID string) <-chan PanicNotification
	Unsubscribe(observerID string)
}

// PanicAlertService 管理紧急警报的触发、清除和广播。
// 触发先落库再广播；清除是全量操作，一次清掉所有未处理警报。
// 每次状态变更都携带单调递增的版本号，观察方只接受更高版本的状态，
// 不允许把两次不同时间的读取结果合并.
type PanicAlertService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  InterfaceRedisService     // 可为空，为空时版本号本地递增
	MQTT   InterfaceMQTTAlertService // 可为空，为空时只做进程内广播

	// 进程内订阅者，key为观察者ID，value为带缓冲的通知通道
	subscribers sync.Map

	// 本地版本号，Redis不可用时的退化方案；
	// 同时记录最近一次分配的版本供全量读取返回
	version int64
}

// NewPanicAlertService 创建一个新的紧急警报服务
func NewPanicAlertService(db *gorm.DB, cfg *config.Config, redisService InterfaceRedisService, mqttService InterfaceMQTTAlertService) InterfacePanicAlertService {
	return &PanicAlertService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
		MQTT:   mqttService,
	}
}

// 1 Trigger 触发紧急警报：落库、递增版本、向所有订阅方广播。
// 落库失败时整个操作失败，调用方重试，警报不会静默丢失.
func (s *PanicAlertService) Trigger(guardName, locationLabel string, locationID *uint) (*models.PanicAlert, error) {
	alert := &models.PanicAlert{
		AlertID:       uuid.New().String(),
		GuardName:     guardName,
		LocationID:    locationID,
		LocationLabel: locationLabel,
		Timestamp:     time.Now(),
	}

	if err := s.DB.Create(alert).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	alerts, version, err := s.readOutstanding()
	if err != nil {
		return nil, err
	}

	// 广播失败只降级为日志：警报已持久化，
	// 错过推送的观察方会在下一轮全量拉取时看到
	if s.MQTT != nil {
		if err := s.MQTT.PublishPanicAlert(version, alerts); err != nil {
			logger.Warning("MQTT广播警报失败: %v", err)
		}
	}
	s.notifySubscribers(PanicNotification{Type: PanicNotifyAlert, Version: version, Alerts: alerts})

	logger.Warning("紧急警报已触发: 保安=%s 位置=%s", guardName, locationLabel)
	return alert, nil
}

// 2 Reset 清除所有未处理警报并广播清除通知。
// 操作幂等：重复调用收敛到同一状态（无未处理警报），
// 清除后观察到的任何早先触发通知都不得再显示为告警中.
func (s *PanicAlertService) Reset() error {
	if err := s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.PanicAlert{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	version := s.nextVersion()

	if s.MQTT != nil {
		if err := s.MQTT.PublishPanicClear(version); err != nil {
			logger.Warning("MQTT广播警报清除失败: %v", err)
		}
	}
	s.notifySubscribers(PanicNotification{Type: PanicNotifyClear, Version: version, Alerts: []models.PanicAlert{}})

	logger.Info("所有紧急警报已清除")
	return nil
}

// 3 Outstanding 全量读取当前未处理警报及版本号。
// 观察方的轮询兜底走这里：错过任意多次推送之后，
// 一次全量读取就能追平到与收到全部推送相同的状态.
func (s *PanicAlertService) Outstanding() ([]models.PanicAlert, int64, error) {
	var alerts []models.PanicAlert
	if err := s.DB.Order("timestamp DESC").Find(&alerts).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return alerts, atomic.LoadInt64(&s.version), nil
}

// 4 Subscribe 注册进程内订阅者，返回通知通道。
// 通道带缓冲，订阅方消费过慢时通知被丢弃而不是阻塞广播——
// 丢失由轮询兜底补偿，这正是至少一次语义允许的行为.
func (s *PanicAlertService) Subscribe(observerID string) <-chan PanicNotification {
	ch := make(chan PanicNotification, 8)
	s.subscribers.Store(observerID, ch)
	return ch
}

// 5 Unsubscribe 注销订阅者，之后不再向其投递任何通知
func (s *PanicAlertService) Unsubscribe(observerID string) {
	if ch, ok := s.subscribers.LoadAndDelete(observerID); ok {
		close(ch.(chan PanicNotification))
	}
}

// readOutstanding 读取未处理警报并分配新版本号
func (s *PanicAlertService) readOutstanding() ([]models.PanicAlert, int64, error) {
	var alerts []models.PanicAlert
	if err := s.DB.Order("timestamp DESC").Find(&alerts).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return alerts, s.nextVersion(), nil
}

// notifySubscribers 向所有进程内订阅者广播通知（非阻塞）
func (s *PanicAlertService) notifySubscribers(notification PanicNotification) {
	s.subscribers.Range(func(key, value interface{}) bool {
		ch := value.(chan PanicNotification)
		select {
		case ch <- notification:
		default:
			// 订阅方缓冲已满，丢弃本条，由全量拉取兜底
			logger.Warning("订阅者 %v 通知缓冲已满，丢弃通知", key)
		}
		return true
	})
}

// nextVersion 产生单调递增的警报状态版本号，
// Redis可用时用INCR保证跨实例单调，否则本地递增
func (s *PanicAlertService) nextVersion() int64 {
	if s.Redis != nil {
		if version, err := s.Redis.NextPanicVersion(); err == nil {
			atomic.StoreInt64(&s.version, version)
			return version
		}
	}
	return atomic.AddInt64(&s.version, 1)
}
