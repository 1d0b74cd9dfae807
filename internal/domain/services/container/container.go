package container

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/infrastructure/config"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService services.InterfaceJWTService

	// 数据存储服务
	redisService  services.InterfaceRedisService
	eventLogStore services.InterfaceEventLogStore

	// MQTT警报广播服务
	mqttAlertService services.InterfaceMQTTAlertService

	// 考勤核心服务
	geofenceService   services.InterfaceGeofenceService
	shiftService      services.InterfaceShiftService
	checkInScheduler  services.InterfaceCheckInScheduler
	attendanceService services.InterfaceAttendanceService
	presenceService   services.InterfacePresenceService
	panicAlertService services.InterfacePanicAlertService

	// 业务服务
	adminService    services.InterfaceAdminService
	guardService    services.InterfaceGuardService
	locationService services.InterfaceLocationService
	incidentService services.InterfaceIncidentService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)

	// 初始化Redis服务
	c.redisService = services.NewRedisService(c.config)

	// 初始化MQTT警报广播服务
	c.mqttAlertService = services.NewMQTTAlertService(c.config)

	// 连接MQTT服务器
	if err := c.mqttAlertService.Connect(); err != nil {
		log.Printf("MQTT服务连接失败: %v", err)
	}

	// 初始化考勤核心服务。签到调度器漏检时通过MQTT下发系统提醒，
	// 在岗状态本身由下一轮全量重算从事件日志推导，不依赖这条消息
	c.eventLogStore = services.NewGormEventLogStore(c.db)
	c.geofenceService = services.NewGeofenceService(c.config)
	c.shiftService = services.NewShiftService(c.db, c.config)
	c.checkInScheduler = services.NewCheckInScheduler(c.config.CheckInInterval(), func(guardID uint, deadline time.Time) {
		if err := c.mqttAlertService.PublishSystemMessage("missed_check_in", map[string]interface{}{
			"level":   "warning",
			"message": "保安未按时签到",
			"data": map[string]interface{}{
				"guard_id": guardID,
				"deadline": deadline.UnixMilli(),
			},
		}); err != nil {
			log.Printf("漏检提醒下发失败: %v", err)
		}
	})
	c.attendanceService = services.NewAttendanceService(c.db, c.config, c.eventLogStore, c.shiftService, c.geofenceService, c.checkInScheduler)
	c.presenceService = services.NewPresenceService(c.db, c.config, c.eventLogStore, c.shiftService, c.redisService, c.mqttAlertService)
	c.panicAlertService = services.NewPanicAlertService(c.db, c.config, c.redisService, c.mqttAlertService)

	// 初始化业务服务
	c.adminService = services.NewAdminService(c.db, c.config)
	c.guardService = services.NewGuardService(c.db, c.config)
	c.locationService = services.NewLocationService(c.db, c.config)
	c.incidentService = services.NewIncidentService(c.db, c.config)

	// 启动在岗状态周期重算
	c.presenceService.Start()
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "event_log":
		return c.eventLogStore
	case "mqtt_alert":
		return c.mqttAlertService
	case "geofence":
		return c.geofenceService
	case "shift":
		return c.shiftService
	case "checkin_scheduler":
		return c.checkInScheduler
	case "attendance":
		return c.attendanceService
	case "presence":
		return c.presenceService
	case "panic_alert":
		return c.panicAlertService
	case "admin":
		return c.adminService
	case "guard":
		return c.guardService
	case "location":
		return c.locationService
	case "incident":
		return c.incidentService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Shutdown 停止后台任务并断开外部连接，用于服务优雅退出
func (c *ServiceContainer) Shutdown() {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.presenceService != nil {
		c.presenceService.Stop()
	}
	if c.checkInScheduler != nil {
		c.checkInScheduler.Stop()
	}
	if c.mqttAlertService != nil {
		c.mqttAlertService.Disconnect()
	}
}
