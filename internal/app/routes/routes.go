package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"guardian-http-service/internal/app/controllers"
	"guardian-http-service/internal/app/middleware"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/infrastructure/config"
)

// SetupRouter 初始化并返回配置好的路由和服务容器
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) (*gin.Engine, *container.ServiceContainer) {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r, serviceContainer
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册保安端路由
	registerGuardRoutes(api, container)
	// 注册管理端路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	health := controllers.NewHealthCheckController()
	api.GET("/ping", health.Ping)
	api.GET("/health", health.Ping) // 兼容Docker健康检查的路由
	api.GET("/health/status", health.Ping)

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))
}

// registerGuardRoutes 注册保安端路由，管理员同样可以访问
func registerGuardRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	guard := api.Group("/")
	guard.Use(middleware.AuthenticateGuard())
	guard.Use(middleware.IPRateLimiter(30, 50))

	// 考勤路由。打卡和签到写事件日志，不做缓存
	attendanceGroup := guard.Group("/attendance")
	attendanceGroup.POST("/clock", controllers.HandleAttendanceFunc(container, "clock"))
	attendanceGroup.POST("/checkin", controllers.HandleAttendanceFunc(container, "checkIn"))
	attendanceGroup.GET("/duty", controllers.HandleAttendanceFunc(container, "getDutyStatus"))
	attendanceGroup.GET("/events/:guard_id", controllers.HandleAttendanceFunc(container, "getEvents"))

	// 在岗状态路由。快照本身就是周期性重算的缓存，
	// 再加一层短暂的HTTP缓存挡掉监控端的高频轮询
	presenceGroup := guard.Group("/presence")
	presenceGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 2 * time.Second}), controllers.HandlePresenceFunc(container, "getSnapshot"))
	presenceGroup.GET("/guard/:guard_id", controllers.HandlePresenceFunc(container, "getGuardPresence"))

	// 紧急警报路由。触发和全量读取对保安端开放
	panicGroup := guard.Group("/panic")
	panicGroup.POST("", controllers.HandlePanicFunc(container, "trigger"))
	panicGroup.GET("", controllers.HandlePanicFunc(container, "getOutstanding"))

	// 事件报告路由
	incidentGroup := guard.Group("/incidents")
	incidentGroup.POST("", controllers.HandleIncidentFunc(container, "createIncident"))
	incidentGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 10 * time.Second}), controllers.HandleIncidentFunc(container, "getIncidents"))
	incidentGroup.GET("/:id", controllers.HandleIncidentFunc(container, "getIncident"))
}

// registerAdminRoutes 注册需要管理员权限的路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateSystemAdmin())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 管理员路由
	adminGroup := auth.Group("/admins")
	adminGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleAdminFunc(container, "getAdmins"))
	adminGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleAdminFunc(container, "getAdmin"))
	adminGroup.POST("", controllers.HandleAdminFunc(container, "createAdmin"))
	adminGroup.PUT("/:id", controllers.HandleAdminFunc(container, "updateAdmin"))
	adminGroup.DELETE("/:id", controllers.HandleAdminFunc(container, "deleteAdmin"))

	// 保安路由
	guardsGroup := auth.Group("/guards")
	guardsGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleGuardFunc(container, "getGuards"))
	guardsGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleGuardFunc(container, "getGuard"))
	guardsGroup.POST("", controllers.HandleGuardFunc(container, "createGuard"))
	guardsGroup.PUT("/:id", controllers.HandleGuardFunc(container, "updateGuard"))
	guardsGroup.DELETE("/:id", controllers.HandleGuardFunc(container, "deleteGuard"))
	guardsGroup.PUT("/:id/location", controllers.HandleGuardFunc(container, "assignLocation"))

	// 驻点路由
	locationGroup := auth.Group("/locations")
	locationGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleLocationFunc(container, "getLocations"))
	locationGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleLocationFunc(container, "getLocation"))
	locationGroup.POST("", controllers.HandleLocationFunc(container, "createLocation"))
	locationGroup.PUT("/:id", controllers.HandleLocationFunc(container, "updateLocation"))
	locationGroup.DELETE("/:id", controllers.HandleLocationFunc(container, "deleteLocation"))
	locationGroup.GET("/:id/guards", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleLocationFunc(container, "getLocationGuards"))

	// 排班路由
	shiftGroup := auth.Group("/shifts")
	shiftGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleShiftFunc(container, "getShifts"))
	shiftGroup.GET("/guard/:guard_id", controllers.HandleShiftFunc(container, "getGuardShifts"))
	shiftGroup.POST("", controllers.HandleShiftFunc(container, "createShift"))
	shiftGroup.PUT("/:id", controllers.HandleShiftFunc(container, "updateShift"))
	shiftGroup.DELETE("/:id", controllers.HandleShiftFunc(container, "deleteShift"))

	// 在岗状态管理路由
	auth.POST("/presence/refresh", controllers.HandlePresenceFunc(container, "refresh"))

	// 紧急警报清除只对管理员开放
	auth.POST("/panic/reset", controllers.HandlePanicFunc(container, "reset"))

	// 全部保安的考勤事件（活动日志）
	auth.GET("/attendance/events", controllers.HandleAttendanceFunc(container, "getEvents"))

	// 事件报告管理路由
	incidentAdminGroup := auth.Group("/incidents")
	incidentAdminGroup.PUT("/:id/close", controllers.HandleIncidentFunc(container, "closeIncident"))
	incidentAdminGroup.DELETE("/:id", controllers.HandleIncidentFunc(container, "deleteIncident"))
}
