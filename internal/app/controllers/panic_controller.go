package controllers

import (
	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
)

// InterfacePanicController 定义紧急警报控制器接口
type InterfacePanicController interface {
	Trigger()
	Reset()
	GetOutstanding()
}

// PanicController 处理紧急警报请求
type PanicController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPanicController 创建一个新的紧急警报控制器
func NewPanicController(ctx *gin.Context, container *container.ServiceContainer) *PanicController {
	return &PanicController{
		Ctx:       ctx,
		Container: container,
	}
}

// TriggerPanicRequest 表示触发紧急警报的请求
type TriggerPanicRequest struct {
	LocationLabel string `json:"location_label" example:"东门岗亭"`
}

// HandlePanicFunc 返回一个处理紧急警报请求的Gin处理函数
func HandlePanicFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPanicController(ctx, container)

		switch method {
		case "trigger":
			controller.Trigger()
		case "reset":
			controller.Reset()
		case "getOutstanding":
			controller.GetOutstanding()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Trigger 触发紧急警报
// @Summary      触发紧急警报
// @Description  保安按下紧急按钮，警报落库后通过MQTT广播给所有监控端。广播失败不影响警报记录，监控端通过轮询兜底
// @Tags         Panic
// @Accept       json
// @Produce      json
// @Param        request body TriggerPanicRequest false "警报位置说明"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /panic [post]
// @Security     BearerAuth
func (c *PanicController) Trigger() {
	userID, exists := c.Ctx.Get("userID")
	if !exists {
		response.Unauthorized(c.Ctx)
		return
	}
	guardID, ok := userID.(float64)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req TriggerPanicRequest
	// 请求体可为空，位置说明缺省时用保安档案中的驻点
	_ = c.Ctx.ShouldBindJSON(&req)

	// 查保安姓名和驻点，警报记录中冗余展示信息
	var guard models.Guard
	if err := c.Container.GetDB().Preload("Location").First(&guard, uint(guardID)).Error; err != nil {
		response.Fail(c.Ctx, code.ErrGuardNotFound, nil)
		return
	}

	locationLabel := req.LocationLabel
	if locationLabel == "" && guard.Location != nil {
		locationLabel = guard.Location.Name
	}

	panicService := c.Container.GetService("panic_alert").(services.InterfacePanicAlertService)

	alert, err := panicService.Trigger(guard.Name, locationLabel, guard.LocationID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStoreUnavailable, "警报记录失败，请重试: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"alert_id":       alert.AlertID,
		"guard_name":     alert.GuardName,
		"location_label": alert.LocationLabel,
		"timestamp":      alert.Timestamp,
	})
}

// Reset 清除所有紧急警报
// @Summary      清除紧急警报
// @Description  管理员确认处理后清除所有未处理警报。操作幂等，重复调用收敛到无警报状态
// @Tags         Panic
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /panic/reset [post]
// @Security     BearerAuth
func (c *PanicController) Reset() {
	panicService := c.Container.GetService("panic_alert").(services.InterfacePanicAlertService)

	if err := panicService.Reset(); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStoreUnavailable, "清除警报失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"message": "所有警报已清除",
	})
}

// GetOutstanding 获取未处理警报
// @Summary      获取未处理警报
// @Description  全量读取当前未处理警报及版本号，监控端用它在错过推送后追平状态
// @Tags         Panic
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /panic [get]
// @Security     BearerAuth
func (c *PanicController) GetOutstanding() {
	panicService := c.Container.GetService("panic_alert").(services.InterfacePanicAlertService)

	alerts, version, err := panicService.Outstanding()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrStoreUnavailable, "查询警报失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"version": version,
		"alerts":  alerts,
	})
}
