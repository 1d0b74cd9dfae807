package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
)

// InterfacePresenceController 定义在岗状态控制器接口
type InterfacePresenceController interface {
	GetSnapshot()
	GetGuardPresence()
	Refresh()
}

// PresenceController 处理在岗状态查询请求
type PresenceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPresenceController 创建一个新的在岗状态控制器
func NewPresenceController(ctx *gin.Context, container *container.ServiceContainer) *PresenceController {
	return &PresenceController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandlePresenceFunc 返回一个处理在岗状态请求的Gin处理函数
func HandlePresenceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPresenceController(ctx, container)

		switch method {
		case "getSnapshot":
			controller.GetSnapshot()
		case "getGuardPresence":
			controller.GetGuardPresence()
		case "refresh":
			controller.Refresh()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetSnapshot 获取在岗状态快照
// @Summary      获取在岗名单快照
// @Description  返回最近一轮重算得到的在岗名单。快照带版本号和生成时间，客户端只接受版本更高的快照，不同版本的数据不可合并
// @Tags         Presence
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /presence [get]
// @Security     BearerAuth
func (c *PresenceController) GetSnapshot() {
	presenceService := c.Container.GetService("presence").(services.InterfacePresenceService)

	snapshot := presenceService.Snapshot()

	response.Success(c.Ctx, gin.H{
		"version":      snapshot.Version,
		"generated_at": snapshot.GeneratedAt,
		"guards":       snapshot.Guards,
	})
}

// GetGuardPresence 获取单个保安的实时在岗状态
// @Summary      获取保安在岗状态
// @Description  绕过快照，从事件日志实时推导指定保安的在岗状态
// @Tags         Presence
// @Accept       json
// @Produce      json
// @Param        guard_id path int true "保安ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /presence/guard/{guard_id} [get]
// @Security     BearerAuth
func (c *PresenceController) GetGuardPresence() {
	guardIDStr := c.Ctx.Param("guard_id")
	guardID, err := strconv.ParseUint(guardIDStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的保安ID参数")
		return
	}

	presenceService := c.Container.GetService("presence").(services.InterfacePresenceService)

	status, err := presenceService.DeriveGuard(uint(guardID), time.Now())
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrGuardNotFound, "查询保安状态失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, status)
}

// Refresh 立即重算在岗状态
// @Summary      立即重算在岗名单
// @Description  跳过等待下一个重算周期，立即全量重算并返回新快照。上一轮重算仍在进行时返回当前快照
// @Tags         Presence
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /presence/refresh [post]
// @Security     BearerAuth
func (c *PresenceController) Refresh() {
	presenceService := c.Container.GetService("presence").(services.InterfacePresenceService)

	snapshot, err := presenceService.SweepOnce(time.Now())
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "重算在岗状态失败: "+err.Error(), nil)
		return
	}
	if snapshot == nil {
		// 上一轮重算尚未结束，返回现有快照
		snapshot = presenceService.Snapshot()
	}

	response.Success(c.Ctx, gin.H{
		"version":      snapshot.Version,
		"generated_at": snapshot.GeneratedAt,
		"guards":       snapshot.Guards,
	})
}
