package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
)

// InterfaceAttendanceController 定义考勤控制器接口
type InterfaceAttendanceController interface {
	Clock()
	CheckIn()
	GetEvents()
	GetDutyStatus()
}

// AttendanceController 处理上下岗打卡和值守签到请求
type AttendanceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAttendanceController 创建一个新的考勤控制器
func NewAttendanceController(ctx *gin.Context, container *container.ServiceContainer) *AttendanceController {
	return &AttendanceController{
		Ctx:       ctx,
		Container: container,
	}
}

// ClockRequest 表示打卡/签到请求，坐标来自保安端定位。
// 经纬度用指针区分"缺字段"和"值为0"：0是赤道/本初子午线上的合法坐标
type ClockRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required" example:"31.230416"`
	Longitude *float64 `json:"longitude" binding:"required" example:"121.473701"`
}

// HandleAttendanceFunc 返回一个处理考勤请求的Gin处理函数
func HandleAttendanceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAttendanceController(ctx, container)

		switch method {
		case "clock":
			controller.Clock()
		case "checkIn":
			controller.CheckIn()
		case "getEvents":
			controller.GetEvents()
		case "getDutyStatus":
			controller.GetDutyStatus()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// guardIDFromToken 从JWT上下文中解析保安ID
func (c *AttendanceController) guardIDFromToken() (uint, bool) {
	userID, exists := c.Ctx.Get("userID")
	if !exists {
		return 0, false
	}
	if id, ok := userID.(float64); ok {
		return uint(id), true
	}
	return 0, false
}

// canReadGuardEvents 判断请求者能否读取指定保安的考勤事件。
// 保安只能读自己的记录，管理员不受限制
func canReadGuardEvents(role string, requesterID, targetID uint) bool {
	return role == "admin" || requesterID == targetID
}

// failAttendance 将考勤服务的错误映射为对应的错误码响应
func (c *AttendanceController) failAttendance(err error) {
	switch {
	case errors.Is(err, services.ErrGuardNotFound):
		response.Fail(c.Ctx, code.ErrGuardNotFound, nil)
	case errors.Is(err, services.ErrGuardNotConfigured):
		response.Fail(c.Ctx, code.ErrGuardNotConfigured, nil)
	case errors.Is(err, services.ErrNoShiftToday):
		response.Fail(c.Ctx, code.ErrNoShiftToday, nil)
	case errors.Is(err, services.ErrStoreUnavailable):
		// 存储不可用属于可重试故障，区别于业务拒绝
		response.FailWithMessage(c.Ctx, code.ErrStoreUnavailable, "事件存储暂不可用，请稍后重试", nil)
	default:
		response.FailWithMessage(c.Ctx, code.ErrDatabase, err.Error(), nil)
	}
}

// clockResultData 构建打卡结果响应体。
// 策略拒绝(围栏外/时段外)不是系统错误：失败事件已落库，
// 响应仍为200，由accepted字段区分结果.
func clockResultData(result *services.ClockResult) gin.H {
	data := gin.H{
		"accepted": result.Accepted,
		"action":   result.Action,
		"distance": result.Distance,
	}
	if result.Event != nil {
		data["event_id"] = result.Event.EventID
		data["kind"] = result.Event.Kind
		data["timestamp"] = result.Event.Timestamp
	}
	if !result.Accepted {
		data["reject_reason"] = result.RejectReason
	}
	return data
}

// Clock 上岗/下岗打卡
// @Summary      上下岗打卡
// @Description  保安上岗/下岗打卡，方向由当前在岗状态自动推导。需通过排班时段和电子围栏校验，未通过时记录失败事件并返回accepted=false
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        request body ClockRequest true "打卡坐标"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /attendance/clock [post]
// @Security     BearerAuth
func (c *AttendanceController) Clock() {
	guardID, ok := c.guardIDFromToken()
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req ClockRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)

	result, err := attendanceService.Clock(guardID, *req.Latitude, *req.Longitude, time.Now())
	if err != nil {
		c.failAttendance(err)
		return
	}

	response.Success(c.Ctx, clockResultData(result))
}

// CheckIn 值守签到
// @Summary      值守签到
// @Description  在岗保安的周期性位置签到，只做电子围栏校验。成功的签到会重置签到计时器
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        request body ClockRequest true "签到坐标"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /attendance/checkin [post]
// @Security     BearerAuth
func (c *AttendanceController) CheckIn() {
	guardID, ok := c.guardIDFromToken()
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req ClockRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)

	result, err := attendanceService.CheckIn(guardID, *req.Latitude, *req.Longitude, time.Now())
	if err != nil {
		c.failAttendance(err)
		return
	}

	response.Success(c.Ctx, clockResultData(result))
}

// GetEvents 获取考勤事件列表
// @Summary      获取考勤事件
// @Description  获取考勤事件日志，按时间倒序分页返回，包含失败事件。路径中不带保安ID时返回全部保安的事件（管理端活动日志）
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        guard_id path int false "保安ID，0或缺省表示全部" example:"1"
// @Param        page query int false "页码，默认为1" example:"1"
// @Param        page_size query int false "每页条数，默认为20" example:"20"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /attendance/events/{guard_id} [get]
// @Security     BearerAuth
func (c *AttendanceController) GetEvents() {
	// 管理端活动日志路由不带guard_id，视为查询全部
	var guardID uint64
	if guardIDStr := c.Ctx.Param("guard_id"); guardIDStr != "" {
		var err error
		guardID, err = strconv.ParseUint(guardIDStr, 10, 32)
		if err != nil {
			response.ParamError(c.Ctx, "无效的保安ID参数")
			return
		}

		// 保安端路由带guard_id，校验只能查询自己的事件
		requesterID, _ := c.guardIDFromToken()
		if !canReadGuardEvents(c.Ctx.GetString("role"), requesterID, uint(guardID)) {
			response.Fail(c.Ctx, code.ErrForbidden, nil)
			return
		}
	}

	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)

	events, total, err := attendanceService.GetEvents(uint(guardID), page, pageSize)
	if err != nil {
		c.failAttendance(err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        events,
	})
}

// GetDutyStatus 获取当前在岗状态
// @Summary      获取在岗状态
// @Description  返回当前登录保安是否在岗，保安端用它决定打卡按钮的方向
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /attendance/duty [get]
// @Security     BearerAuth
func (c *AttendanceController) GetDutyStatus() {
	guardID, ok := c.guardIDFromToken()
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	attendanceService := c.Container.GetService("attendance").(services.InterfaceAttendanceService)

	onDuty, err := attendanceService.IsOnDuty(guardID)
	if err != nil {
		c.failAttendance(err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"guard_id": guardID,
		"on_duty":  onDuty,
	})
}
