package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
)

// InterfaceShiftController 定义排班控制器接口
type InterfaceShiftController interface {
	GetShifts()
	GetGuardShifts()
	CreateShift()
	UpdateShift()
	DeleteShift()
}

// ShiftController 处理排班相关的请求
type ShiftController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewShiftController 创建一个新的排班控制器
func NewShiftController(ctx *gin.Context, container *container.ServiceContainer) *ShiftController {
	return &ShiftController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateShiftRequest 表示创建排班的请求
type CreateShiftRequest struct {
	GuardID    uint   `json:"guard_id" binding:"required" example:"1"`
	Day        string `json:"day" binding:"required" example:"2025-06-01"`
	StartTime  string `json:"start_time" binding:"required" example:"22:00"`
	EndTime    string `json:"end_time" binding:"required" example:"06:00"`
	LocationID *uint  `json:"location_id" example:"1"`
}

// UpdateShiftRequest 表示更新排班的请求
type UpdateShiftRequest struct {
	StartTime  string `json:"start_time" example:"08:00"`
	EndTime    string `json:"end_time" example:"16:00"`
	LocationID *uint  `json:"location_id" example:"2"`
}

// HandleShiftFunc 返回一个处理排班请求的Gin处理函数
func HandleShiftFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewShiftController(ctx, container)

		switch method {
		case "getShifts":
			controller.GetShifts()
		case "getGuardShifts":
			controller.GetGuardShifts()
		case "createShift":
			controller.CreateShift()
		case "updateShift":
			controller.UpdateShift()
		case "deleteShift":
			controller.DeleteShift()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetShifts 获取排班列表
// @Summary      获取排班列表
// @Description  获取所有排班，支持分页和按日期过滤
// @Tags         Shift
// @Accept       json
// @Produce      json
// @Param        page query int false "页码，默认为1" example:"1"
// @Param        page_size query int false "每页条数，默认为10" example:"10"
// @Param        day query string false "按日期过滤，格式2006-01-02" example:"2025-06-01"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /shifts [get]
// @Security     BearerAuth
func (c *ShiftController) GetShifts() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	day := c.Ctx.Query("day")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	shiftService := c.Container.GetService("shift").(services.InterfaceShiftService)

	shifts, total, err := shiftService.GetAllShifts(page, pageSize, day)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询排班列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        shifts,
	})
}

// GetGuardShifts 获取指定保安的排班
// @Summary      获取保安排班
// @Description  获取指定保安的全部排班记录
// @Tags         Shift
// @Accept       json
// @Produce      json
// @Param        guard_id path int true "保安ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /shifts/guard/{guard_id} [get]
// @Security     BearerAuth
func (c *ShiftController) GetGuardShifts() {
	guardIDStr := c.Ctx.Param("guard_id")
	guardID, err := strconv.ParseUint(guardIDStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的保安ID参数")
		return
	}

	shiftService := c.Container.GetService("shift").(services.InterfaceShiftService)

	shifts, err := shiftService.GetShiftsByGuard(uint(guardID))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询保安排班失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, shifts)
}

// CreateShift 创建排班
// @Summary      创建排班
// @Description  为保安创建某一天的排班，end_time小于等于start_time表示跨夜班
// @Tags         Shift
// @Accept       json
// @Produce      json
// @Param        request body CreateShiftRequest true "排班信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /shifts [post]
// @Security     BearerAuth
func (c *ShiftController) CreateShift() {
	var req CreateShiftRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	shift := &models.Shift{
		GuardID:    req.GuardID,
		Day:        req.Day,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		LocationID: req.LocationID,
	}

	shiftService := c.Container.GetService("shift").(services.InterfaceShiftService)

	if err := shiftService.CreateShift(shift); err != nil {
		if errors.Is(err, services.ErrShiftConflict) {
			response.Fail(c.Ctx, code.ErrShiftAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建排班失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":         shift.ID,
		"guard_id":   shift.GuardID,
		"day":        shift.Day,
		"start_time": shift.StartTime,
		"end_time":   shift.EndTime,
		"overnight":  shift.IsOvernight(),
	})
}

// UpdateShift 更新排班信息
// @Summary      更新排班
// @Description  更新排班的时段或驻点
// @Tags         Shift
// @Accept       json
// @Produce      json
// @Param        id path int true "排班ID" example:"1"
// @Param        request body UpdateShiftRequest true "需要更新的字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /shifts/{id} [put]
// @Security     BearerAuth
func (c *ShiftController) UpdateShift() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateShiftRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.StartTime != "" {
		updates["start_time"] = req.StartTime
	}
	if req.EndTime != "" {
		updates["end_time"] = req.EndTime
	}
	if req.LocationID != nil {
		updates["location_id"] = *req.LocationID
	}

	shiftService := c.Container.GetService("shift").(services.InterfaceShiftService)

	shift, err := shiftService.UpdateShift(uint(id), updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新排班失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, shift)
}

// DeleteShift 删除排班
// @Summary      删除排班
// @Description  根据ID删除排班记录
// @Tags         Shift
// @Accept       json
// @Produce      json
// @Param        id path int true "排班ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /shifts/{id} [delete]
// @Security     BearerAuth
func (c *ShiftController) DeleteShift() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	shiftService := c.Container.GetService("shift").(services.InterfaceShiftService)

	if err := shiftService.DeleteShift(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除排班失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"message": "排班删除成功",
	})
}
