package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
)

// InterfaceIncidentController 定义事件报告控制器接口
type InterfaceIncidentController interface {
	GetIncidents()
	GetIncident()
	CreateIncident()
	CloseIncident()
	DeleteIncident()
}

// IncidentController 处理事件报告相关的请求
type IncidentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewIncidentController 创建一个新的事件报告控制器
func NewIncidentController(ctx *gin.Context, container *container.ServiceContainer) *IncidentController {
	return &IncidentController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateIncidentRequest 表示提交事件报告的请求
type CreateIncidentRequest struct {
	Location    string `json:"location" example:"东门岗亭"`
	Description string `json:"description" binding:"required" example:"发现可疑人员徘徊"`
	Severity    string `json:"severity" example:"medium"`
}

// HandleIncidentFunc 返回一个处理事件报告请求的Gin处理函数
func HandleIncidentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewIncidentController(ctx, container)

		switch method {
		case "getIncidents":
			controller.GetIncidents()
		case "getIncident":
			controller.GetIncident()
		case "createIncident":
			controller.CreateIncident()
		case "closeIncident":
			controller.CloseIncident()
		case "deleteIncident":
			controller.DeleteIncident()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetIncidents 获取事件报告列表
// @Summary      获取事件报告列表
// @Description  获取所有事件报告，支持分页和按状态筛选
// @Tags         Incident
// @Accept       json
// @Produce      json
// @Param        page query int false "页码，默认为1" example:"1"
// @Param        page_size query int false "每页条数，默认为10" example:"10"
// @Param        status query string false "状态筛选: open/closed" example:"open"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /incidents [get]
// @Security     BearerAuth
func (c *IncidentController) GetIncidents() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	status := c.Ctx.Query("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	incidentService := c.Container.GetService("incident").(services.InterfaceIncidentService)

	incidents, total, err := incidentService.GetAllIncidents(page, pageSize, status)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询事件报告失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        incidents,
	})
}

// GetIncident 获取单个事件报告详情
// @Summary      获取事件报告详情
// @Description  根据ID获取特定事件报告
// @Tags         Incident
// @Accept       json
// @Produce      json
// @Param        id path int true "事件报告ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /incidents/{id} [get]
// @Security     BearerAuth
func (c *IncidentController) GetIncident() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	incidentService := c.Container.GetService("incident").(services.InterfaceIncidentService)

	incident, err := incidentService.GetIncidentByID(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrIncidentNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, incident)
}

// CreateIncident 提交事件报告
// @Summary      提交事件报告
// @Description  保安提交值守期间发现的异常事件，提交人从令牌中解析
// @Tags         Incident
// @Accept       json
// @Produce      json
// @Param        request body CreateIncidentRequest true "事件报告内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /incidents [post]
// @Security     BearerAuth
func (c *IncidentController) CreateIncident() {
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

	var req CreateIncidentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	incident := &models.IncidentReport{
		GuardID:     uint(guardID),
		Location:    req.Location,
		Description: req.Description,
		Severity:    models.IncidentSeverity(req.Severity),
		Timestamp:   time.Now(),
	}

	incidentService := c.Container.GetService("incident").(services.InterfaceIncidentService)

	if err := incidentService.CreateIncident(incident); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "提交事件报告失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":         incident.ID,
		"guard_name": incident.GuardName,
		"severity":   incident.Severity,
		"status":     incident.Status,
		"timestamp":  incident.Timestamp,
	})
}

// CloseIncident 关闭事件报告
// @Summary      关闭事件报告
// @Description  管理员处理后关闭事件报告，重复关闭不报错
// @Tags         Incident
// @Accept       json
// @Produce      json
// @Param        id path int true "事件报告ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /incidents/{id}/close [put]
// @Security     BearerAuth
func (c *IncidentController) CloseIncident() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	incidentService := c.Container.GetService("incident").(services.InterfaceIncidentService)

	incident, err := incidentService.CloseIncident(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrIncidentNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, incident)
}

// DeleteIncident 删除事件报告
// @Summary      删除事件报告
// @Description  根据ID删除事件报告
// @Tags         Incident
// @Accept       json
// @Produce      json
// @Param        id path int true "事件报告ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /incidents/{id} [delete]
// @Security     BearerAuth
func (c *IncidentController) DeleteIncident() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	incidentService := c.Container.GetService("incident").(services.InterfaceIncidentService)

	if err := incidentService.DeleteIncident(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrIncidentNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"message": "事件报告删除成功",
	})
}
