package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
	"guardian-http-service/internal/infrastructure/config"
)

// InterfaceLocationController 定义驻点控制器接口
type InterfaceLocationController interface {
	GetLocations()
	GetLocation()
	CreateLocation()
	UpdateLocation()
	DeleteLocation()
	GetLocationGuards()
}

// LocationController 处理值守驻点相关的请求
type LocationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLocationController 创建一个新的驻点控制器
func NewLocationController(ctx *gin.Context, container *container.ServiceContainer) *LocationController {
	return &LocationController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateLocationRequest 表示创建驻点的请求
type CreateLocationRequest struct {
	Name      string  `json:"name" binding:"required" example:"东门岗亭"`
	Latitude  float64 `json:"latitude" binding:"required" example:"31.230416"`
	Longitude float64 `json:"longitude" binding:"required" example:"121.473701"`
	Radius    float64 `json:"radius" example:"30"`
	Remark    string  `json:"remark" example:"主入口"`
}

// UpdateLocationRequest 表示更新驻点的请求
type UpdateLocationRequest struct {
	Name      string   `json:"name" example:"东门岗亭"`
	Latitude  *float64 `json:"latitude" example:"31.230416"`
	Longitude *float64 `json:"longitude" example:"121.473701"`
	Radius    *float64 `json:"radius" example:"50"`
	Remark    string   `json:"remark" example:""`
}

// defaultRadius 返回配置的默认围栏半径，保证展示值与打卡校验用同一个默认值
func (c *LocationController) defaultRadius() float64 {
	if cfg, ok := c.Container.GetService("config").(*config.Config); ok && cfg != nil {
		return cfg.GeofenceDefaultRadius
	}
	return 0
}

// HandleLocationFunc 返回一个处理驻点请求的Gin处理函数
func HandleLocationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLocationController(ctx, container)

		switch method {
		case "getLocations":
			controller.GetLocations()
		case "getLocation":
			controller.GetLocation()
		case "createLocation":
			controller.CreateLocation()
		case "updateLocation":
			controller.UpdateLocation()
		case "deleteLocation":
			controller.DeleteLocation()
		case "getLocationGuards":
			controller.GetLocationGuards()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetLocations 获取驻点列表
// @Summary      获取驻点列表
// @Description  获取所有值守驻点的列表，支持分页和搜索
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        page query int false "页码，默认为1" example:"1"
// @Param        page_size query int false "每页条数，默认为10" example:"10"
// @Param        search query string false "搜索关键词(名称)" example:"东门"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /locations [get]
// @Security     BearerAuth
func (c *LocationController) GetLocations() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	search := c.Ctx.Query("search")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	locationService := c.Container.GetService("location").(services.InterfaceLocationService)

	locations, total, err := locationService.GetAllLocations(page, pageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询驻点列表失败: "+err.Error(), nil)
		return
	}

	// 响应中带上实际生效的围栏半径，未设置时为默认值
	var locationResponses []gin.H
	for _, location := range locations {
		locationResponses = append(locationResponses, gin.H{
			"id":               location.ID,
			"name":             location.Name,
			"latitude":         location.Latitude,
			"longitude":        location.Longitude,
			"radius":           location.Radius,
			"effective_radius": location.EffectiveRadius(c.defaultRadius()),
			"remark":           location.Remark,
			"created_at":       location.CreatedAt,
			"updated_at":       location.UpdatedAt,
		})
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        locationResponses,
	})
}

// GetLocation 获取单个驻点详情
// @Summary      获取驻点详情
// @Description  根据ID获取特定驻点的详细信息
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        id path int true "驻点ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /locations/{id} [get]
// @Security     BearerAuth
func (c *LocationController) GetLocation() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	locationService := c.Container.GetService("location").(services.InterfaceLocationService)

	location, err := locationService.GetLocationByID(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrLocationNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":               location.ID,
		"name":             location.Name,
		"latitude":         location.Latitude,
		"longitude":        location.Longitude,
		"radius":           location.Radius,
		"effective_radius": location.EffectiveRadius(c.defaultRadius()),
		"remark":           location.Remark,
		"created_at":       location.CreatedAt,
		"updated_at":       location.UpdatedAt,
	})
}

// CreateLocation 创建新驻点
// @Summary      创建驻点
// @Description  创建新的值守驻点，radius为0时使用默认围栏半径
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        request body CreateLocationRequest true "驻点信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /locations [post]
// @Security     BearerAuth
func (c *LocationController) CreateLocation() {
	var req CreateLocationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	location := &models.Location{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Radius:    req.Radius,
		Remark:    req.Remark,
	}

	locationService := c.Container.GetService("location").(services.InterfaceLocationService)

	if err := locationService.CreateLocation(location); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建驻点失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":               location.ID,
		"name":             location.Name,
		"effective_radius": location.EffectiveRadius(c.defaultRadius()),
	})
}

// UpdateLocation 更新驻点信息
// @Summary      更新驻点
// @Description  更新驻点的坐标、围栏半径等信息，只影响之后的打卡校验
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        id path int true "驻点ID" example:"1"
// @Param        request body UpdateLocationRequest true "需要更新的字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /locations/{id} [put]
// @Security     BearerAuth
func (c *LocationController) UpdateLocation() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateLocationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Radius != nil {
		updates["radius"] = *req.Radius
	}
	if req.Remark != "" {
		updates["remark"] = req.Remark
	}

	locationService := c.Container.GetService("location").(services.InterfaceLocationService)

	location, err := locationService.UpdateLocation(uint(id), updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新驻点失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, location)
}

// DeleteLocation 删除驻点
// @Summary      删除驻点
// @Description  根据ID删除驻点，仍有保安分配在该驻点时拒绝删除
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        id path int true "驻点ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /locations/{id} [delete]
// @Security     BearerAuth
func (c *LocationController) DeleteLocation() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	locationService := c.Container.GetService("location").(services.InterfaceLocationService)

	if err := locationService.DeleteLocation(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除驻点失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"message": "驻点删除成功",
	})
}

// GetLocationGuards 获取驻点的保安列表
// @Summary      获取驻点保安
// @Description  获取分配在该驻点的所有保安
// @Tags         Location
// @Accept       json
// @Produce      json
// @Param        id path int true "驻点ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /locations/{id}/guards [get]
// @Security     BearerAuth
func (c *LocationController) GetLocationGuards() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	locationService := c.Container.GetService("location").(services.InterfaceLocationService)

	guards, err := locationService.GetLocationGuards(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrLocationNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, guards)
}
