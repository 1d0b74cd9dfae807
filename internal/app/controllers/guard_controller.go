package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/domain/services"
	"guardian-http-service/internal/domain/services/container"
	"guardian-http-service/internal/error/code"
	"guardian-http-service/internal/error/response"
)

// InterfaceGuardController 定义保安控制器接口
type InterfaceGuardController interface {
	GetGuards()
	GetGuard()
	CreateGuard()
	UpdateGuard()
	DeleteGuard()
	AssignLocation()
}

// GuardController 处理保安人员相关的请求
type GuardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewGuardController 创建一个新的保安控制器
func NewGuardController(ctx *gin.Context, container *container.ServiceContainer) *GuardController {
	return &GuardController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateGuardRequest 表示创建保安的请求
type CreateGuardRequest struct {
	Username   string `json:"username" binding:"required" example:"guard001"`
	Password   string `json:"password" binding:"required" example:"secret123"`
	Name       string `json:"name" binding:"required" example:"张伟"`
	Phone      string `json:"phone" example:"13800138000"`
	Rank       string `json:"rank" example:"rookie"`
	LocationID *uint  `json:"location_id" example:"1"`
	Remark     string `json:"remark" example:"夜班保安"`
}

// UpdateGuardRequest 表示更新保安的请求
type UpdateGuardRequest struct {
	Username string `json:"username" example:"guard001"`
	Password string `json:"password" example:"newsecret"`
	Name     string `json:"name" example:"张伟"`
	Phone    string `json:"phone" example:"13800138000"`
	Rank     string `json:"rank" example:"veteran"`
	Status   string `json:"status" example:"active"`
	Remark   string `json:"remark" example:""`
}

// AssignLocationRequest 表示分配驻点的请求
type AssignLocationRequest struct {
	LocationID *uint `json:"location_id" example:"1"`
}

// HandleGuardFunc 返回一个处理保安请求的Gin处理函数
func HandleGuardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewGuardController(ctx, container)

		switch method {
		case "getGuards":
			controller.GetGuards()
		case "getGuard":
			controller.GetGuard()
		case "createGuard":
			controller.CreateGuard()
		case "updateGuard":
			controller.UpdateGuard()
		case "deleteGuard":
			controller.DeleteGuard()
		case "assignLocation":
			controller.AssignLocation()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetGuards 获取保安列表
// @Summary      获取保安列表
// @Description  获取所有保安的列表，支持分页和搜索
// @Tags         Guard
// @Accept       json
// @Produce      json
// @Param        page query int false "页码，默认为1" example:"1"
// @Param        page_size query int false "每页条数，默认为10" example:"10"
// @Param        search query string false "搜索关键词(姓名、电话、用户名)" example:"张伟"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /guards [get]
// @Security     BearerAuth
func (c *GuardController) GetGuards() {
	// 获取分页参数
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	search := c.Ctx.Query("search")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	// 使用 GuardService 获取保安列表
	guardService := c.Container.GetService("guard").(services.InterfaceGuardService)

	guards, total, err := guardService.GetAllGuards(page, pageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询保安列表失败: "+err.Error(), nil)
		return
	}

	// 构建响应
	var guardResponses []gin.H
	for _, guard := range guards {
		guardResponses = append(guardResponses, gin.H{
			"id":          guard.ID,
			"username":    guard.Username,
			"name":        guard.Name,
			"phone":       guard.Phone,
			"rank":        guard.Rank,
			"status":      guard.Status,
			"location_id": guard.LocationID,
			"created_at":  guard.CreatedAt,
			"updated_at":  guard.UpdatedAt,
		})
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        guardResponses,
	})
}

// GetGuard 获取单个保安详情
// @Summary      获取保安详情
// @Description  根据ID获取特定保安的详细信息及其值守驻点
// @Tags         Guard
// @Accept       json
// @Produce      json
// @Param        id path int true "保安ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /guards/{id} [get]
// @Security     BearerAuth
func (c *GuardController) GetGuard() {
	// 获取URL参数中的ID
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	guardService := c.Container.GetService("guard").(services.InterfaceGuardService)

	guard, err := guardService.GetGuardByIDWithLocation(uint(id))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrGuardNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, guard)
}

// CreateGuard 创建新保安
// @Summary      创建保安
// @Description  创建新的保安账号，可同时分配值守驻点
// @Tags         Guard
// @Accept       json
// @Produce      json
// @Param        request body CreateGuardRequest true "保安信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /guards [post]
// @Security     BearerAuth
func (c *GuardController) CreateGuard() {
	var req CreateGuardRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	guard := &models.Guard{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Phone:      req.Phone,
		Rank:       models.GuardRank(req.Rank),
		LocationID: req.LocationID,
		Remark:     req.Remark,
		Status:     "active",
	}
	if req.Rank == "" {
		guard.Rank = models.GuardRankRookie
	}

	guardService := c.Container.GetService("guard").(services.InterfaceGuardService)

	if err := guardService.CreateGuard(guard); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建保安失败: "+err.Error(), nil)
		return
	}

	c.Ctx.JSON(http.StatusOK, gin.H{
		"code":    code.ErrSuccess,
		"message": "保安创建成功",
		"data": gin.H{
			"id":          guard.ID,
			"username":    guard.Username,
			"name":        guard.Name,
			"location_id": guard.LocationID,
		},
	})
}

// UpdateGuard 更新保安信息
// @Summary      更新保安
// @Description  更新保安的基本信息
// @Tags         Guard
// @Accept       json
// @Produce      json
// @Param        id path int true "保安ID" example:"1"
// @Param        request body UpdateGuardRequest true "需要更新的字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /guards/{id} [put]
// @Security     BearerAuth
func (c *GuardController) UpdateGuard() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateGuardRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	// 只更新请求中出现的字段
	updates := make(map[string]interface{})
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Password != "" {
		updates["password"] = req.Password
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Rank != "" {
		updates["rank"] = req.Rank
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Remark != "" {
		updates["remark"] = req.Remark
	}

	guardService := c.Container.GetService("guard").(services.InterfaceGuardService)

	guard, err := guardService.UpdateGuard(uint(id), updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新保安失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, guard)
}

// DeleteGuard 删除保安
// @Summary      删除保安
// @Description  根据ID删除保安账号
// @Tags         Guard
// @Accept       json
// @Produce      json
// @Param        id path int true "保安ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /guards/{id} [delete]
// @Security     BearerAuth
func (c *GuardController) DeleteGuard() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	guardService := c.Container.GetService("guard").(services.InterfaceGuardService)

	if err := guardService.DeleteGuard(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除保安失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"message": "保安删除成功",
	})
}

// AssignLocation 为保安分配值守驻点
// @Summary      分配值守驻点
// @Description  为保安分配或取消值守驻点，location_id为null表示取消分配
// @Tags         Guard
// @Accept       json
// @Produce      json
// @Param        id path int true "保安ID" example:"1"
// @Param        request body AssignLocationRequest true "驻点分配信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /guards/{id}/location [put]
// @Security     BearerAuth
func (c *GuardController) AssignLocation() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req AssignLocationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	guardService := c.Container.GetService("guard").(services.InterfaceGuardService)

	guard, err := guardService.AssignLocation(uint(id), req.LocationID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "分配驻点失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, guard)
}
