package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/service"
	pkgerrors "pfe-hub/backend/pkg/errors"
	"pfe-hub/backend/pkg/response"
)

// DefenseHandler 答辩排期模块 HTTP 处理器
type DefenseHandler struct {
	defenseSvc service.DefenseService
}

// NewDefenseHandler 创建 DefenseHandler
func NewDefenseHandler(defenseSvc service.DefenseService) *DefenseHandler {
	return &DefenseHandler{defenseSvc: defenseSvc}
}

// CreateDefense 排期答辩（仅管理员）
// POST /api/v1/defenses
func (h *DefenseHandler) CreateDefense(c *gin.Context) {
	var req dto.CreateDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.defenseSvc.Create(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}
	response.Created(c, result)
}

// RescheduleDefense 改期（仅管理员）
// PUT /api/v1/defenses/:id
func (h *DefenseHandler) RescheduleDefense(c *gin.Context) {
	id := c.Param("id")

	var req dto.RescheduleDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.defenseSvc.Reschedule(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}
	response.OK(c, result)
}

// CancelDefense 取消答辩（仅管理员）
// POST /api/v1/defenses/:id/cancel
func (h *DefenseHandler) CancelDefense(c *gin.Context) {
	id := c.Param("id")

	var req dto.CancelDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.defenseSvc.Cancel(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}
	response.OK(c, result)
}

// GetDefense 获取答辩详情（含评审团）
// GET /api/v1/defenses/:id
func (h *DefenseHandler) GetDefense(c *gin.Context) {
	id := c.Param("id")

	result, err := h.defenseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}
	response.OK(c, result)
}

// ListDefenses 答辩分页列表
// GET /api/v1/defenses
func (h *DefenseHandler) ListDefenses(c *gin.Context) {
	var req dto.DefenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	result, err := h.defenseSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}
	response.OKPage(c, result.Items, result.Total, req.GetPage(), req.GetPageSize())
}

// CheckRoomAvailability 教室可用性预检
// GET /api/v1/defenses/availability
func (h *DefenseHandler) CheckRoomAvailability(c *gin.Context) {
	var req dto.RoomAvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	start, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		response.BadRequest(c, 14002, "时间格式无效，应为 RFC3339")
		return
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = service.DefaultDurationMinutes
	}

	available, err := h.defenseSvc.IsRoomAvailable(c.Request.Context(), req.RoomID, start, duration, "")
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}
	response.OK(c, dto.RoomAvailabilityResponse{Available: available})
}

func (h *DefenseHandler) handleDefenseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDefenseNotFound):
		response.NotFound(c, 14101, "答辩场次不存在")
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 14102, "课题不存在")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14103, "教室不存在")
	case errors.Is(err, service.ErrInvalidTimeFormat):
		response.BadRequest(c, 14104, "时间格式无效，应为 RFC3339")
	case errors.Is(err, service.ErrDefenseTimeInPast):
		response.BadRequest(c, 14105, "答辩时间必须晚于当前时间")
	case errors.Is(err, service.ErrProposalNotValidated):
		response.BadRequest(c, 14106, "课题尚未通过审核，无法安排答辩")
	case errors.Is(err, service.ErrRoomInactive):
		response.BadRequest(c, 14107, "教室已停用")
	case errors.Is(err, service.ErrRoomUnavailable):
		response.Conflict(c, 14108, "该教室在所选时间段不可用（含前后 30 分钟缓冲）")
	case errors.Is(err, service.ErrDefenseNotScheduled):
		response.BadRequest(c, 14109, "答辩已完成或已取消，不允许该操作")
	case errors.Is(err, service.ErrDefenseBusy):
		response.Conflict(c, 14110, "该答辩正在被其他操作处理，请稍后重试")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14111, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
