package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/service"
	"pfe-hub/backend/pkg/response"
)

// JuryHandler 评审团模块 HTTP 处理器
type JuryHandler struct {
	jurySvc service.JuryService
}

// NewJuryHandler 创建 JuryHandler
func NewJuryHandler(jurySvc service.JuryService) *JuryHandler {
	return &JuryHandler{jurySvc: jurySvc}
}

// AddJuryMember 为答辩添加评审成员（仅管理员）
// POST /api/v1/defenses/:id/jury
func (h *JuryHandler) AddJuryMember(c *gin.Context) {
	defenseID := c.Param("id")

	var req dto.AddJuryMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.jurySvc.AddMember(c.Request.Context(), defenseID, &req, operatorID)
	if err != nil {
		h.handleJuryError(c, err)
		return
	}
	response.Created(c, result)
}

// RemoveJuryMember 移除评审成员（仅管理员）
// DELETE /api/v1/jury-members/:id
func (h *JuryHandler) RemoveJuryMember(c *gin.Context) {
	id := c.Param("id")

	if err := h.jurySvc.RemoveMember(c.Request.Context(), id); err != nil {
		h.handleJuryError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListJuryMembers 列出答辩的评审团
// GET /api/v1/defenses/:id/jury
func (h *JuryHandler) ListJuryMembers(c *gin.Context) {
	defenseID := c.Param("id")

	result, err := h.jurySvc.ListMembers(c.Request.Context(), defenseID)
	if err != nil {
		h.handleJuryError(c, err)
		return
	}
	response.OK(c, result)
}

// ValidateJuryComposition 校验评审团组成完整性
// GET /api/v1/defenses/:id/jury/validate
func (h *JuryHandler) ValidateJuryComposition(c *gin.Context) {
	defenseID := c.Param("id")

	result, err := h.jurySvc.ValidateComposition(c.Request.Context(), defenseID)
	if err != nil {
		h.handleJuryError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *JuryHandler) handleJuryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDefenseNotFound):
		response.NotFound(c, 15101, "答辩场次不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15102, "用户不存在")
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 15103, "课题不存在")
	case errors.Is(err, service.ErrJuryMemberNotFound):
		response.NotFound(c, 15104, "评审成员不存在")
	case errors.Is(err, service.ErrJuryStudentConflict):
		response.Forbidden(c, 15105, "学生本人不能担任自己答辩的评审")
	case errors.Is(err, service.ErrSupervisorGradingSeat):
		response.Forbidden(c, 15106, "课题指导教师不能担任 rapporteur 或 examiner")
	case errors.Is(err, service.ErrJuryDuplicateSeat):
		response.Conflict(c, 15107, "该用户已是本场答辩的评审成员")
	case errors.Is(err, service.ErrWeeklyWorkloadLimit):
		response.Conflict(c, 15108, "该用户本周评审场次已达上限（4 场）")
	case errors.Is(err, service.ErrJuryFrozen):
		response.BadRequest(c, 15109, "答辩已完成，评审团组成不可变更")
	case errors.Is(err, service.ErrDefenseNotScheduled):
		response.BadRequest(c, 15110, "答辩已完成或已取消，不允许该操作")
	case errors.Is(err, service.ErrDefenseBusy):
		response.Conflict(c, 15111, "该答辩正在被其他操作处理，请稍后重试")
	default:
		response.InternalError(c)
	}
}
