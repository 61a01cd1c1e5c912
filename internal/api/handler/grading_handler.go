package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/service"
	pkgerrors "pfe-hub/backend/pkg/errors"
	"pfe-hub/backend/pkg/response"
)

// GradingHandler 评分模块 HTTP 处理器
type GradingHandler struct {
	gradingSvc service.GradingService
}

// NewGradingHandler 创建 GradingHandler
func NewGradingHandler(gradingSvc service.GradingService) *GradingHandler {
	return &GradingHandler{gradingSvc: gradingSvc}
}

// SubmitEvaluation 批量提交某评审成员的评分（仅教师）
// POST /api/v1/defenses/:id/jury/:memberId/evaluations
func (h *GradingHandler) SubmitEvaluation(c *gin.Context) {
	defenseID := c.Param("id")
	memberID := c.Param("memberId")

	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.gradingSvc.SubmitEvaluation(c.Request.Context(), defenseID, memberID, &req, operatorID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}
	response.Created(c, result)
}

// ListEvaluations 列出答辩的全部评分明细
// GET /api/v1/defenses/:id/evaluations
func (h *GradingHandler) ListEvaluations(c *gin.Context) {
	defenseID := c.Param("id")

	result, err := h.gradingSvc.ListEvaluations(c.Request.Context(), defenseID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}
	response.OK(c, result)
}

// GetProgress 查询答辩的评分进度
// GET /api/v1/defenses/:id/grading-progress
func (h *GradingHandler) GetProgress(c *gin.Context) {
	defenseID := c.Param("id")

	result, err := h.gradingSvc.Progress(c.Request.Context(), defenseID)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}
	response.OK(c, result)
}

// PreviewScore 按类别分试算最终成绩（纯计算，不落库）
// POST /api/v1/grading/preview
func (h *GradingHandler) PreviewScore(c *gin.Context) {
	var req dto.PreviewScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	result, err := h.gradingSvc.PreviewScore(c.Request.Context(), &req)
	if err != nil {
		h.handleGradingError(c, err)
		return
	}
	response.OK(c, result)
}

// ListCriteria 评分项目录
// GET /api/v1/grading/criteria
func (h *GradingHandler) ListCriteria(c *gin.Context) {
	response.OK(c, h.gradingSvc.Criteria(c.Request.Context()))
}

func (h *GradingHandler) handleGradingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDefenseNotFound):
		response.NotFound(c, 16101, "答辩场次不存在")
	case errors.Is(err, service.ErrJuryMemberNotFound):
		response.NotFound(c, 16102, "评审成员不存在")
	case errors.Is(err, service.ErrMemberNotOnDefense):
		response.Forbidden(c, 16103, "评审成员不属于该场答辩")
	case errors.Is(err, service.ErrDefenseNotScheduled):
		response.BadRequest(c, 16104, "答辩已完成或已取消，不允许提交评分")
	case errors.Is(err, service.ErrCriterionUnknown):
		response.BadRequest(c, 16105, "评分项不在目录中")
	case errors.Is(err, service.ErrScoreOutOfRange):
		response.BadRequest(c, 16106, "分数超出该评分项的允许范围")
	case errors.Is(err, service.ErrDuplicateEvaluation):
		response.Conflict(c, 16107, "该评分项已提交，不允许覆盖")
	case errors.Is(err, service.ErrDefenseBusy):
		response.Conflict(c, 16108, "该答辩正在被其他操作处理，请稍后重试")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 16109, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
