package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/service"
	pkgerrors "pfe-hub/backend/pkg/errors"
	"pfe-hub/backend/pkg/response"
)

// ProposalHandler 课题模块 HTTP 处理器
type ProposalHandler struct {
	proposalSvc service.ProposalService
}

// NewProposalHandler 创建 ProposalHandler
func NewProposalHandler(proposalSvc service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalSvc: proposalSvc}
}

// CreateProposal 创建课题（草稿）
// POST /api/v1/proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.proposalSvc.Create(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateProposal 更新课题（仅 draft / to_modify 状态）
// PUT /api/v1/proposals/:id
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.proposalSvc.Update(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, result)
}

// SubmitProposal 提交课题送审
// POST /api/v1/proposals/:id/submit
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	id := c.Param("id")

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.proposalSvc.Submit(c.Request.Context(), id, operatorID)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, result)
}

// ReviewProposal 审核课题（仅管理员）
// POST /api/v1/proposals/:id/review
func (h *ProposalHandler) ReviewProposal(c *gin.Context) {
	id := c.Param("id")

	var req dto.ReviewProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.proposalSvc.Review(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, result)
}

// GetProposal 获取课题详情
// GET /api/v1/proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id := c.Param("id")

	result, err := h.proposalSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, result)
}

// ListProposals 课题分页列表
// GET /api/v1/proposals
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	var req dto.ProposalListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	result, err := h.proposalSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OKPage(c, result.Items, result.Total, req.GetPage(), req.GetPageSize())
}

func (h *ProposalHandler) handleProposalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 12101, "课题不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12102, "关联用户不存在")
	case errors.Is(err, service.ErrProposalStateConflict):
		response.Conflict(c, 12103, "当前状态不允许该操作")
	case errors.Is(err, service.ErrStudentRequired):
		response.BadRequest(c, 12104, "student_id 必须指向学生账号")
	case errors.Is(err, service.ErrSupervisorRequired):
		response.BadRequest(c, 12105, "导师必须为教师账号")
	case errors.Is(err, service.ErrCompanyFieldsRequired):
		response.BadRequest(c, 12106, "企业课题须填写企业名称与企业导师")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12107, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/proposal_handler.go
