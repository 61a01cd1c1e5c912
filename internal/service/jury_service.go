package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
	"pfe-hub/backend/pkg/redis"
	"pfe-hub/backend/pkg/timeutil"
)

var (
	ErrJuryMemberNotFound    = errors.New("评审成员不存在")
	ErrJuryStudentConflict   = errors.New("学生本人不能担任自己答辩的评审")
	ErrSupervisorGradingSeat = errors.New("课题指导教师不能担任 rapporteur 或 examiner（利益回避）")
	ErrJuryDuplicateSeat     = errors.New("该用户已是本场答辩的评审成员")
	ErrWeeklyWorkloadLimit   = errors.New("该用户本周评审场次已达上限（4 场）")
	ErrJuryFrozen            = errors.New("答辩已完成，评审团组成不可变更")
)

// MaxWeeklyJuryDuties 每人每自然周（周一至周日）可承担的评审场次上限
const MaxWeeklyJuryDuties = 4

// JuryService 评审团业务接口
type JuryService interface {
	AddMember(ctx context.Context, defenseID string, req *dto.AddJuryMemberRequest, operatorID string) (*dto.JuryMemberResponse, error)
	RemoveMember(ctx context.Context, juryMemberID string) error
	ListMembers(ctx context.Context, defenseID string) ([]dto.JuryMemberResponse, error)
	// ValidateComposition 校验评审团组成完整性（只读）
	ValidateComposition(ctx context.Context, defenseID string) (*dto.JuryCompositionResponse, error)
}

type juryService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewJuryService 创建 JuryService 实例
func NewJuryService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) JuryService {
	return &juryService{repo: repo, rdb: rdb, logger: logger}
}

// AddMember 添加评审成员。校验按顺序进行，首个失败即返回：
// 存在性 → 利益回避 → 席位查重 → 周负载上限
func (s *juryService) AddMember(ctx context.Context, defenseID string, req *dto.AddJuryMemberRequest, operatorID string) (*dto.JuryMemberResponse, error) {
	release, err := lockDefense(ctx, s.rdb, s.logger, defenseID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 1. 答辩存在
	defense, err := s.repo.Defense.GetByID(ctx, defenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}
	if defense.Status != model.DefenseStatusScheduled {
		return nil, ErrDefenseNotScheduled
	}

	// 2. 用户存在
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 3. 关联课题存在（数据完整性）
	proposal, err := s.repo.Proposal.GetByID(ctx, defense.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}

	// 4. 学生本人回避
	if req.UserID == proposal.StudentID {
		return nil, ErrJuryStudentConflict
	}

	// 5-6. 指导教师只能以 supervisor 身份列席，不能担任独立评审角色
	isGradingSeat := req.Role == model.JuryRoleRapporteur || req.Role == model.JuryRoleExaminer
	if isGradingSeat {
		if proposal.AcademicSupervisorID != nil && req.UserID == *proposal.AcademicSupervisorID {
			return nil, ErrSupervisorGradingSeat
		}
		if proposal.CompanySupervisorID != nil && req.UserID == *proposal.CompanySupervisorID {
			return nil, ErrSupervisorGradingSeat
		}
	}

	// 7. 一人一席
	if _, err := s.repo.JuryMember.GetByDefenseAndUser(ctx, defenseID, req.UserID); err == nil {
		return nil, ErrJuryDuplicateSeat
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询评审成员失败", zap.Error(err))
		return nil, err
	}

	// 8. 周负载上限：统计该用户在本场所在自然周内、其他非取消答辩的席位数
	weekStart, weekEnd := timeutil.WeekWindow(defense.ScheduledAt)
	count, err := s.repo.JuryMember.CountByUserInWindow(ctx, req.UserID, weekStart, weekEnd, defenseID)
	if err != nil {
		s.logger.Error("统计周评审负载失败", zap.Error(err))
		return nil, err
	}
	if count >= MaxWeeklyJuryDuties {
		return nil, ErrWeeklyWorkloadLimit
	}

	// 9. 落库（(defense_id, user_id) 唯一约束兜底并发重复）
	member := &model.JuryMember{
		DefenseID: defenseID,
		UserID:    req.UserID,
		Role:      req.Role,
	}
	member.CreatedBy = &operatorID
	member.UpdatedBy = &operatorID

	if err := s.repo.JuryMember.Create(ctx, member); err != nil {
		s.logger.Error("添加评审成员失败", zap.Error(err))
		return nil, err
	}
	member.User = user

	s.logger.Info("评审成员已添加",
		zap.String("defense_id", defenseID),
		zap.String("user_id", req.UserID),
		zap.String("role", req.Role))

	resp := juryMemberToResponse(member)
	return &resp, nil
}

func (s *juryService) RemoveMember(ctx context.Context, juryMemberID string) error {
	member, err := s.repo.JuryMember.GetByID(ctx, juryMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJuryMemberNotFound
		}
		s.logger.Error("查询评审成员失败", zap.Error(err))
		return err
	}

	release, err := lockDefense(ctx, s.rdb, s.logger, member.DefenseID)
	if err != nil {
		return err
	}
	defer release()

	defense, err := s.repo.Defense.GetByID(ctx, member.DefenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return err
	}
	// 成绩定格后评审团冻结
	if defense.Status == model.DefenseStatusCompleted {
		return ErrJuryFrozen
	}

	if err := s.repo.JuryMember.Delete(ctx, juryMemberID); err != nil {
		s.logger.Error("移除评审成员失败", zap.Error(err))
		return err
	}

	s.logger.Info("评审成员已移除",
		zap.String("defense_id", member.DefenseID),
		zap.String("jury_member_id", juryMemberID))
	return nil
}

func (s *juryService) ListMembers(ctx context.Context, defenseID string) ([]dto.JuryMemberResponse, error) {
	if _, err := s.repo.Defense.GetByID(ctx, defenseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}

	members, err := s.repo.JuryMember.ListByDefense(ctx, defenseID)
	if err != nil {
		s.logger.Error("查询评审团失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.JuryMemberResponse, 0, len(members))
	for i := range members {
		out = append(out, juryMemberToResponse(&members[i]))
	}
	return out, nil
}

// ValidateComposition 基础要求：president / rapporteur / examiner 各至少一名。
// 企业课题额外要求课题的校内导师与企业导师均以 supervisor 角色列席
// （仅数席位不够：两名校内导师不应通过）。
func (s *juryService) ValidateComposition(ctx context.Context, defenseID string) (*dto.JuryCompositionResponse, error) {
	defense, err := s.repo.Defense.GetByID(ctx, defenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}

	proposal, err := s.repo.Proposal.GetByID(ctx, defense.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}

	members, err := s.repo.JuryMember.ListByDefense(ctx, defenseID)
	if err != nil {
		s.logger.Error("查询评审团失败", zap.Error(err))
		return nil, err
	}

	roleCount := make(map[string]int)
	supervisorSeats := make(map[string]bool) // 以 supervisor 角色列席的 user_id
	jury := make([]dto.JuryMemberResponse, 0, len(members))
	for i := range members {
		roleCount[members[i].Role]++
		if members[i].Role == model.JuryRoleSupervisor {
			supervisorSeats[members[i].UserID] = true
		}
		jury = append(jury, juryMemberToResponse(&members[i]))
	}

	var missing []string
	for _, role := range []string{model.JuryRolePresident, model.JuryRoleRapporteur, model.JuryRoleExaminer} {
		if roleCount[role] < 1 {
			missing = append(missing, fmt.Sprintf("缺少角色: %s", role))
		}
	}

	if proposal.Type == model.ProposalTypeCompany {
		if proposal.AcademicSupervisorID == nil || !supervisorSeats[*proposal.AcademicSupervisorID] {
			missing = append(missing, "企业课题要求校内导师以 supervisor 角色列席")
		}
		if proposal.CompanySupervisorID == nil || !supervisorSeats[*proposal.CompanySupervisorID] {
			missing = append(missing, "企业课题要求企业导师以 supervisor 角色列席")
		}
	}

	return &dto.JuryCompositionResponse{
		Valid:   len(missing) == 0,
		Missing: missing,
		Jury:    jury,
	}, nil
}
