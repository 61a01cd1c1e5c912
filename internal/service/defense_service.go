package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
	"pfe-hub/backend/pkg/redis"
	"pfe-hub/backend/pkg/timeutil"
)

var (
	ErrDefenseNotFound      = errors.New("答辩场次不存在")
	ErrDefenseNotScheduled  = errors.New("答辩已完成或已取消，不允许该操作")
	ErrDefenseTimeInPast    = errors.New("答辩时间必须晚于当前时间")
	ErrInvalidTimeFormat    = errors.New("时间格式无效，应为 RFC3339")
	ErrProposalNotValidated = errors.New("课题尚未通过审核，无法安排答辩")
	ErrRoomInactive         = errors.New("教室已停用")
	ErrRoomUnavailable      = errors.New("该教室在所选时间段不可用（含前后 30 分钟缓冲）")
)

// RoomBuffer 同一教室相邻答辩之间的强制缓冲时间
const RoomBuffer = 30 * time.Minute

// DefaultDurationMinutes 未指定时长时的默认答辩时长
const DefaultDurationMinutes = 60

// DefenseService 答辩排期业务接口
type DefenseService interface {
	Create(ctx context.Context, req *dto.CreateDefenseRequest, operatorID string) (*dto.DefenseResponse, error)
	Reschedule(ctx context.Context, id string, req *dto.RescheduleDefenseRequest, operatorID string) (*dto.DefenseResponse, error)
	Cancel(ctx context.Context, id string, req *dto.CancelDefenseRequest, operatorID string) (*dto.DefenseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DefenseResponse, error)
	List(ctx context.Context, req *dto.DefenseListRequest) (*dto.DefenseListResponse, error)
	// IsRoomAvailable 检查教室在 [start, start+duration) 内（含缓冲）是否空闲
	IsRoomAvailable(ctx context.Context, roomID string, start time.Time, durationMinutes int, excludeDefenseID string) (bool, error)
}

type defenseService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewDefenseService 创建 DefenseService 实例
func NewDefenseService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) DefenseService {
	return &defenseService{repo: repo, rdb: rdb, logger: logger}
}

// ════════════════════════════════════════════════
//  排期
// ════════════════════════════════════════════════

func (s *defenseService) Create(ctx context.Context, req *dto.CreateDefenseRequest, operatorID string) (*dto.DefenseResponse, error) {
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if !scheduledAt.After(time.Now()) {
		return nil, ErrDefenseTimeInPast
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}

	// 1. 课题必须已通过审核
	proposal, err := s.repo.Proposal.GetByID(ctx, req.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, err
	}
	if proposal.Status != model.ProposalStatusValidated {
		return nil, ErrProposalNotValidated
	}

	// 2. 教室必须存在且启用
	room, err := s.repo.Room.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.Error(err))
		return nil, err
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	// 3. 占用窗口校验（快路径；数据库排除约束兜底并发竞态）
	available, err := s.IsRoomAvailable(ctx, req.RoomID, scheduledAt, duration, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrRoomUnavailable
	}

	defense := &model.Defense{
		ProposalID:      req.ProposalID,
		RoomID:          req.RoomID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          model.DefenseStatusScheduled,
	}
	defense.CreatedBy = &operatorID
	defense.UpdatedBy = &operatorID

	if err := s.repo.Defense.Create(ctx, defense); err != nil {
		if isRoomWindowViolation(err) {
			return nil, ErrRoomUnavailable
		}
		s.logger.Error("创建答辩场次失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("答辩已排期",
		zap.String("defense_id", defense.DefenseID),
		zap.String("proposal_id", defense.ProposalID),
		zap.String("room_id", defense.RoomID),
		zap.Time("scheduled_at", defense.ScheduledAt))

	created, err := s.repo.Defense.GetByID(ctx, defense.DefenseID)
	if err != nil {
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}
	return defenseToResponse(created), nil
}

func (s *defenseService) Reschedule(ctx context.Context, id string, req *dto.RescheduleDefenseRequest, operatorID string) (*dto.DefenseResponse, error) {
	release, err := lockDefense(ctx, s.rdb, s.logger, id)
	if err != nil {
		return nil, err
	}
	defer release()

	defense, err := s.getDefense(ctx, id)
	if err != nil {
		return nil, err
	}
	if defense.Status != model.DefenseStatusScheduled {
		return nil, ErrDefenseNotScheduled
	}

	roomID := defense.RoomID
	scheduledAt := defense.ScheduledAt
	duration := defense.DurationMinutes

	if req.RoomID != nil {
		roomID = *req.RoomID
	}
	if req.ScheduledAt != nil {
		scheduledAt, err = time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
	}
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	if !scheduledAt.After(time.Now()) {
		return nil, ErrDefenseTimeInPast
	}

	if roomID != defense.RoomID {
		room, err := s.repo.Room.GetByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoomNotFound
			}
			s.logger.Error("查询教室失败", zap.Error(err))
			return nil, err
		}
		if !room.IsActive {
			return nil, ErrRoomInactive
		}
	}

	// 排除自身后重新校验占用窗口
	available, err := s.IsRoomAvailable(ctx, roomID, scheduledAt, duration, defense.DefenseID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrRoomUnavailable
	}

	defense.RoomID = roomID
	defense.ScheduledAt = scheduledAt
	defense.DurationMinutes = duration
	defense.UpdatedBy = &operatorID

	if err := s.repo.Defense.Update(ctx, defense); err != nil {
		if isRoomWindowViolation(err) {
			return nil, ErrRoomUnavailable
		}
		s.logger.Error("答辩改期失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("答辩已改期",
		zap.String("defense_id", defense.DefenseID),
		zap.Time("scheduled_at", defense.ScheduledAt))

	updated, err := s.repo.Defense.GetByID(ctx, defense.DefenseID)
	if err != nil {
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}
	return defenseToResponse(updated), nil
}

func (s *defenseService) Cancel(ctx context.Context, id string, req *dto.CancelDefenseRequest, operatorID string) (*dto.DefenseResponse, error) {
	release, err := lockDefense(ctx, s.rdb, s.logger, id)
	if err != nil {
		return nil, err
	}
	defer release()

	defense, err := s.getDefense(ctx, id)
	if err != nil {
		return nil, err
	}
	if defense.Status != model.DefenseStatusScheduled {
		return nil, ErrDefenseNotScheduled
	}

	defense.Status = model.DefenseStatusCancelled
	defense.Comments = req.Reason
	defense.UpdatedBy = &operatorID

	if err := s.repo.Defense.Update(ctx, defense); err != nil {
		s.logger.Error("取消答辩失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("答辩已取消",
		zap.String("defense_id", defense.DefenseID),
		zap.String("reason", req.Reason))
	return defenseToResponse(defense), nil
}

// ════════════════════════════════════════════════
//  查询
// ════════════════════════════════════════════════

func (s *defenseService) GetByID(ctx context.Context, id string) (*dto.DefenseResponse, error) {
	defense, err := s.getDefense(ctx, id)
	if err != nil {
		return nil, err
	}
	return defenseToResponse(defense), nil
}

func (s *defenseService) List(ctx context.Context, req *dto.DefenseListRequest) (*dto.DefenseListResponse, error) {
	filter := repository.DefenseFilter{
		Status: req.Status,
		RoomID: req.RoomID,
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		filter.To = &to
	}

	defenses, total, err := s.repo.Defense.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询答辩列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.DefenseResponse, 0, len(defenses))
	for i := range defenses {
		items = append(items, *defenseToResponse(&defenses[i]))
	}
	return &dto.DefenseListResponse{Total: total, Items: items}, nil
}

// IsRoomAvailable 逐场比较候选时间段与既有非取消场次的缓冲占用窗口。
// 窗口为左闭右开 [开始-缓冲, 结束+缓冲)，因此一场结束后恰好 2×缓冲 的
// 间隔处可以紧接安排下一场。
func (s *defenseService) IsRoomAvailable(ctx context.Context, roomID string, start time.Time, durationMinutes int, excludeDefenseID string) (bool, error) {
	existing, err := s.repo.Defense.ListActiveByRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("查询教室占用失败", zap.Error(err))
		return false, err
	}

	candStart, candEnd := timeutil.GuardedWindow(start, time.Duration(durationMinutes)*time.Minute, RoomBuffer)
	for i := range existing {
		if existing[i].DefenseID == excludeDefenseID {
			continue
		}
		otherStart, otherEnd := timeutil.GuardedWindow(
			existing[i].ScheduledAt,
			time.Duration(existing[i].DurationMinutes)*time.Minute,
			RoomBuffer,
		)
		if timeutil.Overlaps(candStart, candEnd, otherStart, otherEnd) {
			return false, nil
		}
	}
	return true, nil
}

// ── 内部辅助 ──

func (s *defenseService) getDefense(ctx context.Context, id string) (*model.Defense, error) {
	defense, err := s.repo.Defense.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}
	return defense, nil
}

// isRoomWindowViolation 判断数据库排除约束（教室占用窗口）冲突
func isRoomWindowViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "excl_defenses_room_window")
}

func defenseToResponse(d *model.Defense) *dto.DefenseResponse {
	resp := &dto.DefenseResponse{
		ID:              d.DefenseID,
		ProposalID:      d.ProposalID,
		ScheduledAt:     d.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: d.DurationMinutes,
		Status:          d.Status,
		ReportScore:     d.ReportScore,
		PresentScore:    d.PresentScore,
		CompanyScore:    d.CompanyScore,
		FinalScore:      d.FinalScore,
		Mention:         d.Mention,
		Comments:        d.Comments,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       d.UpdatedAt.Format(time.RFC3339),
	}
	if d.Room != nil {
		resp.Room = &dto.RoomBrief{ID: d.Room.RoomID, Name: d.Room.Name, Capacity: d.Room.Capacity}
	}
	if d.Proposal != nil {
		p := d.Proposal
		resp.Proposal = &dto.ProposalResponse{
			ID:     p.ProposalID,
			Title:  p.Title,
			Type:   p.Type,
			Status: p.Status,
		}
		if p.Student != nil {
			resp.Proposal.Student = &dto.UserBrief{ID: p.Student.UserID, Name: p.Student.Name, Role: p.Student.Role}
		}
	}
	for i := range d.JuryMembers {
		resp.JuryMembers = append(resp.JuryMembers, juryMemberToResponse(&d.JuryMembers[i]))
	}
	return resp
}

func juryMemberToResponse(m *model.JuryMember) dto.JuryMemberResponse {
	resp := dto.JuryMemberResponse{
		ID:        m.JuryMemberID,
		DefenseID: m.DefenseID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.User != nil {
		resp.User = &dto.UserBrief{ID: m.User.UserID, Name: m.User.Name, Role: m.User.Role}
	}
	return resp
}
