package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
)

// ── 测试辅助 ──

type testMocks struct {
	users       *mockUserRepo
	proposals   *mockProposalRepo
	rooms       *mockRoomRepo
	defenses    *mockDefenseRepo
	juryMembers *mockJuryMemberRepo
	evaluations *mockEvaluationRepo
	settings    *mockGradingSettingsRepo
}

func newTestRepo() (*repository.Repository, *testMocks) {
	m := &testMocks{
		users:       newMockUserRepo(),
		proposals:   newMockProposalRepo(),
		rooms:       newMockRoomRepo(),
		evaluations: newMockEvaluationRepo(),
		settings:    newMockGradingSettingsRepo(),
	}
	m.defenses = newMockDefenseRepo()
	m.juryMembers = newMockJuryMemberRepo(m.defenses)

	repo := &repository.Repository{
		User:            m.users,
		Proposal:        m.proposals,
		Room:            m.rooms,
		Defense:         m.defenses,
		JuryMember:      m.juryMembers,
		Evaluation:      m.evaluations,
		GradingSettings: m.settings,
	}
	return repo, m
}

func setupTestDefenseService() (DefenseService, *testMocks) {
	repo, m := newTestRepo()
	svc := NewDefenseService(repo, nil, zap.NewNop())
	return svc, m
}

func seedValidatedProposal(m *testMocks, id string) *model.Proposal {
	p := &model.Proposal{
		ProposalID: id,
		Title:      "测试课题",
		Type:       model.ProposalTypeAcademic,
		Status:     model.ProposalStatusValidated,
		StudentID:  "user-student",
	}
	p.Version = 1
	m.proposals.proposals[id] = p
	return p
}

func seedRoom(m *testMocks, id string) *model.Room {
	r := &model.Room{RoomID: id, Name: "A101", Capacity: 30, IsActive: true}
	r.Version = 1
	m.rooms.rooms[id] = r
	return r
}

// futureTime 返回未来某个整点时刻（排期校验要求晚于当前时间）
func futureTime(days int) time.Time {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour).Truncate(time.Hour)
}

// ── Create 测试 ──

func TestDefenseService_Create_Success(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	req := &dto.CreateDefenseRequest{
		ProposalID:      "prop-001",
		RoomID:          "room-A101",
		ScheduledAt:     futureTime(7).Format(time.RFC3339),
		DurationMinutes: 60,
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.DefenseStatusScheduled {
		t.Errorf("期望状态=scheduled，实际=%s", result.Status)
	}
	if result.DurationMinutes != 60 {
		t.Errorf("期望时长=60，实际=%d", result.DurationMinutes)
	}
}

func TestDefenseService_Create_ProposalNotValidated(t *testing.T) {
	svc, m := setupTestDefenseService()
	p := seedValidatedProposal(m, "prop-001")
	p.Status = model.ProposalStatusSubmitted
	seedRoom(m, "room-A101")

	req := &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: futureTime(7).Format(time.RFC3339),
	}

	if _, err := svc.Create(context.Background(), req, "admin-001"); !errors.Is(err, ErrProposalNotValidated) {
		t.Errorf("期望 ErrProposalNotValidated，实际=%v", err)
	}
}

func TestDefenseService_Create_PastTime(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	req := &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: time.Now().Add(-time.Hour).Format(time.RFC3339),
	}

	if _, err := svc.Create(context.Background(), req, "admin-001"); !errors.Is(err, ErrDefenseTimeInPast) {
		t.Errorf("期望 ErrDefenseTimeInPast，实际=%v", err)
	}
}

func TestDefenseService_Create_RoomInactive(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	r := seedRoom(m, "room-A101")
	r.IsActive = false

	req := &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: futureTime(7).Format(time.RFC3339),
	}

	if _, err := svc.Create(context.Background(), req, "admin-001"); !errors.Is(err, ErrRoomInactive) {
		t.Errorf("期望 ErrRoomInactive，实际=%v", err)
	}
}

// 缓冲窗口冲突：同教室第二场开始于第一场结束后 45 分钟（小于 2×30 分钟缓冲）应被拒绝
func TestDefenseService_Create_RoomConflictWithinBuffer(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedValidatedProposal(m, "prop-002")
	seedRoom(m, "room-A101")

	first := futureTime(7)
	req1 := &dto.CreateDefenseRequest{
		ProposalID:      "prop-001",
		RoomID:          "room-A101",
		ScheduledAt:     first.Format(time.RFC3339),
		DurationMinutes: 60,
	}
	if _, err := svc.Create(context.Background(), req1, "admin-001"); err != nil {
		t.Fatalf("第一场 Create 应成功: %v", err)
	}

	// 第一场结束于 +60min，第二场开始于 +105min，间隔 45min < 60min
	req2 := &dto.CreateDefenseRequest{
		ProposalID:      "prop-002",
		RoomID:          "room-A101",
		ScheduledAt:     first.Add(105 * time.Minute).Format(time.RFC3339),
		DurationMinutes: 60,
	}
	if _, err := svc.Create(context.Background(), req2, "admin-001"); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("期望 ErrRoomUnavailable，实际=%v", err)
	}
}

// 缓冲窗口边界：间隔恰好 2×30 分钟（窗口左闭右开相切）应可排
func TestDefenseService_Create_RoomAvailableAtBufferBoundary(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedValidatedProposal(m, "prop-002")
	seedRoom(m, "room-A101")

	first := futureTime(7)
	req1 := &dto.CreateDefenseRequest{
		ProposalID:      "prop-001",
		RoomID:          "room-A101",
		ScheduledAt:     first.Format(time.RFC3339),
		DurationMinutes: 60,
	}
	if _, err := svc.Create(context.Background(), req1, "admin-001"); err != nil {
		t.Fatalf("第一场 Create 应成功: %v", err)
	}

	// 第一场结束于 +60min，第二场开始于 +120min，间隔正好 60min
	req2 := &dto.CreateDefenseRequest{
		ProposalID:      "prop-002",
		RoomID:          "room-A101",
		ScheduledAt:     first.Add(120 * time.Minute).Format(time.RFC3339),
		DurationMinutes: 60,
	}
	if _, err := svc.Create(context.Background(), req2, "admin-001"); err != nil {
		t.Errorf("边界间隔应可排: %v", err)
	}
}

// 已取消场次不占用教室
func TestDefenseService_Create_CancelledDefenseFreesRoom(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedValidatedProposal(m, "prop-002")
	seedRoom(m, "room-A101")

	first := futureTime(7)
	req1 := &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: first.Format(time.RFC3339),
	}
	created, err := svc.Create(context.Background(), req1, "admin-001")
	if err != nil {
		t.Fatalf("第一场 Create 应成功: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), created.ID, &dto.CancelDefenseRequest{Reason: "学生请假"}, "admin-001"); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	// 同一时刻重新排期应成功
	req2 := &dto.CreateDefenseRequest{
		ProposalID:  "prop-002",
		RoomID:      "room-A101",
		ScheduledAt: first.Format(time.RFC3339),
	}
	if _, err := svc.Create(context.Background(), req2, "admin-001"); err != nil {
		t.Errorf("取消后同时段应可排: %v", err)
	}
}

// ── Reschedule 测试 ──

func TestDefenseService_Reschedule_Success(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	created, err := svc.Create(context.Background(), &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: futureTime(7).Format(time.RFC3339),
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	newTime := futureTime(8).Format(time.RFC3339)
	result, err := svc.Reschedule(context.Background(), created.ID, &dto.RescheduleDefenseRequest{
		ScheduledAt: &newTime,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Reschedule 应成功: %v", err)
	}
	if result.ScheduledAt != newTime {
		t.Errorf("期望时间=%s，实际=%s", newTime, result.ScheduledAt)
	}
}

// 改期时排除自身占用，原时段可保持不变
func TestDefenseService_Reschedule_ExcludesSelf(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	created, err := svc.Create(context.Background(), &dto.CreateDefenseRequest{
		ProposalID:      "prop-001",
		RoomID:          "room-A101",
		ScheduledAt:     futureTime(7).Format(time.RFC3339),
		DurationMinutes: 60,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 仅延长时长，时间不变：不应与自身冲突
	duration := 90
	if _, err := svc.Reschedule(context.Background(), created.ID, &dto.RescheduleDefenseRequest{
		DurationMinutes: &duration,
	}, "admin-001"); err != nil {
		t.Errorf("排除自身后改期应成功: %v", err)
	}
}

func TestDefenseService_Reschedule_TerminalState(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	created, err := svc.Create(context.Background(), &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: futureTime(7).Format(time.RFC3339),
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	m.defenses.defenses[created.ID].Status = model.DefenseStatusCompleted

	newTime := futureTime(8).Format(time.RFC3339)
	if _, err := svc.Reschedule(context.Background(), created.ID, &dto.RescheduleDefenseRequest{
		ScheduledAt: &newTime,
	}, "admin-001"); !errors.Is(err, ErrDefenseNotScheduled) {
		t.Errorf("期望 ErrDefenseNotScheduled，实际=%v", err)
	}
}

// ── Cancel 测试 ──

func TestDefenseService_Cancel_RecordsReason(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	created, err := svc.Create(context.Background(), &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: futureTime(7).Format(time.RFC3339),
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	result, err := svc.Cancel(context.Background(), created.ID, &dto.CancelDefenseRequest{Reason: "评审缺席"}, "admin-001")
	if err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}
	if result.Status != model.DefenseStatusCancelled {
		t.Errorf("期望状态=cancelled，实际=%s", result.Status)
	}
	if result.Comments != "评审缺席" {
		t.Errorf("期望取消原因写入 comments，实际=%s", result.Comments)
	}
}

func TestDefenseService_Cancel_AlreadyCancelled(t *testing.T) {
	svc, m := setupTestDefenseService()
	seedValidatedProposal(m, "prop-001")
	seedRoom(m, "room-A101")

	created, err := svc.Create(context.Background(), &dto.CreateDefenseRequest{
		ProposalID:  "prop-001",
		RoomID:      "room-A101",
		ScheduledAt: futureTime(7).Format(time.RFC3339),
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), created.ID, &dto.CancelDefenseRequest{Reason: "a"}, "admin-001"); err != nil {
		t.Fatalf("第一次 Cancel 应成功: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), created.ID, &dto.CancelDefenseRequest{Reason: "b"}, "admin-001"); !errors.Is(err, ErrDefenseNotScheduled) {
		t.Errorf("期望 ErrDefenseNotScheduled，实际=%v", err)
	}
}

// ── IsRoomAvailable 测试 ──

func TestDefenseService_IsRoomAvailable_NotFound(t *testing.T) {
	svc, _ := setupTestDefenseService()

	// 教室不存在时无占用记录，视为可用（存在性校验在 Create 路径完成）
	available, err := svc.IsRoomAvailable(context.Background(), "room-unknown", futureTime(7), 60, "")
	if err != nil {
		t.Fatalf("IsRoomAvailable 应成功: %v", err)
	}
	if !available {
		t.Error("无占用记录应视为可用")
	}
}
