package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
	pkgerrors "pfe-hub/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Name
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && !strings.Contains(u.Name, keyword) && !strings.Contains(u.Email, keyword) {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

// ── Mock ProposalRepository ──

type mockProposalRepo struct {
	proposals map[string]*model.Proposal
	seq       int
}

func newMockProposalRepo() *mockProposalRepo {
	return &mockProposalRepo{proposals: make(map[string]*model.Proposal)}
}

func (m *mockProposalRepo) Create(_ context.Context, proposal *model.Proposal) error {
	if proposal.ProposalID == "" {
		m.seq++
		proposal.ProposalID = fmt.Sprintf("prop-%03d", m.seq)
	}
	if proposal.Version == 0 {
		proposal.Version = 1
	}
	m.proposals[proposal.ProposalID] = proposal
	return nil
}

func (m *mockProposalRepo) GetByID(_ context.Context, id string) (*model.Proposal, error) {
	if p, ok := m.proposals[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProposalRepo) Update(_ context.Context, proposal *model.Proposal) error {
	stored, ok := m.proposals[proposal.ProposalID]
	if !ok || stored.Version != proposal.Version {
		return pkgerrors.ErrOptimisticLock
	}
	proposal.Version++
	m.proposals[proposal.ProposalID] = proposal
	return nil
}

func (m *mockProposalRepo) List(_ context.Context, filter repository.ProposalFilter, offset, limit int) ([]model.Proposal, int64, error) {
	var result []model.Proposal
	for _, p := range m.proposals {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	if room.RoomID == "" {
		room.RoomID = "room-" + room.Name
	}
	if room.Version == 0 {
		room.Version = 1
	}
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) Update(_ context.Context, room *model.Room) error {
	stored, ok := m.rooms[room.RoomID]
	if !ok || stored.Version != room.Version {
		return pkgerrors.ErrOptimisticLock
	}
	room.Version++
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string) error {
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepo) List(_ context.Context, onlyActive bool) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		if onlyActive && !r.IsActive {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock DefenseRepository ──

type mockDefenseRepo struct {
	defenses map[string]*model.Defense
	seq      int
}

func newMockDefenseRepo() *mockDefenseRepo {
	return &mockDefenseRepo{defenses: make(map[string]*model.Defense)}
}

func (m *mockDefenseRepo) Create(_ context.Context, defense *model.Defense) error {
	if defense.DefenseID == "" {
		m.seq++
		defense.DefenseID = fmt.Sprintf("def-%03d", m.seq)
	}
	if defense.Version == 0 {
		defense.Version = 1
	}
	m.defenses[defense.DefenseID] = defense
	return nil
}

func (m *mockDefenseRepo) GetByID(_ context.Context, id string) (*model.Defense, error) {
	if d, ok := m.defenses[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDefenseRepo) Update(_ context.Context, defense *model.Defense) error {
	stored, ok := m.defenses[defense.DefenseID]
	if !ok || stored.Version != defense.Version {
		return pkgerrors.ErrOptimisticLock
	}
	defense.Version++
	m.defenses[defense.DefenseID] = defense
	return nil
}

func (m *mockDefenseRepo) List(_ context.Context, filter repository.DefenseFilter, offset, limit int) ([]model.Defense, int64, error) {
	var result []model.Defense
	for _, d := range m.defenses {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.RoomID != "" && d.RoomID != filter.RoomID {
			continue
		}
		if filter.From != nil && d.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !d.ScheduledAt.Before(*filter.To) {
			continue
		}
		result = append(result, *d)
	}
	return result, int64(len(result)), nil
}

func (m *mockDefenseRepo) ListActiveByRoom(_ context.Context, roomID string) ([]model.Defense, error) {
	var result []model.Defense
	for _, d := range m.defenses {
		if d.RoomID != roomID || d.Status == model.DefenseStatusCancelled {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}

// ── Mock JuryMemberRepository ──

type mockJuryMemberRepo struct {
	members  map[string]*model.JuryMember
	defenses *mockDefenseRepo // 周负载统计需要关联答辩时间
	seq      int
}

func newMockJuryMemberRepo(defenses *mockDefenseRepo) *mockJuryMemberRepo {
	return &mockJuryMemberRepo{
		members:  make(map[string]*model.JuryMember),
		defenses: defenses,
	}
}

func (m *mockJuryMemberRepo) Create(_ context.Context, member *model.JuryMember) error {
	if member.JuryMemberID == "" {
		m.seq++
		member.JuryMemberID = fmt.Sprintf("jm-%03d", m.seq)
	}
	m.members[member.JuryMemberID] = member
	return nil
}

func (m *mockJuryMemberRepo) GetByID(_ context.Context, id string) (*model.JuryMember, error) {
	if jm, ok := m.members[id]; ok {
		return jm, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJuryMemberRepo) GetByDefenseAndUser(_ context.Context, defenseID, userID string) (*model.JuryMember, error) {
	for _, jm := range m.members {
		if jm.DefenseID == defenseID && jm.UserID == userID {
			return jm, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJuryMemberRepo) ListByDefense(_ context.Context, defenseID string) ([]model.JuryMember, error) {
	var result []model.JuryMember
	for _, jm := range m.members {
		if jm.DefenseID == defenseID {
			result = append(result, *jm)
		}
	}
	return result, nil
}

func (m *mockJuryMemberRepo) Delete(_ context.Context, id string) error {
	delete(m.members, id)
	return nil
}

func (m *mockJuryMemberRepo) CountByUserInWindow(_ context.Context, userID string, start, end time.Time, excludeDefenseID string) (int64, error) {
	var count int64
	for _, jm := range m.members {
		if jm.UserID != userID || jm.DefenseID == excludeDefenseID {
			continue
		}
		d, ok := m.defenses.defenses[jm.DefenseID]
		if !ok || d.Status == model.DefenseStatusCancelled {
			continue
		}
		if d.ScheduledAt.Before(start) || !d.ScheduledAt.Before(end) {
			continue
		}
		count++
	}
	return count, nil
}

// ── Mock EvaluationRepository ──

type mockEvaluationRepo struct {
	evaluations []model.Evaluation
	seq         int
}

func newMockEvaluationRepo() *mockEvaluationRepo {
	return &mockEvaluationRepo{}
}

func (m *mockEvaluationRepo) BatchCreate(_ context.Context, evaluations []model.Evaluation) error {
	// 模拟 (jury_member_id, criteria_name) 唯一约束：整批原子
	for _, e := range evaluations {
		for _, stored := range m.evaluations {
			if stored.JuryMemberID == e.JuryMemberID && stored.CriteriaName == e.CriteriaName {
				return fmt.Errorf("duplicate key value violates unique constraint \"uq_evaluations_member_criteria\"")
			}
		}
	}
	for i := range evaluations {
		m.seq++
		evaluations[i].EvaluationID = fmt.Sprintf("eval-%03d", m.seq)
		evaluations[i].CreatedAt = time.Now()
	}
	m.evaluations = append(m.evaluations, evaluations...)
	return nil
}

func (m *mockEvaluationRepo) ListByDefense(_ context.Context, defenseID string) ([]model.Evaluation, error) {
	var result []model.Evaluation
	for _, e := range m.evaluations {
		if e.DefenseID == defenseID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEvaluationRepo) ListByMember(_ context.Context, juryMemberID string) ([]model.Evaluation, error) {
	var result []model.Evaluation
	for _, e := range m.evaluations {
		if e.JuryMemberID == juryMemberID {
			result = append(result, e)
		}
	}
	return result, nil
}

// ── Mock GradingSettingsRepository ──

type mockGradingSettingsRepo struct {
	settings *model.GradingSettings
}

func newMockGradingSettingsRepo() *mockGradingSettingsRepo {
	return &mockGradingSettingsRepo{}
}

func (m *mockGradingSettingsRepo) Get(_ context.Context) (*model.GradingSettings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.settings, nil
}

func (m *mockGradingSettingsRepo) Update(_ context.Context, settings *model.GradingSettings) error {
	settings.Singleton = true
	settings.UpdatedAt = time.Now()
	m.settings = settings
	return nil
}
