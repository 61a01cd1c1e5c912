package model

import "time"

// 答辩状态
const (
	DefenseStatusScheduled = "scheduled"
	DefenseStatusCompleted = "completed"
	DefenseStatusCancelled = "cancelled"
)

// 评审团角色
const (
	JuryRolePresident  = "president"
	JuryRoleRapporteur = "rapporteur"
	JuryRoleExaminer   = "examiner"
	JuryRoleSupervisor = "supervisor"
)

// Defense 答辩场次表 — 对应 defenses
type Defense struct {
	DefenseID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"defense_id"`
	ProposalID      string    `gorm:"type:uuid;not null"                             json:"proposal_id"`
	RoomID          string    `gorm:"type:uuid;not null"                             json:"room_id"`
	ScheduledAt     time.Time `gorm:"not null"                                       json:"scheduled_at"`
	DurationMinutes int       `gorm:"not null;default:60"                            json:"duration_minutes"`
	Status          string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"` // scheduled | completed | cancelled
	ReportScore     *float64  `gorm:"type:numeric(5,2)"                              json:"report_score,omitempty"`
	PresentScore    *float64  `gorm:"type:numeric(5,2);column:presentation_score"    json:"presentation_score,omitempty"`
	CompanyScore    *float64  `gorm:"type:numeric(5,2)"                              json:"company_score,omitempty"`
	FinalScore      *float64  `gorm:"type:numeric(5,2)"                              json:"final_score,omitempty"`
	Mention         string    `gorm:"type:varchar(20)"                               json:"mention,omitempty"`
	Comments        string    `gorm:"type:text"                                      json:"comments,omitempty"`
	VersionedModel

	// 关联
	Proposal    *Proposal    `gorm:"foreignKey:ProposalID;references:ProposalID" json:"proposal,omitempty"`
	Room        *Room        `gorm:"foreignKey:RoomID;references:RoomID"         json:"room,omitempty"`
	JuryMembers []JuryMember `gorm:"foreignKey:DefenseID;references:DefenseID"   json:"jury_members,omitempty"`
}

func (Defense) TableName() string { return "defenses" }

// EndsAt 答辩结束时刻（开始 + 时长）
func (d *Defense) EndsAt() time.Time {
	return d.ScheduledAt.Add(time.Duration(d.DurationMinutes) * time.Minute)
}

// JuryMember 评审团成员表 — 对应 jury_members
// 同一场答辩内 (defense_id, user_id) 在未删除记录内唯一，由数据库约束兜底。
// 移除成员走软删除：该成员已有的评分记录留存，外键不受影响
type JuryMember struct {
	JuryMemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"jury_member_id"`
	DefenseID    string `gorm:"type:uuid;not null"                             json:"defense_id"`
	UserID       string `gorm:"type:uuid;not null"                             json:"user_id"`
	Role         string `gorm:"type:varchar(20);not null"                      json:"role"` // president | rapporteur | examiner | supervisor
	SoftDeleteModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (JuryMember) TableName() string { return "jury_members" }

// Evaluation 单项评分记录 — 对应 evaluations（写入后不可修改）
type Evaluation struct {
	EvaluationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"evaluation_id"`
	DefenseID    string    `gorm:"type:uuid;not null"                             json:"defense_id"`
	JuryMemberID string    `gorm:"type:uuid;not null"                             json:"jury_member_id"`
	CriteriaName string    `gorm:"type:varchar(50);not null"                      json:"criteria_name"`
	Score        float64   `gorm:"type:numeric(5,2);not null"                     json:"score"`
	MaxScore     float64   `gorm:"type:numeric(5,2);not null"                     json:"max_score"`
	Comments     string    `gorm:"type:text"                                      json:"comments,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy    *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
}

func (Evaluation) TableName() string { return "evaluations" }

// [自证通过] internal/model/defense.go
