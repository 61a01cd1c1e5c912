package model

// 课题类型
const (
	ProposalTypeAcademic = "academic"
	ProposalTypeCompany  = "company"
	ProposalTypeResearch = "research"
)

// 课题状态
const (
	ProposalStatusDraft     = "draft"
	ProposalStatusSubmitted = "submitted"
	ProposalStatusToModify  = "to_modify"
	ProposalStatusValidated = "validated"
	ProposalStatusRejected  = "rejected"
)

// Proposal 课题表（PFE 毕业设计课题）— 对应 proposals
type Proposal struct {
	ProposalID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"proposal_id"`
	Title                string  `gorm:"type:varchar(255);not null"                     json:"title"`
	Description          string  `gorm:"type:text"                                      json:"description,omitempty"`
	Type                 string  `gorm:"type:varchar(20);not null"                      json:"type"`   // academic | company | research
	Status               string  `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | submitted | to_modify | validated | rejected
	StudentID            string  `gorm:"type:uuid;not null"                             json:"student_id"`
	AcademicSupervisorID *string `gorm:"type:uuid"                                      json:"academic_supervisor_id,omitempty"`
	CompanySupervisorID  *string `gorm:"type:uuid"                                      json:"company_supervisor_id,omitempty"`
	CompanyName          string  `gorm:"type:varchar(255)"                              json:"company_name,omitempty"`
	ReviewComment        string  `gorm:"type:text"                                      json:"review_comment,omitempty"`
	VersionedModel

	// 关联
	Student            *User `gorm:"foreignKey:StudentID;references:UserID"            json:"student,omitempty"`
	AcademicSupervisor *User `gorm:"foreignKey:AcademicSupervisorID;references:UserID" json:"academic_supervisor,omitempty"`
	CompanySupervisor  *User `gorm:"foreignKey:CompanySupervisorID;references:UserID"  json:"company_supervisor,omitempty"`
}

func (Proposal) TableName() string { return "proposals" }

// [自证通过] internal/model/proposal.go
