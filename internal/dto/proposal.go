package dto

// ── 课题模块 DTO ──

// CreateProposalRequest 创建课题请求
type CreateProposalRequest struct {
	Title                string  `json:"title"                  binding:"required,min=2,max=255"`
	Description          string  `json:"description"            binding:"omitempty,max=5000"`
	Type                 string  `json:"type"                   binding:"required,oneof=academic company research"`
	StudentID            string  `json:"student_id"             binding:"required,uuid"`
	AcademicSupervisorID *string `json:"academic_supervisor_id" binding:"omitempty,uuid"`
	CompanySupervisorID  *string `json:"company_supervisor_id"  binding:"omitempty,uuid"`
	CompanyName          string  `json:"company_name"           binding:"omitempty,max=255"`
}

// UpdateProposalRequest 更新课题请求（仅 draft / to_modify 状态可改）
type UpdateProposalRequest struct {
	Title                *string `json:"title"                  binding:"omitempty,min=2,max=255"`
	Description          *string `json:"description"            binding:"omitempty,max=5000"`
	AcademicSupervisorID *string `json:"academic_supervisor_id" binding:"omitempty,uuid"`
	CompanySupervisorID  *string `json:"company_supervisor_id"  binding:"omitempty,uuid"`
	CompanyName          *string `json:"company_name"           binding:"omitempty,max=255"`
}

// ReviewProposalRequest 审核课题请求（validate / reject / to_modify）
type ReviewProposalRequest struct {
	Decision string `json:"decision" binding:"required,oneof=validated rejected to_modify"`
	Comment  string `json:"comment"  binding:"omitempty,max=2000"`
}

// ProposalListRequest 课题列表查询参数
type ProposalListRequest struct {
	Status    string `form:"status"     binding:"omitempty,oneof=draft submitted to_modify validated rejected"`
	Type      string `form:"type"       binding:"omitempty,oneof=academic company research"`
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// ── 响应 ──

// ProposalResponse 课题响应
type ProposalResponse struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Type               string     `json:"type"`
	Status             string     `json:"status"`
	Student            *UserBrief `json:"student,omitempty"`
	AcademicSupervisor *UserBrief `json:"academic_supervisor,omitempty"`
	CompanySupervisor  *UserBrief `json:"company_supervisor,omitempty"`
	CompanyName        string     `json:"company_name,omitempty"`
	ReviewComment      string     `json:"review_comment,omitempty"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`
}

// ProposalListResponse 课题分页列表响应
type ProposalListResponse struct {
	Total int64              `json:"total"`
	Items []ProposalResponse `json:"items"`
}

// [自证通过] internal/dto/proposal.go
