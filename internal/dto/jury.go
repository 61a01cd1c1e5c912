package dto

// ── 评审团模块 DTO ──

// AddJuryMemberRequest 添加评审团成员请求
type AddJuryMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"required,oneof=president rapporteur examiner supervisor"`
}

// ── 响应 ──

// JuryMemberResponse 评审团成员响应
type JuryMemberResponse struct {
	ID        string     `json:"id"`
	DefenseID string     `json:"defense_id"`
	Role      string     `json:"role"`
	User      *UserBrief `json:"user,omitempty"`
	CreatedAt string     `json:"created_at"`
}

// JuryCompositionResponse 评审团组成校验结果（附当前评审团名单）
type JuryCompositionResponse struct {
	Valid   bool                 `json:"valid"`
	Missing []string             `json:"missing,omitempty"` // 缺失的角色/条件说明
	Jury    []JuryMemberResponse `json:"jury"`
}

// [自证通过] internal/dto/jury.go
