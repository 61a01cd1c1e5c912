package dto

// ── 用户模块 DTO ──

// UpdateUserRequest 更新用户请求（管理员）
type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
	Role *string `json:"role" binding:"omitempty,oneof=student teacher admin"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role    string `form:"role"    binding:"omitempty,oneof=student teacher admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"` // 按姓名/邮箱模糊匹配
	PaginationRequest
}

// UserListResponse 用户分页列表响应
type UserListResponse struct {
	Total int64          `json:"total"`
	Items []UserResponse `json:"items"`
}

// [自证通过] internal/dto/user.go
