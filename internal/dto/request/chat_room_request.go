package request

// CreateRoomRequest 顾客发起咨询，创建聊天房间
// SessionId 为空时由服务端生成
type CreateRoomRequest struct {
	CustomerName  string `json:"customerName" binding:"required,max=64"`
	CustomerEmail string `json:"customerEmail" binding:"omitempty,email,max=128"`
	CustomerPhone string `json:"customerPhone" binding:"omitempty,max=32"`
	Subject       string `json:"subject" binding:"required,max=255"`
	ProductId     string `json:"productId" binding:"omitempty,max=64"`
	SessionId     string `json:"sessionId" binding:"omitempty,max=64"`
}

// CustomerRoomQuery 顾客侧接口用 sessionId 证明对房间的归属
type CustomerRoomQuery struct {
	SessionId string `form:"sessionId" binding:"required,max=64"`
}

// ListRoomsQuery 客服房间列表过滤条件
type ListRoomsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=waiting active resolved closed"`
}

// UpdateRoomStatusRequest 设置房间状态，任意状态之间都允许切换
type UpdateRoomStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=waiting active resolved closed"`
}

// UpdateRoomPriorityRequest 设置房间优先级
type UpdateRoomPriorityRequest struct {
	Priority string `json:"priority" binding:"required,oneof=low normal high urgent"`
}

// AssignStaffRequest 分配负责客服，StaffId 为空时分配给自己
type AssignStaffRequest struct {
	StaffId string `json:"staffId" binding:"omitempty,max=24"`
}

// InternalNoteRequest 客服内部备注
type InternalNoteRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}
