package room_status_enum

// 房间状态，转换不做校验，客服可以手动设置任意状态
const (
	Waiting  = "waiting"  // 已创建，尚无客服回复
	Active   = "active"   // 客服处理中
	Resolved = "resolved" // 已解决，仍可继续对话
	Closed   = "closed"   // 已归档
)

// Valid 判断是否为合法的房间状态
func Valid(status string) bool {
	switch status {
	case Waiting, Active, Resolved, Closed:
		return true
	}
	return false
}
