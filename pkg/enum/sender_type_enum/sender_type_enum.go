package sender_type_enum

// 消息发送方类型，由连接的认证方式决定，不信任客户端上报
const (
	Customer = "customer"
	Admin    = "admin"
)
