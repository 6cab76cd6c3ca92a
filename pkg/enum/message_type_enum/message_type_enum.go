package message_type_enum

// 消息类型，实时协议只产生 Text，其余类型保留给后续附件消息
const (
	Text   = "text"
	System = "system"
	Image  = "image"
	File   = "file"
)
