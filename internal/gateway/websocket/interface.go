package websocket

import (
	"context"

	"shop_chat_server/internal/service/chat"
)

// Hub gateway 依赖的聊天中心
// 用于解耦 websocket 包与 chat 包的具体实现，测试时可替换
type Hub interface {
	Connect(sink chat.Sink, principal *chat.Principal) (chat.Token, bool)
	Disconnect(token chat.Token)
	Handle(ctx context.Context, token chat.Token, data []byte)
}
