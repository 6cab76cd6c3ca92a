package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shop_chat_server/pkg/errorx"
)

// HTTPHistory 通过 REST 接口拉取消息历史
// Token 非空时走客服接口，否则以 SessionId 走顾客接口
type HTTPHistory struct {
	BaseURL   string // 如 http://localhost:8000
	SessionId string
	Token     string
	Client    *http.Client
}

type envelope struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Fetch 实现 HistoryFunc
func (h HTTPHistory) Fetch(ctx context.Context, roomId string) ([]Message, error) {
	base := strings.TrimRight(h.BaseURL, "/")
	var endpoint string
	if h.Token != "" {
		endpoint = fmt.Sprintf("%s/api/admin/chat/rooms/%s/messages", base, url.PathEscape(roomId))
	} else {
		endpoint = fmt.Sprintf("%s/api/chat/rooms/%s/messages?sessionId=%s", base, url.PathEscape(roomId), url.QueryEscape(h.SessionId))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode history response (status %d): %w", resp.StatusCode, err)
	}
	if env.Code != errorx.CodeSuccess {
		return nil, fmt.Errorf("fetch history: code %d: %v", env.Code, env.Msg)
	}
	var messages []Message
	if err := json.Unmarshal(env.Data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
