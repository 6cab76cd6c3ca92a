package random

import (
	"strings"

	"github.com/google/uuid"
)

// NewSessionId 生成匿名顾客会话 ID
// 格式: cs_ + 32 位十六进制
func NewSessionId() string {
	return "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
