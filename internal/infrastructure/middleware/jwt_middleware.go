package middleware

import (
	"errors"
	"net/http"
	"strings"

	"shop_chat_server/internal/service/chat"
	"shop_chat_server/pkg/errorx"
	"shop_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

const (
	// ContextStaffID 上下文中客服 UUID 的键
	ContextStaffID = "staff_id"
	// ContextPrincipal 上下文中 *chat.Principal 的键
	ContextPrincipal = "staff_principal"
)

// PrincipalLookup 由客服 UUID 查询聊天身份，账号不存在或被禁用时返回错误
type PrincipalLookup func(staffId string) (*chat.Principal, error)

var errMalformedHeader = errors.New("malformed authorization header")

// bearerToken 依次从 Authorization 头和 allowQuery 时的 token 参数中取 Token
// 浏览器的 WebSocket API 无法设置请求头，只能通过查询参数传递
func bearerToken(c *gin.Context, allowQuery bool) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errMalformedHeader
		}
		return parts[1], nil
	}
	if allowQuery {
		return c.Query("token"), nil
	}
	return "", nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}

// authenticate 校验 Access Token 并写入上下文，失败时已中止请求
func authenticate(c *gin.Context, token string, lookup PrincipalLookup) bool {
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrWrongTokenType) {
			abortUnauthorized(c, "access token required")
		} else {
			abortUnauthorized(c, "token expired or invalid, please log in again")
		}
		return false
	}
	principal, err := lookup(claims.UserID)
	if err != nil {
		var codeErr *errorx.CodeError
		if errors.As(err, &codeErr) && codeErr.Code == errorx.CodeForbidden {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": codeErr.Code, "msg": codeErr.Msg})
			return false
		}
		abortUnauthorized(c, "staff account is not available")
		return false
	}
	c.Set(ContextStaffID, principal.StaffId)
	c.Set(ContextPrincipal, principal)
	return true
}

// JWTAuth 客服接口认证中间件，必须携带有效的 Access Token
func JWTAuth(lookup PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c, false)
		if err != nil {
			abortUnauthorized(c, "use a Bearer token")
			return
		}
		if token == "" {
			abortUnauthorized(c, "please log in first")
			return
		}
		if authenticate(c, token, lookup) {
			c.Next()
		}
	}
}

// OptionalJWT WebSocket 升级使用：没有 Token 视为匿名顾客，有 Token 则必须有效
func OptionalJWT(lookup PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c, true)
		if err != nil {
			abortUnauthorized(c, "use a Bearer token")
			return
		}
		if token == "" {
			c.Next()
			return
		}
		if authenticate(c, token, lookup) {
			c.Next()
		}
	}
}

// Principal 取出当前请求的客服身份，匿名请求返回 nil
func Principal(c *gin.Context) *chat.Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*chat.Principal)
	return p
}
