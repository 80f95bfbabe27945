package shared

import (
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 中间件写入上下文的键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyRole     = "role"
	ContextKeyLeaderID = "leader_id"
	ContextKeyUsername = "username"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// GetPrincipal 读取 JWT 中间件解析出的操作人，缺失时直接返回 401。
func GetPrincipal(c *gin.Context) (service.Principal, bool) {
	userID, ok := GetContextUintWithKeys(c, ContextKeyUserID, "error.user_id_invalid", "error.user_id_type_invalid")
	if !ok {
		return service.Principal{}, false
	}
	principal := service.Principal{
		UserID: userID,
		Role:   c.GetString(ContextKeyRole),
	}
	if value, exists := c.Get(ContextKeyLeaderID); exists {
		if leaderID, ok := value.(uint); ok {
			principal.LeaderID = leaderID
		}
	}
	return principal, true
}

// LookupPrincipal 只读取上下文中的操作人，不写响应，供中间件使用。
func LookupPrincipal(c *gin.Context) (service.Principal, bool) {
	if c == nil {
		return service.Principal{}, false
	}
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return service.Principal{}, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return service.Principal{}, false
	}
	principal := service.Principal{UserID: userID, Role: c.GetString(ContextKeyRole)}
	if leaderID, ok := c.Get(ContextKeyLeaderID); ok {
		principal.LeaderID, _ = leaderID.(uint)
	}
	return principal, true
}

// SetPrincipal 写入操作人信息
func SetPrincipal(c *gin.Context, principal service.Principal) {
	c.Set(ContextKeyUserID, principal.UserID)
	c.Set(ContextKeyRole, principal.Role)
	c.Set(ContextKeyLeaderID, principal.LeaderID)
}
