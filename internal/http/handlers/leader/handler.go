package leader

import (
	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/provider"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 团长端接口处理器入口
// 说明：所有查询都收敛到当前登录团长，路径里的 leader_id 不生效。
type Handler struct {
	*provider.Container
}

// New 创建团长端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondServiceError(c, err, fallbackKey)
}

// getLeaderPrincipal 非团长身份直接 403
func getLeaderPrincipal(c *gin.Context) (service.Principal, bool) {
	principal, ok := handlershared.GetPrincipal(c)
	if !ok {
		return service.Principal{}, false
	}
	if !principal.IsLeader() {
		respondError(c, response.CodeForbidden, "error.forbidden", nil)
		return service.Principal{}, false
	}
	return principal, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, ok := handlershared.ParsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}
