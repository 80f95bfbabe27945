package admin

import (
	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

func getPrincipal(c *gin.Context) (service.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

func parseID(c *gin.Context) (uint, bool) {
	id, ok := handlershared.ParsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}

// IDsRequest 批量操作请求
type IDsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1,dive,gt=0"`
}
