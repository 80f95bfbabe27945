package leader

import (
	"strings"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCommissions 当前团长的佣金流水
func (h *Handler) ListCommissions(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	from, to, ok := handlershared.ParseDateRangeQuery(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	items, total, err := h.CommissionService.List(principal, repository.CommissionListFilter{
		Page:        page,
		PageSize:    pageSize,
		Type:        strings.TrimSpace(c.Query("type")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		respondServiceError(c, err, "error.commission_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetCommissionStats 当前团长佣金统计
func (h *Handler) GetCommissionStats(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.CommissionService.Stats(principal, principal.LeaderID)
	if err != nil {
		respondServiceError(c, err, "error.commission_fetch_failed")
		return
	}
	response.Success(c, stats)
}
