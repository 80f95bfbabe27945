package admin

import (
	"strings"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ReviewWithdrawalRequest 审核提现请求
type ReviewWithdrawalRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Reason   string `json:"reason"`
}

// ListWithdrawals 提现申请列表
func (h *Handler) ListWithdrawals(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	items, total, err := h.WithdrawalService.List(principal, repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		LeaderID: handlershared.ParseQueryUint(c, "leader_id"),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetWithdrawal 提现详情
func (h *Handler) GetWithdrawal(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.WithdrawalService.Get(principal, id)
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.Success(c, item)
}

// GetWithdrawalStats 提现汇总
func (h *Handler) GetWithdrawalStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.WithdrawalService.Stats(principal, handlershared.ParseQueryUint(c, "leader_id"))
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// ReviewWithdrawal 审核提现，驳回需填写原因
func (h *Handler) ReviewWithdrawal(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ReviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.WithdrawalService.Review(principal, id, req.Decision, req.Reason)
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_save_failed")
		return
	}
	response.Success(c, item)
}
