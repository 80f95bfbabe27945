package leader

import (
	"encoding/json"
	"strings"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/repository"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateWithdrawalRequest 提现申请
type CreateWithdrawalRequest struct {
	Amount        json.Number `json:"amount" binding:"required,money_positive"`
	AccountName   string      `json:"account_name" binding:"required"`
	AccountNumber string      `json:"account_number" binding:"required"`
}

// ListWithdrawals 当前团长的提现记录
func (h *Handler) ListWithdrawals(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	items, total, err := h.WithdrawalService.List(principal, repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
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
	principal, ok := getLeaderPrincipal(c)
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

// GetWithdrawalStats 当前团长提现汇总
func (h *Handler) GetWithdrawalStats(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.WithdrawalService.Stats(principal, principal.LeaderID)
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// CreateWithdrawal 发起提现，申请时即冻结余额
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, ok := handlershared.ParseMoneyNumber(req.Amount)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}
	item, err := h.WithdrawalService.Create(principal, service.WithdrawalCreateInput{
		Amount:        amount,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_save_failed")
		return
	}
	response.Success(c, item)
}

// CancelWithdrawal 取消待审核的提现
func (h *Handler) CancelWithdrawal(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.WithdrawalService.Cancel(principal, id)
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_save_failed")
		return
	}
	response.Success(c, item)
}
