package admin

import (
	"encoding/json"
	"strings"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/repository"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CommissionAdjustmentRequest 手动调整佣金请求，金额可为负
type CommissionAdjustmentRequest struct {
	LeaderID uint        `json:"leader_id" binding:"required"`
	Amount   json.Number `json:"amount" binding:"required,decimal2"`
	Remark   string      `json:"remark"`
	Deferred bool        `json:"deferred"`
}

// ReconcileRequest 对账请求，leader_id 为 0 表示全部团长
type ReconcileRequest struct {
	LeaderID uint `json:"leader_id"`
}

// ListCommissions 佣金流水列表
func (h *Handler) ListCommissions(c *gin.Context) {
	principal, ok := getPrincipal(c)
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
		LeaderID:    handlershared.ParseQueryUint(c, "leader_id"),
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

// GetCommission 佣金流水详情
func (h *Handler) GetCommission(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.CommissionService.Get(principal, id)
	if err != nil {
		respondServiceError(c, err, "error.commission_fetch_failed")
		return
	}
	response.Success(c, item)
}

// GetCommissionStats 佣金统计
func (h *Handler) GetCommissionStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.CommissionService.Stats(principal, handlershared.ParseQueryUint(c, "leader_id"))
	if err != nil {
		respondServiceError(c, err, "error.commission_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// CreateCommissionAdjustment 手动调整佣金
func (h *Handler) CreateCommissionAdjustment(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CommissionAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, ok := handlershared.ParseMoneyNumber(req.Amount)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}
	item, err := h.CommissionService.CreateAdjustment(principal, service.CommissionAdjustmentInput{
		LeaderID: req.LeaderID,
		Amount:   amount,
		Remark:   req.Remark,
		Deferred: req.Deferred,
	})
	if err != nil {
		respondServiceError(c, err, "error.commission_save_failed")
		return
	}
	response.Success(c, item)
}

// BatchSettleCommissions 批量结算待结算佣金
func (h *Handler) BatchSettleCommissions(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CommissionService.BatchSettle(principal, req.IDs)
	if err != nil {
		respondServiceError(c, err, "error.settlement_failed")
		return
	}
	response.Success(c, result)
}

// ReconcileCommissions 触发佣金对账，队列可用时异步执行
func (h *Handler) ReconcileCommissions(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	queued, report, err := h.ReconcileService.Request(principal, req.LeaderID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"queued": queued,
		"report": report,
	})
}
