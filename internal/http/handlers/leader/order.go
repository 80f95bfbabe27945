package leader

import (
	"strings"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/repository"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 订单状态流转请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrders 当前团长的订单
func (h *Handler) ListOrders(c *gin.Context) {
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
	orders, total, err := h.OrderService.List(principal, repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      strings.TrimSpace(c.Query("status")),
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Get(principal, id)
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// GetOrderStats 当前团长订单统计
func (h *Handler) GetOrderStats(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	from, to, ok := handlershared.ParseDateRangeQuery(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	stats, err := h.OrderService.Stats(principal, service.OrderStatsInput{
		LeaderID:    principal.LeaderID,
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// UpdateOrderStatus 团长推进自己的订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.TransitionStatus(principal, id, req.Status)
	if err != nil {
		respondServiceError(c, err, "error.order_update_failed")
		return
	}
	response.Success(c, order)
}
