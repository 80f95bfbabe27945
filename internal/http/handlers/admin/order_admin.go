package admin

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

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
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

	orders, total, err := h.OrderService.List(principal, repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		LeaderID:    handlershared.ParseQueryUint(c, "leader_id"),
		CommunityID: handlershared.ParseQueryUint(c, "community_id"),
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

// GetOrder 订单详情（含商品明细）
func (h *Handler) GetOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
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

// GetOrderStats 订单统计
func (h *Handler) GetOrderStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	from, to, ok := handlershared.ParseDateRangeQuery(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	stats, err := h.OrderService.Stats(principal, service.OrderStatsInput{
		LeaderID:    handlershared.ParseQueryUint(c, "leader_id"),
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// GetDeliveryList 配送清单
func (h *Handler) GetDeliveryList(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	list, err := h.OrderService.DeliveryList(principal, service.DeliveryListInput{
		Date:     strings.TrimSpace(c.Query("date")),
		GroupBy:  strings.TrimSpace(c.Query("group_by")),
		LeaderID: handlershared.ParseQueryUint(c, "leader_id"),
	})
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, list)
}

// UpdateOrderStatus 订单状态流转，完成时触发佣金结算
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	principal, ok := getPrincipal(c)
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

// BatchDeleteOrders 批量删除待确认/已取消订单
func (h *Handler) BatchDeleteOrders(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	deleted, err := h.OrderService.BatchDelete(principal, req.IDs)
	if err != nil {
		respondServiceError(c, err, "error.order_delete_failed")
		return
	}
	handlershared.RequestLog(c).Infow("admin_orders_batch_deleted",
		"operator_id", principal.UserID,
		"requested", len(req.IDs),
		"deleted", deleted,
	)
	response.Success(c, gin.H{"deleted": deleted})
}
