package service

import (
	"strings"

	"github.com/groupbuy-next/internal/constants"
)

// orderTransitions 订单状态只能前进，终态不可再变更
var orderTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed:  {constants.OrderStatusDelivering, constants.OrderStatusCancelled},
	constants.OrderStatusDelivering: {constants.OrderStatusPickup, constants.OrderStatusCancelled},
	constants.OrderStatusPickup:     {constants.OrderStatusCompleted, constants.OrderStatusCancelled},
	constants.OrderStatusCompleted:  nil,
	constants.OrderStatusCancelled:  nil,
}

func normalizeOrderStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func isValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

func canTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// deletableOrderStatuses 允许批量删除的订单状态
func deletableOrderStatuses() []string {
	return []string{constants.OrderStatusPending, constants.OrderStatusCancelled}
}
