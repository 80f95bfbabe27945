package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/repository"

	"gorm.io/gorm"
)

// CalculateCommission 订单佣金 = 订单金额 × 佣金比例 / 100，四舍五入到分
func CalculateCommission(total models.Money, rate models.Money) models.Money {
	return models.NewMoneyFromDecimal(total.Decimal.Mul(rate.Decimal).Shift(-2).Round(2))
}

// exactCents 金额最多两位小数时返回 true，不做舍入
func exactCents(amount models.Money) bool {
	return amount.Decimal.Equal(amount.Decimal.Round(2))
}

// settleOrder 订单完成时结算佣金，必须在持有订单行锁的事务内调用
func settleOrder(
	orderRepo repository.OrderRepository,
	leaderRepo repository.LeaderRepository,
	commissionRepo repository.CommissionRepository,
	order *models.Order,
	now time.Time,
) error {
	if order == nil {
		return fmt.Errorf("%w: order is nil", ErrSettlementFailed)
	}
	if order.IsSettled() {
		return nil
	}

	leader, err := leaderRepo.GetByIDForUpdate(order.LeaderID)
	if err != nil {
		return fmt.Errorf("%w: load leader: %v", ErrSettlementFailed, err)
	}
	if leader == nil {
		return ErrLeaderNotFound
	}

	commission := CalculateCommission(order.TotalAmount, leader.CommissionRate)

	marked, err := orderRepo.MarkSettled(order.ID, commission, now)
	if err != nil {
		return fmt.Errorf("%w: mark order: %v", ErrSettlementFailed, err)
	}
	if !marked {
		return fmt.Errorf("%w: order %d settle guard not matched", ErrSettlementFailed, order.ID)
	}

	if err := leaderRepo.ApplySettlement(leader.ID, commission); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaderNotFound
		}
		return fmt.Errorf("%w: apply ledger: %v", ErrSettlementFailed, err)
	}

	orderID := order.ID
	settledAt := now
	record := &models.Commission{
		LeaderID:  leader.ID,
		OrderID:   &orderID,
		Amount:    commission,
		Type:      constants.CommissionTypeOrder,
		Status:    constants.CommissionStatusSettled,
		Remark:    fmt.Sprintf("订单 %s 完成结算", order.OrderNo),
		SettledAt: &settledAt,
		CreatedAt: now,
	}
	if err := commissionRepo.Create(record); err != nil {
		return fmt.Errorf("%w: insert commission: %v", ErrSettlementFailed, err)
	}

	order.CommissionAmount = commission
	order.SettledAt = &settledAt
	return nil
}
