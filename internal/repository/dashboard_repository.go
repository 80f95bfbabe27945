package repository

import (
	"fmt"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository 团长维度的聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetLeaderOverview(leaderID uint, startAt, endAt time.Time) (LeaderOverviewRow, error)
}

// LeaderOverviewRow 团长总览原始统计结果
type LeaderOverviewRow struct {
	OrdersTotal        int64
	OrdersCompleted    int64
	OrdersCancelled    int64
	OrdersInProgress   int64
	OrdersInPeriod     int64
	CompletedAmount    models.Money
	CommissionSettled  models.Money
	CommissionPending  models.Money
	WithdrawPending    models.Money
	WithdrawApproved   models.Money
	PendingWithdrawals int64
}

// GormDashboardRepository GORM 实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建聚合查询仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetLeaderOverview 获取团长总览；leaderID 为 0 时统计全部团长
func (r *GormDashboardRepository) GetLeaderOverview(leaderID uint, startAt, endAt time.Time) (LeaderOverviewRow, error) {
	var row LeaderOverviewRow

	orderQuery := func() *gorm.DB {
		query := r.db.Model(&models.Order{})
		if leaderID != 0 {
			query = query.Where("leader_id = ?", leaderID)
		}
		return query
	}

	if err := orderQuery().Count(&row.OrdersTotal).Error; err != nil {
		return row, err
	}
	if err := orderQuery().Where("status = ?", constants.OrderStatusCompleted).Count(&row.OrdersCompleted).Error; err != nil {
		return row, err
	}
	if err := orderQuery().Where("status = ?", constants.OrderStatusCancelled).Count(&row.OrdersCancelled).Error; err != nil {
		return row, err
	}
	if err := orderQuery().Where("status IN ?", inProgressOrderStatuses()).Count(&row.OrdersInProgress).Error; err != nil {
		return row, err
	}
	if err := orderQuery().Where("created_at >= ? AND created_at < ?", startAt, endAt).Count(&row.OrdersInPeriod).Error; err != nil {
		return row, err
	}
	var err error
	if row.CompletedAmount, err = scanMoneySum(orderQuery().Where("status = ?", constants.OrderStatusCompleted), "total_amount"); err != nil {
		return row, err
	}

	commissionQuery := func(status string) *gorm.DB {
		query := r.db.Model(&models.Commission{}).Where("status = ?", status)
		if leaderID != 0 {
			query = query.Where("leader_id = ?", leaderID)
		}
		return query
	}
	if row.CommissionSettled, err = scanMoneySum(commissionQuery(constants.CommissionStatusSettled), "amount"); err != nil {
		return row, err
	}
	if row.CommissionPending, err = scanMoneySum(commissionQuery(constants.CommissionStatusPending), "amount"); err != nil {
		return row, err
	}

	withdrawalQuery := func(status string) *gorm.DB {
		query := r.db.Model(&models.Withdrawal{}).Where("status = ?", status)
		if leaderID != 0 {
			query = query.Where("leader_id = ?", leaderID)
		}
		return query
	}
	if err := withdrawalQuery(constants.WithdrawalStatusPending).Count(&row.PendingWithdrawals).Error; err != nil {
		return row, err
	}
	if row.WithdrawPending, err = scanMoneySum(withdrawalQuery(constants.WithdrawalStatusPending), "amount"); err != nil {
		return row, err
	}
	if row.WithdrawApproved, err = scanMoneySum(withdrawalQuery(constants.WithdrawalStatusApproved), "amount"); err != nil {
		return row, err
	}
	return row, nil
}

func inProgressOrderStatuses() []string {
	return []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusDelivering,
		constants.OrderStatusPickup,
	}
}

// scanMoneySum 汇总金额列，空集返回 0
func scanMoneySum(query *gorm.DB, column string) (models.Money, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := query.Select(fmt.Sprintf("COALESCE(SUM(%s), 0) AS total", column)).Scan(&row).Error; err != nil {
		return models.ZeroMoney(), err
	}
	return models.NewMoneyFromDecimal(row.Total), nil
}
