package repository

import (
	"time"

	"github.com/groupbuy-next/internal/models"
)

// LeaderListFilter 查询团长列表的过滤条件
type LeaderListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CommunityID uint
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	LeaderID    uint
	CommunityID uint
	Status      string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderStatsFilter 订单统计过滤条件
type OrderStatsFilter struct {
	LeaderID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DeliveryListFilter 配送清单过滤条件，按订单创建日期取一天
type DeliveryListFilter struct {
	DayStart time.Time
	DayEnd   time.Time
	Statuses []string
	LeaderID uint
}

// CommissionListFilter 查询佣金流水的过滤条件
type CommissionListFilter struct {
	Page        int
	PageSize    int
	LeaderID    uint
	Type        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter 查询提现申请的过滤条件
type WithdrawalListFilter struct {
	Page     int
	PageSize int
	LeaderID uint
	Status   string
}

// OrderStatusStatRow 按状态聚合的订单统计
type OrderStatusStatRow struct {
	Status string
	Count  int64
	Amount models.Money
}

// OrderTrendRow 按天聚合的订单趋势
type OrderTrendRow struct {
	Day    string
	Count  int64
	Amount models.Money
}

// DeliveryItemRow 配送清单明细，按分组键与商品聚合
type DeliveryItemRow struct {
	GroupID     uint
	GroupName   string
	ProductID   uint
	ProductName string
	Unit        string
	Quantity    int64
	OrderCount  int64
}

// CommissionStatRow 按类型与状态聚合的佣金统计
type CommissionStatRow struct {
	Type   string
	Status string
	Count  int64
	Amount models.Money
}

// WithdrawalStatRow 按状态聚合的提现统计
type WithdrawalStatRow struct {
	Status string
	Count  int64
	Amount models.Money
}

// CommissionLedgerRow 团长维度的订单佣金汇总，用于对账
type CommissionLedgerRow struct {
	LeaderID        uint
	OrderCount      int64
	SettledOrderSum models.Money
}
