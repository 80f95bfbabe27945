package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusDelivering = "delivering"
	OrderStatusPickup     = "pickup"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// 佣金类型常量
const (
	CommissionTypeOrder      = "order"
	CommissionTypeAdjustment = "adjustment"
)

// 佣金状态常量
const (
	CommissionStatusPending = "pending"
	CommissionStatusSettled = "settled"
)

// 提现状态常量
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// 用户角色常量
const (
	RoleAdmin  = "admin"
	RoleLeader = "leader"
)

// 用户与团长状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"

	LeaderStatusActive   = "active"
	LeaderStatusDisabled = "disabled"
)

// 社区与商品状态常量
const (
	CommunityStatusActive = "active"
	ProductStatusActive   = "active"
)

// 配送清单汇总方式
const (
	DeliveryGroupByLeader    = "leader"
	DeliveryGroupByCommunity = "community"
)

// 系统备注
const (
	AdjustmentDefaultRemark     = "管理员手动调整"
	WithdrawalCancelledByLeader = "团长取消申请"
)

// 默认佣金比例（百分比）
const DefaultCommissionRate = "12.00"

// 队列与任务常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskOrderStatusChanged  = "order:status_changed"
	TaskWithdrawalReviewed  = "withdrawal:reviewed"
	TaskCommissionReconcile = "commission:reconcile"
)
