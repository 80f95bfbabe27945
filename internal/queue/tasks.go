package queue

import (
	"encoding/json"

	"github.com/groupbuy-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusChanged 订单状态变更通知任务
	TaskOrderStatusChanged = constants.TaskOrderStatusChanged
	// TaskWithdrawalReviewed 提现审核结果通知任务
	TaskWithdrawalReviewed = constants.TaskWithdrawalReviewed
	// TaskCommissionReconcile 佣金对账任务
	TaskCommissionReconcile = constants.TaskCommissionReconcile
)

// OrderStatusChangedPayload 订单状态变更载荷
type OrderStatusChangedPayload struct {
	OrderID          uint   `json:"order_id"`
	LeaderID         uint   `json:"leader_id"`
	FromStatus       string `json:"from_status"`
	ToStatus         string `json:"to_status"`
	CommissionAmount string `json:"commission_amount,omitempty"`
	OperatorID       uint   `json:"operator_id"`
}

// WithdrawalReviewedPayload 提现审核结果载荷
type WithdrawalReviewedPayload struct {
	WithdrawalID uint   `json:"withdrawal_id"`
	LeaderID     uint   `json:"leader_id"`
	Status       string `json:"status"`
	Amount       string `json:"amount"`
	Reason       string `json:"reason,omitempty"`
}

// CommissionReconcilePayload 对账任务载荷，LeaderID 为 0 表示全部团长
type CommissionReconcilePayload struct {
	LeaderID uint   `json:"leader_id"`
	Trigger  string `json:"trigger"`
}

// NewOrderStatusChangedTask 创建订单状态变更任务
func NewOrderStatusChangedTask(payload OrderStatusChangedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusChanged, body), nil
}

// NewWithdrawalReviewedTask 创建提现审核结果任务
func NewWithdrawalReviewedTask(payload WithdrawalReviewedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalReviewed, body), nil
}

// NewCommissionReconcileTask 创建对账任务
func NewCommissionReconcileTask(payload CommissionReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionReconcile, body), nil
}

// ParseOrderStatusChangedPayload 解析订单状态变更载荷
func ParseOrderStatusChangedPayload(task *asynq.Task) (OrderStatusChangedPayload, error) {
	var payload OrderStatusChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// ParseWithdrawalReviewedPayload 解析提现审核结果载荷
func ParseWithdrawalReviewedPayload(task *asynq.Task) (WithdrawalReviewedPayload, error) {
	var payload WithdrawalReviewedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// ParseCommissionReconcilePayload 解析对账任务载荷，空载荷视为全量
func ParseCommissionReconcilePayload(task *asynq.Task) (CommissionReconcilePayload, error) {
	var payload CommissionReconcilePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
