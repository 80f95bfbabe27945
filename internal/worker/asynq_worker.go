package worker

import (
	"context"
	"strings"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/provider"
	"github.com/groupbuy-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusChanged, c.handleOrderStatusChanged)
	mux.HandleFunc(queue.TaskWithdrawalReviewed, c.handleWithdrawalReviewed)
	mux.HandleFunc(queue.TaskCommissionReconcile, c.handleCommissionReconcile)
}

// handleOrderStatusChanged 订单状态通知，已完成订单额外核对是否结算
func (c *Consumer) handleOrderStatusChanged(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_changed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderStatusChangedPayload(task)
	if err != nil {
		logger.Warnw("worker_order_status_changed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_changed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_changed_fetch_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_changed_skip_not_found", "order_id", payload.OrderID)
		return nil
	}

	if strings.TrimSpace(payload.ToStatus) == constants.OrderStatusCompleted && order.SettledAt == nil {
		// 已完成却没有结算时间，视为异常数据
		logger.Warnw("worker_order_completed_unsettled",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"leader_id", order.LeaderID,
			"status", order.Status,
		)
		return nil
	}

	logger.Infow("worker_order_status_notified",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"leader_id", payload.LeaderID,
		"from_status", payload.FromStatus,
		"to_status", payload.ToStatus,
		"commission_amount", payload.CommissionAmount,
		"operator_id", payload.OperatorID,
	)
	return nil
}

func (c *Consumer) handleWithdrawalReviewed(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_withdrawal_reviewed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseWithdrawalReviewedPayload(task)
	if err != nil {
		logger.Warnw("worker_withdrawal_reviewed_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		logger.Debugw("worker_withdrawal_reviewed_skip_invalid_payload", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	withdrawal, err := c.WithdrawalRepo.GetByID(payload.WithdrawalID)
	if err != nil {
		logger.Warnw("worker_withdrawal_reviewed_fetch_failed", "withdrawal_id", payload.WithdrawalID, "error", err)
		return err
	}
	if withdrawal == nil {
		logger.Debugw("worker_withdrawal_reviewed_skip_not_found", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if withdrawal.Status != payload.Status {
		logger.Warnw("worker_withdrawal_reviewed_status_mismatch",
			"withdrawal_id", withdrawal.ID,
			"payload_status", payload.Status,
			"current_status", withdrawal.Status,
		)
		return nil
	}
	logger.Infow("worker_withdrawal_reviewed_notified",
		"withdrawal_id", withdrawal.ID,
		"leader_id", withdrawal.LeaderID,
		"status", withdrawal.Status,
		"amount", payload.Amount,
		"reason", payload.Reason,
	)
	return nil
}

func (c *Consumer) handleCommissionReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_commission_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCommissionReconcilePayload(task)
	if err != nil {
		logger.Warnw("worker_commission_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if c.ReconcileService == nil {
		logger.Warnw("worker_commission_reconcile_skip_service_nil", "leader_id", payload.LeaderID)
		return nil
	}
	report, err := c.ReconcileService.Reconcile(payload.LeaderID)
	if err != nil {
		logger.Warnw("worker_commission_reconcile_failed", "leader_id", payload.LeaderID, "error", err)
		return err
	}
	logger.Debugw("worker_commission_reconcile_done",
		"leader_id", payload.LeaderID,
		"trigger", payload.Trigger,
		"checked", report.Checked,
		"mismatches", len(report.Mismatches),
	)
	return nil
}
