package service

import (
	"strconv"
	"time"

	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/queue"
	"github.com/groupbuy-next/internal/repository"
)

const reconcileUniqueWindow = 10 * time.Minute

// ReconcileMismatch 对账差异
type ReconcileMismatch struct {
	LeaderID uint   `json:"leader_id"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ReconcileReport 对账结果
type ReconcileReport struct {
	Checked    int                 `json:"checked"`
	Mismatches []ReconcileMismatch `json:"mismatches"`
	FinishedAt time.Time           `json:"finished_at"`
}

// ReconcileService 团长账务只读对账
type ReconcileService struct {
	leaderRepo     repository.LeaderRepository
	commissionRepo repository.CommissionRepository
	queueClient    *queue.Client
}

// NewReconcileService 创建对账服务
func NewReconcileService(
	leaderRepo repository.LeaderRepository,
	commissionRepo repository.CommissionRepository,
	queueClient *queue.Client,
) *ReconcileService {
	return &ReconcileService{
		leaderRepo:     leaderRepo,
		commissionRepo: commissionRepo,
		queueClient:    queueClient,
	}
}

// Reconcile 核对 total_orders 与订单佣金笔数，total_commission 不得低于已结算订单佣金之和
// leaderID 为 0 时核对全部团长
func (s *ReconcileService) Reconcile(leaderID uint) (*ReconcileReport, error) {
	rows, err := s.commissionRepo.OrderLedgerByLeader()
	if err != nil {
		return nil, err
	}
	ledger := make(map[uint]repository.CommissionLedgerRow, len(rows))
	for _, row := range rows {
		ledger[row.LeaderID] = row
	}

	leaders, err := s.leaderRepo.ListAll()
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Mismatches: make([]ReconcileMismatch, 0)}
	for _, leader := range leaders {
		if leaderID != 0 && leader.ID != leaderID {
			continue
		}
		report.Checked++
		row := ledger[leader.ID]
		if leader.TotalOrders != row.OrderCount {
			report.Mismatches = append(report.Mismatches, ReconcileMismatch{
				LeaderID: leader.ID,
				Field:    "total_orders",
				Expected: formatInt(row.OrderCount),
				Actual:   formatInt(leader.TotalOrders),
			})
		}
		if leader.TotalCommission.LessThan(row.SettledOrderSum.Decimal) {
			report.Mismatches = append(report.Mismatches, ReconcileMismatch{
				LeaderID: leader.ID,
				Field:    "total_commission",
				Expected: ">= " + row.SettledOrderSum.String(),
				Actual:   leader.TotalCommission.String(),
			})
		}
	}
	report.FinishedAt = time.Now()

	for _, mismatch := range report.Mismatches {
		logger.Warnw("commission_reconcile_mismatch",
			"leader_id", mismatch.LeaderID,
			"field", mismatch.Field,
			"expected", mismatch.Expected,
			"actual", mismatch.Actual,
		)
	}
	logger.Infow("commission_reconcile_finished",
		"leader_id", leaderID,
		"checked", report.Checked,
		"mismatches", len(report.Mismatches),
	)
	return report, nil
}

// Request 管理员触发对账；队列可用时异步执行，否则同步返回结果
func (s *ReconcileService) Request(principal Principal, leaderID uint) (bool, *ReconcileReport, error) {
	if !principal.IsAdmin() {
		return false, nil, ErrForbidden
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueCommissionReconcile(queue.CommissionReconcilePayload{
			LeaderID: leaderID,
			Trigger:  "manual",
		}, reconcileUniqueWindow); err != nil {
			logger.Warnw("commission_reconcile_enqueue_failed", "leader_id", leaderID, "error", err)
			return false, nil, ErrQueueUnavailable
		}
		return true, nil, nil
	}
	report, err := s.Reconcile(leaderID)
	if err != nil {
		return false, nil, err
	}
	return false, report, nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
