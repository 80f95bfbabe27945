package service

import (
	"errors"
	"testing"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestCommissionAdjustmentUpdatesLedger(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13700000001", "12", "0")

	record, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{
		LeaderID: leader.ID,
		Amount:   models.MustMoney("50"),
	})
	if err != nil {
		t.Fatalf("positive adjustment failed: %v", err)
	}
	if record.Status != constants.CommissionStatusSettled || record.SettledAt == nil || record.OrderID != nil {
		t.Fatalf("unexpected adjustment record: %+v", record)
	}
	if record.Remark != constants.AdjustmentDefaultRemark {
		t.Fatalf("default remark want %s got %s", constants.AdjustmentDefaultRemark, record.Remark)
	}

	if _, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{
		LeaderID: leader.ID,
		Amount:   models.MustMoney("-20"),
		Remark:   "扣回",
	}); err != nil {
		t.Fatalf("negative adjustment failed: %v", err)
	}

	updated := f.reloadLeader(t, leader.ID)
	assertMoney(t, "balance", updated.Balance, "30.00")
	assertMoney(t, "total commission ignores negative", updated.TotalCommission, "50.00")
	if updated.TotalOrders != 0 {
		t.Fatalf("adjustment must not count orders, got %d", updated.TotalOrders)
	}
}

func TestCommissionAdjustmentCannotOverdraw(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13700000002", "12", "30")

	_, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{
		LeaderID: leader.ID,
		Amount:   models.MustMoney("-30.01"),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance got %v", err)
	}
	assertMoney(t, "balance unchanged", f.reloadLeader(t, leader.ID).Balance, "30.00")
	if got := f.countCommissions(t, "leader_id = ?", leader.ID); got != 0 {
		t.Fatalf("failed adjustment must not insert rows, got %d", got)
	}
}

func TestCommissionAdjustmentValidation(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13700000003", "12", "0")

	if _, err := f.commissionSvc.CreateAdjustment(leaderPrincipal(leader), CommissionAdjustmentInput{LeaderID: leader.ID, Amount: models.MustMoney("1")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("leader adjustment want ErrForbidden got %v", err)
	}
	if _, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{LeaderID: leader.ID, Amount: models.MustMoney("0.001")}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero adjustment want ErrInvalidAmount got %v", err)
	}
	subCent := models.Money{Decimal: decimal.RequireFromString("10.005")}
	if _, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{LeaderID: leader.ID, Amount: subCent}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("sub-cent adjustment want ErrInvalidAmount got %v", err)
	}
	if _, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{LeaderID: 777, Amount: models.MustMoney("1")}); !errors.Is(err, ErrLeaderNotFound) {
		t.Fatalf("missing leader want ErrLeaderNotFound got %v", err)
	}
}

func createDeferred(t *testing.T, f *ledgerServiceFixture, leaderID uint, amount string) uint {
	t.Helper()
	record, err := f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{
		LeaderID: leaderID,
		Amount:   models.MustMoney(amount),
		Deferred: true,
	})
	if err != nil {
		t.Fatalf("create deferred adjustment failed: %v", err)
	}
	if record.Status != constants.CommissionStatusPending || record.SettledAt != nil {
		t.Fatalf("deferred adjustment should stay pending: %+v", record)
	}
	return record.ID
}

func TestCommissionBatchSettleGroupsByLeader(t *testing.T) {
	f := setupLedgerServiceTest(t)
	a := f.createLeader(t, "13700000004", "12", "0")
	b := f.createLeader(t, "13700000005", "12", "0")
	ids := []uint{
		createDeferred(t, f, a.ID, "5"),
		createDeferred(t, f, a.ID, "7"),
		createDeferred(t, f, b.ID, "3"),
	}
	assertMoney(t, "deferred leaves balance", f.reloadLeader(t, a.ID).Balance, "0.00")

	result, err := f.commissionSvc.BatchSettle(testAdmin, append(ids, ids[0], 9999))
	if err != nil {
		t.Fatalf("batch settle failed: %v", err)
	}
	if result.SettledCount != 3 {
		t.Fatalf("settled count want 3 got %d", result.SettledCount)
	}
	assertMoney(t, "total", result.TotalAmount, "15.00")
	if len(result.Leaders) != 2 || result.Leaders[0].LeaderID != a.ID || result.Leaders[0].Count != 2 {
		t.Fatalf("unexpected leader summaries: %+v", result.Leaders)
	}
	settledA := f.reloadLeader(t, a.ID)
	assertMoney(t, "leader a balance", settledA.Balance, "12.00")
	assertMoney(t, "batch settle leaves total commission", settledA.TotalCommission, "0.00")
	settledB := f.reloadLeader(t, b.ID)
	assertMoney(t, "leader b balance", settledB.Balance, "3.00")
	assertMoney(t, "leader b total commission", settledB.TotalCommission, "0.00")
	if got := f.countCommissions(t, "status = ? AND settled_at IS NOT NULL", constants.CommissionStatusSettled); got != 3 {
		t.Fatalf("settled rows want 3 got %d", got)
	}

	if _, err := f.commissionSvc.BatchSettle(testAdmin, ids); !errors.Is(err, ErrNoPendingCommission) {
		t.Fatalf("second settle want ErrNoPendingCommission got %v", err)
	}
	assertMoney(t, "no double credit", f.reloadLeader(t, a.ID).Balance, "12.00")
}

func TestCommissionBatchSettleRequiresAdminAndIDs(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13700000006", "12", "0")
	id := createDeferred(t, f, leader.ID, "4")

	if _, err := f.commissionSvc.BatchSettle(leaderPrincipal(leader), []uint{id}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("leader batch settle want ErrForbidden got %v", err)
	}
	if _, err := f.commissionSvc.BatchSettle(testAdmin, nil); !errors.Is(err, ErrNoPendingCommission) {
		t.Fatalf("empty ids want ErrNoPendingCommission got %v", err)
	}
}

func TestCommissionListAndStatsScoped(t *testing.T) {
	f := setupLedgerServiceTest(t)
	a := f.createLeader(t, "13700000007", "10", "0")
	b := f.createLeader(t, "13700000008", "10", "0")
	order := f.createOrder(t, a.ID, "100.00", constants.OrderStatusPickup)
	if _, err := f.orderSvc.TransitionStatus(testAdmin, order.ID, constants.OrderStatusCompleted); err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	createDeferred(t, f, a.ID, "2")
	createDeferred(t, f, b.ID, "9")

	records, total, err := f.commissionSvc.List(leaderPrincipal(a), repository.CommissionListFilter{LeaderID: b.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("leader a should see 2 rows, total=%d", total)
	}

	stats, err := f.commissionSvc.Stats(leaderPrincipal(a), 0)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	assertMoney(t, "total", stats.TotalAmount, "12.00")
	assertMoney(t, "settled", stats.SettledAmount, "10.00")
	assertMoney(t, "pending", stats.PendingAmount, "2.00")
	assertMoney(t, "order type", stats.ByType[constants.CommissionTypeOrder], "10.00")

	record, err := f.commissionSvc.Get(leaderPrincipal(b), records[0].ID)
	if !errors.Is(err, ErrForbidden) || record != nil {
		t.Fatalf("other leader detail want ErrForbidden got %v", err)
	}
}
