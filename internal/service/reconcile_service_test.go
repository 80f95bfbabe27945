package service

import (
	"errors"
	"testing"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCleanLedger(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13400000001", "10", "0")
	order := f.createOrder(t, leader.ID, "120.00", constants.OrderStatusPickup)
	_, err := f.orderSvc.TransitionStatus(testAdmin, order.ID, constants.OrderStatusCompleted)
	require.NoError(t, err)
	_, err = f.commissionSvc.CreateAdjustment(testAdmin, CommissionAdjustmentInput{LeaderID: leader.ID, Amount: models.MustMoney("5")})
	require.NoError(t, err)

	report, err := f.reconcileSvc.Reconcile(0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Mismatches)
}

func TestReconcileDetectsDrift(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13400000002", "10", "0")
	other := f.createLeader(t, "13400000003", "10", "0")
	order := f.createOrder(t, leader.ID, "100.00", constants.OrderStatusPickup)
	_, err := f.orderSvc.TransitionStatus(testAdmin, order.ID, constants.OrderStatusCompleted)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Leader{}).Where("id = ?", leader.ID).Updates(map[string]interface{}{
		"total_orders":     5,
		"total_commission": "1.00",
	}).Error)

	report, err := f.reconcileSvc.Reconcile(leader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	require.Len(t, report.Mismatches, 2)
	assert.Equal(t, "total_orders", report.Mismatches[0].Field)
	assert.Equal(t, "1", report.Mismatches[0].Expected)
	assert.Equal(t, "5", report.Mismatches[0].Actual)
	assert.Equal(t, "total_commission", report.Mismatches[1].Field)

	report, err = f.reconcileSvc.Reconcile(other.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches)
}

func TestReconcileRequestRunsInlineWithoutQueue(t *testing.T) {
	f := setupLedgerServiceTest(t)
	f.createLeader(t, "13400000004", "10", "0")

	queued, report, err := f.reconcileSvc.Request(testAdmin, 0)
	require.NoError(t, err)
	assert.False(t, queued)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Checked)

	_, _, err = f.reconcileSvc.Request(Principal{UserID: 2, Role: constants.RoleLeader, LeaderID: 1}, 0)
	assert.True(t, errors.Is(err, ErrForbidden))
}
