package service

import (
	"errors"
	"testing"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"github.com/shopspring/decimal"
)

func withdrawalInput(amount string) WithdrawalCreateInput {
	return WithdrawalCreateInput{
		Amount:        models.MustMoney(amount),
		AccountName:   "李四",
		AccountNumber: "6222000000000000",
	}
}

func TestWithdrawalRejectRestoresBalance(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13600000001", "12", "100")

	withdrawal, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("60"))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if withdrawal.Status != constants.WithdrawalStatusPending {
		t.Fatalf("status want pending got %s", withdrawal.Status)
	}
	assertMoney(t, "reserved balance", f.reloadLeader(t, leader.ID).Balance, "40.00")

	if _, err := f.withdrawalSvc.Review(testAdmin, withdrawal.ID, constants.WithdrawalStatusRejected, "  "); !errors.Is(err, ErrMissingReason) {
		t.Fatalf("reject without reason want ErrMissingReason got %v", err)
	}

	reviewed, err := f.withdrawalSvc.Review(testAdmin, withdrawal.ID, constants.WithdrawalStatusRejected, "账户信息有误")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if reviewed.Status != constants.WithdrawalStatusRejected || reviewed.RejectReason != "账户信息有误" {
		t.Fatalf("unexpected reviewed withdrawal: %+v", reviewed)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != testAdmin.UserID || reviewed.ReviewedAt == nil {
		t.Fatalf("reviewer should be recorded: %+v", reviewed)
	}
	assertMoney(t, "restored balance", f.reloadLeader(t, leader.ID).Balance, "100.00")

	if _, err := f.withdrawalSvc.Review(testAdmin, withdrawal.ID, constants.WithdrawalStatusApproved, ""); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("second review want ErrAlreadyReviewed got %v", err)
	}
	assertMoney(t, "balance after duplicate review", f.reloadLeader(t, leader.ID).Balance, "100.00")
}

func TestWithdrawalApproveKeepsDeduction(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13600000002", "12", "100")

	withdrawal, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("100"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	reviewed, err := f.withdrawalSvc.Review(testAdmin, withdrawal.ID, "APPROVED", "ignored")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if reviewed.Status != constants.WithdrawalStatusApproved || reviewed.RejectReason != "" {
		t.Fatalf("unexpected approved withdrawal: %+v", reviewed)
	}
	assertMoney(t, "balance", f.reloadLeader(t, leader.ID).Balance, "0.00")

	if _, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("1")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("empty balance want ErrInsufficientBalance got %v", err)
	}
}

func TestWithdrawalInsufficientBalance(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13600000003", "12", "100")

	if _, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("150")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance got %v", err)
	}
	assertMoney(t, "balance", f.reloadLeader(t, leader.ID).Balance, "100.00")
	var count int64
	f.db.Model(&models.Withdrawal{}).Count(&count)
	if count != 0 {
		t.Fatalf("no withdrawal should be created, got %d", count)
	}
}

func TestWithdrawalAtMostOnePending(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13600000004", "12", "100")

	first, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("10"))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("10")); !errors.Is(err, ErrWithdrawalAlreadyPending) {
		t.Fatalf("second create want ErrWithdrawalAlreadyPending got %v", err)
	}
	if _, err := f.withdrawalSvc.Review(testAdmin, first.ID, constants.WithdrawalStatusApproved, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := f.withdrawalSvc.Create(leaderPrincipal(leader), withdrawalInput("10")); err != nil {
		t.Fatalf("create after review failed: %v", err)
	}
	assertMoney(t, "balance", f.reloadLeader(t, leader.ID).Balance, "80.00")
}

func TestWithdrawalCancelByOwner(t *testing.T) {
	f := setupLedgerServiceTest(t)
	owner := f.createLeader(t, "13600000005", "12", "50")
	other := f.createLeader(t, "13600000006", "12", "50")

	withdrawal, err := f.withdrawalSvc.Create(leaderPrincipal(owner), withdrawalInput("20"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.withdrawalSvc.Cancel(leaderPrincipal(other), withdrawal.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other leader cancel want ErrForbidden got %v", err)
	}
	if _, err := f.withdrawalSvc.Cancel(testAdmin, withdrawal.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin cancel want ErrForbidden got %v", err)
	}

	cancelled, err := f.withdrawalSvc.Cancel(leaderPrincipal(owner), withdrawal.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.WithdrawalStatusRejected || cancelled.RejectReason != constants.WithdrawalCancelledByLeader {
		t.Fatalf("unexpected cancelled withdrawal: %+v", cancelled)
	}
	if cancelled.ReviewedAt == nil || cancelled.ReviewedBy != nil {
		t.Fatalf("cancel should stamp reviewed_at without reviewer: %+v", cancelled)
	}
	assertMoney(t, "restored", f.reloadLeader(t, owner.ID).Balance, "50.00")

	if _, err := f.withdrawalSvc.Cancel(leaderPrincipal(owner), withdrawal.ID); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("second cancel want ErrNotCancellable got %v", err)
	}
	assertMoney(t, "no double refund", f.reloadLeader(t, owner.ID).Balance, "50.00")
}

func TestWithdrawalCreateValidation(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13600000007", "12", "50")
	principal := leaderPrincipal(leader)

	if _, err := f.withdrawalSvc.Create(testAdmin, withdrawalInput("10")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin create want ErrForbidden got %v", err)
	}
	if _, err := f.withdrawalSvc.Create(principal, withdrawalInput("0")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount want ErrInvalidAmount got %v", err)
	}
	if _, err := f.withdrawalSvc.Create(principal, withdrawalInput("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount want ErrInvalidAmount got %v", err)
	}
	subCent := withdrawalInput("10")
	subCent.Amount = models.Money{Decimal: decimal.RequireFromString("10.005")}
	if _, err := f.withdrawalSvc.Create(principal, subCent); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("sub-cent amount want ErrInvalidAmount got %v", err)
	}
	assertMoney(t, "balance untouched by rejected amounts", f.reloadLeader(t, leader.ID).Balance, "50.00")
	if _, err := f.withdrawalSvc.Create(principal, WithdrawalCreateInput{Amount: models.MustMoney("5")}); !errors.Is(err, ErrAccountRequired) {
		t.Fatalf("missing account want ErrAccountRequired got %v", err)
	}
	if _, err := f.withdrawalSvc.Review(testAdmin, 1, "pending", ""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("invalid decision want ErrInvalidStatus got %v", err)
	}
	if _, err := f.withdrawalSvc.Review(testAdmin, 404, constants.WithdrawalStatusApproved, ""); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("missing withdrawal want ErrWithdrawalNotFound got %v", err)
	}

	if err := f.db.Model(&models.Leader{}).Where("id = ?", leader.ID).Update("status", constants.LeaderStatusDisabled).Error; err != nil {
		t.Fatalf("disable leader failed: %v", err)
	}
	if _, err := f.withdrawalSvc.Create(principal, withdrawalInput("5")); !errors.Is(err, ErrLeaderDisabled) {
		t.Fatalf("disabled leader want ErrLeaderDisabled got %v", err)
	}
}

func TestWithdrawalStats(t *testing.T) {
	f := setupLedgerServiceTest(t)
	leader := f.createLeader(t, "13600000008", "12", "100")
	principal := leaderPrincipal(leader)

	first, _ := f.withdrawalSvc.Create(principal, withdrawalInput("30"))
	if _, err := f.withdrawalSvc.Review(testAdmin, first.ID, constants.WithdrawalStatusApproved, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	second, _ := f.withdrawalSvc.Create(principal, withdrawalInput("10"))
	if _, err := f.withdrawalSvc.Cancel(principal, second.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := f.withdrawalSvc.Create(principal, withdrawalInput("20")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stats, err := f.withdrawalSvc.Stats(principal, 0)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	assertMoney(t, "balance", stats.Balance, "50.00")
	assertMoney(t, "available", stats.Available, "50.00")
	assertMoney(t, "pending", stats.PendingAmount, "20.00")
	assertMoney(t, "approved", stats.ApprovedTotal, "30.00")
	if stats.RejectedCount != 1 || stats.PendingCount != 1 || stats.ApprovedCount != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
}
