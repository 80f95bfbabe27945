package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/queue"
	"github.com/groupbuy-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type ledgerServiceFixture struct {
	db            *gorm.DB
	orderSvc      *OrderService
	commissionSvc *CommissionService
	withdrawalSvc *WithdrawalService
	reconcileSvc  *ReconcileService
	leaderRepo    *repository.GormLeaderRepository
}

func setupLedgerServiceTest(t *testing.T) *ledgerServiceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	queueClient, _ := queue.NewClient(nil)
	orderRepo := repository.NewOrderRepository(db)
	leaderRepo := repository.NewLeaderRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	return &ledgerServiceFixture{
		db:            db,
		orderSvc:      NewOrderService(orderRepo, leaderRepo, commissionRepo, queueClient),
		commissionSvc: NewCommissionService(commissionRepo, leaderRepo),
		withdrawalSvc: NewWithdrawalService(withdrawalRepo, leaderRepo, queueClient),
		reconcileSvc:  NewReconcileService(leaderRepo, commissionRepo, queueClient),
		leaderRepo:    leaderRepo,
	}
}

var testOrderSeq int64

var testAdmin = Principal{UserID: 1, Role: constants.RoleAdmin}

func leaderPrincipal(leader *models.Leader) Principal {
	return Principal{UserID: leader.UserID, Role: constants.RoleLeader, LeaderID: leader.ID}
}

func (f *ledgerServiceFixture) createLeader(t *testing.T, phone string, rate string, balance string) *models.Leader {
	t.Helper()
	user := &models.User{
		Username:     "leader_" + phone,
		PasswordHash: "hash",
		Role:         constants.RoleLeader,
		Status:       constants.UserStatusActive,
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	leader := &models.Leader{
		UserID:          user.ID,
		Name:            "团长" + phone,
		Phone:           phone,
		CommissionRate:  models.MustMoney(rate),
		Balance:         models.MustMoney(balance),
		TotalCommission: models.ZeroMoney(),
		Status:          constants.LeaderStatusActive,
	}
	if err := f.db.Create(leader).Error; err != nil {
		t.Fatalf("create leader failed: %v", err)
	}
	return leader
}

func (f *ledgerServiceFixture) createOrder(t *testing.T, leaderID uint, total string, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:          fmt.Sprintf("GB%d%04d", time.Now().Unix(), atomic.AddInt64(&testOrderSeq, 1)),
		LeaderID:         leaderID,
		CustomerName:     "张三",
		CustomerPhone:    "13800000000",
		TotalAmount:      models.MustMoney(total),
		CommissionAmount: models.ZeroMoney(),
		Status:           status,
	}
	if err := f.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (f *ledgerServiceFixture) reloadLeader(t *testing.T, id uint) *models.Leader {
	t.Helper()
	var leader models.Leader
	if err := f.db.First(&leader, id).Error; err != nil {
		t.Fatalf("reload leader failed: %v", err)
	}
	return &leader
}

func (f *ledgerServiceFixture) reloadOrder(t *testing.T, id uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := f.db.First(&order, id).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return &order
}

func (f *ledgerServiceFixture) countCommissions(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.Commission{}).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("count commissions failed: %v", err)
	}
	return count
}

func assertMoney(t *testing.T, label string, got models.Money, want string) {
	t.Helper()
	if got.StringFixed(2) != want {
		t.Fatalf("%s want %s got %s", label, want, got.StringFixed(2))
	}
}
