package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingRoleBinder struct {
	bound map[uint][]string
}

func (b *recordingRoleBinder) SetUserRoles(userID uint, roles []string) error {
	if b.bound == nil {
		b.bound = make(map[uint][]string)
	}
	b.bound[userID] = roles
	return nil
}

func (b *recordingRoleBinder) EnsureUserRole(userID uint, role string) error {
	return b.SetUserRoles(userID, []string{role})
}

func setupLeaderServiceTest(t *testing.T) (*LeaderService, *AuthService, *recordingRoleBinder, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:leader_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{
		JWT:        config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1},
		Commission: config.CommissionConfig{DefaultRate: "12.00"},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		},
	}
	binder := &recordingRoleBinder{}
	userRepo := repository.NewUserRepository(db)
	leaderRepo := repository.NewLeaderRepository(db)
	leaderSvc := NewLeaderService(
		cfg,
		userRepo,
		leaderRepo,
		repository.NewCommunityRepository(db),
		repository.NewDashboardRepository(db),
		binder,
	)
	authSvc := NewAuthService(cfg, userRepo, leaderRepo, binder)
	return leaderSvc, authSvc, binder, db
}

func TestLeaderCreateBindsUserAndRole(t *testing.T) {
	svc, _, binder, db := setupLeaderServiceTest(t)
	community := models.Community{Name: "阳光小区", Status: constants.CommunityStatusActive}
	if err := db.Create(&community).Error; err != nil {
		t.Fatalf("create community failed: %v", err)
	}

	leader, err := svc.Create(LeaderCreateInput{
		Username:    "wang",
		Password:    "password1",
		Name:        "王团长",
		Phone:       "13300000001",
		CommunityID: &community.ID,
	})
	if err != nil {
		t.Fatalf("create leader failed: %v", err)
	}
	assertMoney(t, "default rate", leader.CommissionRate, "12.00")
	if roles := binder.bound[leader.UserID]; len(roles) != 1 || roles[0] != constants.RoleLeader {
		t.Fatalf("leader role not bound: %v", roles)
	}

	var user models.User
	if err := db.First(&user, leader.UserID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if user.Role != constants.RoleLeader || user.PasswordHash == "password1" {
		t.Fatalf("unexpected user: role=%s", user.Role)
	}

	if _, err := svc.Create(LeaderCreateInput{Username: "wang2", Password: "password1", Name: "重复", Phone: "13300000001"}); !errors.Is(err, ErrLeaderExists) {
		t.Fatalf("duplicate phone want ErrLeaderExists got %v", err)
	}
	if _, err := svc.Create(LeaderCreateInput{Username: "li", Password: "short", Name: "李", Phone: "13300000002"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak password want ErrWeakPassword got %v", err)
	}
	missing := uint(999)
	if _, err := svc.Create(LeaderCreateInput{Username: "zhao", Password: "password1", Name: "赵", Phone: "13300000003", CommunityID: &missing}); !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("missing community want ErrCommunityNotFound got %v", err)
	}
}

func TestLeaderUpdateKeepsLedgerColumns(t *testing.T) {
	svc, _, _, db := setupLeaderServiceTest(t)
	leader, err := svc.Create(LeaderCreateInput{Username: "sun", Password: "password1", Name: "孙", Phone: "13300000010"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Model(&models.Leader{}).Where("id = ?", leader.ID).Update("balance", "88.00").Error; err != nil {
		t.Fatalf("seed balance failed: %v", err)
	}

	name := "孙团长"
	rate := models.MustMoney("15.5")
	updated, err := svc.Update(leader.ID, LeaderUpdateInput{Name: &name, CommissionRate: &rate})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name want %s got %s", name, updated.Name)
	}
	assertMoney(t, "rate", updated.CommissionRate, "15.50")
	assertMoney(t, "balance untouched", updated.Balance, "88.00")

	bad := models.MustMoney("120")
	if _, err := svc.Update(leader.ID, LeaderUpdateInput{CommissionRate: &bad}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("rate over 100 want ErrInvalidAmount got %v", err)
	}
	threeDecimals := models.Money{Decimal: decimal.RequireFromString("12.345")}
	if _, err := svc.Update(leader.ID, LeaderUpdateInput{CommissionRate: &threeDecimals}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("rate with three decimals want ErrInvalidAmount got %v", err)
	}
}

func TestLeaderDisableBlocksLogin(t *testing.T) {
	svc, authSvc, _, _ := setupLeaderServiceTest(t)
	leader, err := svc.Create(LeaderCreateInput{Username: "zhou", Password: "password1", Name: "周", Phone: "13300000020"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := authSvc.Login("zhou", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Leader == nil || result.Leader.ID != leader.ID {
		t.Fatalf("login should resolve leader profile")
	}

	if _, err := svc.UpdateStatus(leader.ID, "frozen"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("unknown status want ErrInvalidStatus got %v", err)
	}
	disabled, err := svc.UpdateStatus(leader.ID, constants.LeaderStatusDisabled)
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if disabled.Status != constants.LeaderStatusDisabled {
		t.Fatalf("status want disabled got %s", disabled.Status)
	}
	if _, err := authSvc.Login("zhou", "password1"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled login want ErrUserDisabled got %v", err)
	}
}

func TestLeaderStatsScoped(t *testing.T) {
	svc, _, _, db := setupLeaderServiceTest(t)
	leader, err := svc.Create(LeaderCreateInput{Username: "wu", Password: "password1", Name: "吴", Phone: "13300000030"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	orders := []models.Order{
		{OrderNo: "S1", LeaderID: leader.ID, TotalAmount: models.MustMoney("10"), Status: constants.OrderStatusCompleted},
		{OrderNo: "S2", LeaderID: leader.ID, TotalAmount: models.MustMoney("20"), Status: constants.OrderStatusPending},
	}
	if err := db.Create(&orders).Error; err != nil {
		t.Fatalf("create orders failed: %v", err)
	}

	principal := Principal{UserID: leader.UserID, Role: constants.RoleLeader, LeaderID: leader.ID}
	stats, err := svc.Stats(principal, 12345)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.LeaderID != leader.ID || stats.Overview.OrdersTotal != 2 || stats.Overview.OrdersCompleted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.PeriodDays != leaderStatsPeriodDays {
		t.Fatalf("period days want %d got %d", leaderStatsPeriodDays, stats.PeriodDays)
	}

	profile, err := svc.Profile(principal)
	if err != nil || profile.ID != leader.ID {
		t.Fatalf("profile failed: %v", err)
	}
	if _, err := svc.Profile(Principal{UserID: 1, Role: constants.RoleAdmin}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin profile want ErrForbidden got %v", err)
	}
}
