package service

import (
	"context"
	"strings"
	"time"

	"github.com/groupbuy-next/internal/cache"
	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const leaderStatsPeriodDays = 30

// RoleBinder 账号与授权角色的绑定
type RoleBinder interface {
	SetUserRoles(userID uint, roles []string) error
	EnsureUserRole(userID uint, role string) error
}

// LeaderService 团长管理服务
type LeaderService struct {
	cfg           *config.Config
	userRepo      repository.UserRepository
	leaderRepo    repository.LeaderRepository
	communityRepo repository.CommunityRepository
	dashboardRepo repository.DashboardRepository
	roles         RoleBinder
}

// NewLeaderService 创建团长服务
func NewLeaderService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	leaderRepo repository.LeaderRepository,
	communityRepo repository.CommunityRepository,
	dashboardRepo repository.DashboardRepository,
	roles RoleBinder,
) *LeaderService {
	return &LeaderService{
		cfg:           cfg,
		userRepo:      userRepo,
		leaderRepo:    leaderRepo,
		communityRepo: communityRepo,
		dashboardRepo: dashboardRepo,
		roles:         roles,
	}
}

// LeaderCreateInput 新建团长参数
type LeaderCreateInput struct {
	Username       string
	Password       string
	Name           string
	Phone          string
	CommunityID    *uint
	CommissionRate *models.Money
}

// LeaderUpdateInput 更新团长资料参数，nil 表示不修改
type LeaderUpdateInput struct {
	Name           *string
	Phone          *string
	CommunityID    *uint
	CommissionRate *models.Money
}

// LeaderStats 团长经营概览
type LeaderStats struct {
	LeaderID        uint                         `json:"leader_id"`
	Balance         models.Money                 `json:"balance"`
	TotalOrders     int64                        `json:"total_orders"`
	TotalCommission models.Money                 `json:"total_commission"`
	CommissionRate  models.Money                 `json:"commission_rate"`
	PeriodDays      int                          `json:"period_days"`
	Overview        repository.LeaderOverviewRow `json:"overview"`
}

// List 团长列表
func (s *LeaderService) List(filter repository.LeaderListFilter) ([]models.Leader, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	filter.Status = strings.TrimSpace(filter.Status)
	return s.leaderRepo.List(filter)
}

// Get 团长详情
func (s *LeaderService) Get(id uint) (*models.Leader, error) {
	leader, err := s.leaderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if leader == nil {
		return nil, ErrLeaderNotFound
	}
	return leader, nil
}

// Profile 当前团长资料
func (s *LeaderService) Profile(principal Principal) (*models.Leader, error) {
	if !principal.IsLeader() {
		return nil, ErrForbidden
	}
	return s.Get(principal.LeaderID)
}

// Create 同一事务内创建登录账号与团长档案
func (s *LeaderService) Create(input LeaderCreateInput) (*models.Leader, error) {
	username := strings.TrimSpace(input.Username)
	phone := strings.TrimSpace(input.Phone)
	name := strings.TrimSpace(input.Name)
	if username == "" || phone == "" || name == "" {
		return nil, ErrInvalidInput
	}
	if s.cfg != nil {
		if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
			return nil, err
		}
	}
	rate, err := s.resolveRate(input.CommissionRate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCommunity(input.CommunityID); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	existingLeader, err := s.leaderRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if existingUser != nil || existingLeader != nil {
		return nil, ErrLeaderExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var leader *models.Leader
	err = s.leaderRepo.Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Username:     username,
			PasswordHash: string(hash),
			Role:         constants.RoleLeader,
			RealName:     name,
			Phone:        phone,
			Status:       constants.UserStatusActive,
		}
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		leader = &models.Leader{
			UserID:          user.ID,
			CommunityID:     input.CommunityID,
			Name:            name,
			Phone:           phone,
			CommissionRate:  rate,
			Balance:         models.ZeroMoney(),
			TotalCommission: models.ZeroMoney(),
			Status:          constants.LeaderStatusActive,
		}
		return s.leaderRepo.WithTx(tx).Create(leader)
	})
	if err != nil {
		return nil, err
	}

	if s.roles != nil {
		if err := s.roles.SetUserRoles(leader.UserID, []string{constants.RoleLeader}); err != nil {
			logger.Warnw("leader_role_bind_failed", "leader_id", leader.ID, "user_id", leader.UserID, "error", err)
		}
	}
	logger.Infow("leader_created", "leader_id", leader.ID, "user_id", leader.UserID)
	return leader, nil
}

// Update 更新团长资料，余额等账务字段不可通过此接口修改
func (s *LeaderService) Update(id uint, input LeaderUpdateInput) (*models.Leader, error) {
	leader, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		updates["name"] = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, ErrInvalidInput
		}
		if phone != leader.Phone {
			existing, err := s.leaderRepo.GetByPhone(phone)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != leader.ID {
				return nil, ErrLeaderExists
			}
		}
		updates["phone"] = phone
	}
	if input.CommunityID != nil {
		if err := s.ensureCommunity(input.CommunityID); err != nil {
			return nil, err
		}
		if *input.CommunityID == 0 {
			updates["community_id"] = nil
		} else {
			updates["community_id"] = *input.CommunityID
		}
	}
	if input.CommissionRate != nil {
		rate, err := s.resolveRate(input.CommissionRate)
		if err != nil {
			return nil, err
		}
		updates["commission_rate"] = rate
	}

	if err := s.leaderRepo.UpdateProfile(leader.ID, updates); err != nil {
		return nil, err
	}
	return s.Get(leader.ID)
}

// UpdateStatus 启用或禁用团长，同时失效其登录态
func (s *LeaderService) UpdateStatus(id uint, status string) (*models.Leader, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.LeaderStatusActive && status != constants.LeaderStatusDisabled {
		return nil, ErrInvalidStatus
	}
	leader, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if leader.Status == status {
		return leader, nil
	}

	err = s.leaderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.leaderRepo.WithTx(tx).UpdateStatus(leader.ID, status); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).UpdateStatus(leader.UserID, status)
	})
	if err != nil {
		return nil, err
	}
	if err := cache.DelUserAuthState(context.Background(), leader.UserID); err != nil {
		logger.Warnw("leader_auth_state_evict_failed", "leader_id", leader.ID, "error", err)
	}
	logger.Infow("leader_status_updated", "leader_id", leader.ID, "status", status)
	return s.Get(leader.ID)
}

// Stats 团长维度统计，统计区间为最近 30 天
func (s *LeaderService) Stats(principal Principal, leaderID uint) (*LeaderStats, error) {
	scoped, err := principal.scopeLeaderID(leaderID)
	if err != nil {
		return nil, err
	}
	leader, err := s.Get(scoped)
	if err != nil {
		return nil, err
	}

	endAt := time.Now()
	startAt := startOfDay(endAt).AddDate(0, 0, -(leaderStatsPeriodDays - 1))
	overview, err := s.dashboardRepo.GetLeaderOverview(leader.ID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	return &LeaderStats{
		LeaderID:        leader.ID,
		Balance:         leader.Balance,
		TotalOrders:     leader.TotalOrders,
		TotalCommission: leader.TotalCommission,
		CommissionRate:  leader.CommissionRate,
		PeriodDays:      leaderStatsPeriodDays,
		Overview:        overview,
	}, nil
}

func (s *LeaderService) resolveRate(raw *models.Money) (models.Money, error) {
	if raw == nil {
		text := constants.DefaultCommissionRate
		if s.cfg != nil && strings.TrimSpace(s.cfg.Commission.DefaultRate) != "" {
			text = s.cfg.Commission.DefaultRate
		}
		rate, err := models.NewMoneyFromString(text)
		if err != nil {
			return models.Money{}, ErrInvalidAmount
		}
		return rate, nil
	}
	rate := *raw
	if !exactCents(rate) || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return models.Money{}, ErrInvalidAmount
	}
	return rate, nil
}

func (s *LeaderService) ensureCommunity(communityID *uint) error {
	if communityID == nil || *communityID == 0 || s.communityRepo == nil {
		return nil
	}
	community, err := s.communityRepo.GetByID(*communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return ErrCommunityNotFound
	}
	return nil
}
