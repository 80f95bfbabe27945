package provider

import (
	"fmt"

	"github.com/groupbuy-next/internal/authz"
	"github.com/groupbuy-next/internal/cache"
	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/queue"
	"github.com/groupbuy-next/internal/repository"
	"github.com/groupbuy-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	UserRepo       repository.UserRepository
	LeaderRepo     repository.LeaderRepository
	CommunityRepo  repository.CommunityRepository
	ProductRepo    repository.ProductRepository
	OrderRepo      repository.OrderRepository
	CommissionRepo repository.CommissionRepository
	WithdrawalRepo repository.WithdrawalRepository
	DashboardRepo  repository.DashboardRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	LeaderService     *service.LeaderService
	OrderService      *service.OrderService
	CommissionService *service.CommissionService
	WithdrawalService *service.WithdrawalService
	ReconcileService  *service.ReconcileService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时返回空实现
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := c.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.LeaderRepo = repository.NewLeaderRepository(db)
	c.CommunityRepo = repository.NewCommunityRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.LeaderRepo, c.AuthzService)
	c.LeaderService = service.NewLeaderService(c.Config, c.UserRepo, c.LeaderRepo, c.CommunityRepo, c.DashboardRepo, c.AuthzService)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.LeaderRepo, c.CommissionRepo, c.QueueClient)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.LeaderRepo)
	c.WithdrawalService = service.NewWithdrawalService(c.WithdrawalRepo, c.LeaderRepo, c.QueueClient)
	c.ReconcileService = service.NewReconcileService(c.LeaderRepo, c.CommissionRepo, c.QueueClient)
	return nil
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
