package app

import (
	"errors"
	"fmt"

	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/provider"
	"github.com/groupbuy-next/internal/router"
	"github.com/groupbuy-next/internal/worker"

	"gorm.io/gorm"
)

// OpenDatabase 打开数据库并执行迁移
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	db, err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogMode, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

// EnsureDefaultAdmin 初始化默认管理员并同步 casbin 角色
func EnsureDefaultAdmin(cfg *config.Config, container *provider.Container) error {
	if cfg == nil || container == nil {
		return errors.New("config or container is nil")
	}
	admin, err := models.InitDefaultAdmin(container.DB, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
	if err != nil {
		return err
	}
	if admin == nil {
		return nil
	}
	if err := container.AuthzService.SetUserRoles(admin.ID, []string{constants.RoleAdmin}); err != nil {
		return fmt.Errorf("绑定管理员角色失败: %w", err)
	}
	return nil
}

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}
	parsed, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	opts := Options{Mode: parsed}

	var services []Service

	if opts.withAPI() {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if opts.withWorker() {
		switch {
		case cfg.Queue.Enabled:
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		case parsed == ModeWorker:
			return nil, errors.New("worker mode requires queue.enabled")
		default:
			logger.Warnw("app_worker_skipped_queue_disabled", "mode", parsed)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	db, err := OpenDatabase(opts.Config)
	if err != nil {
		return err
	}
	container, err := provider.NewContainer(opts.Config, db)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := EnsureDefaultAdmin(opts.Config, container); err != nil {
		opts.Logger.Warnw("app_default_admin_init_failed", "error", err)
	}

	runner, err := BuildRunner(opts.Config, container, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
