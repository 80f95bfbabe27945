package worker

import (
	"context"
	"errors"
	"time"

	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		reconcileInterval: resolveReconcileInterval(consumer.Config),
	}, nil
}

func resolveReconcileInterval(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Commission.ReconcileIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.Commission.ReconcileIntervalSeconds) * time.Second
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.reconcileInterval > 0 && s.consumer != nil && s.consumer.ReconcileService != nil {
		go s.runReconcileLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runReconcileLoop 定时全量对账，只读不修正
func (s *Service) runReconcileLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ReconcileService == nil {
		return
	}
	runOnce := func() {
		if _, err := s.consumer.ReconcileService.Reconcile(0); err != nil {
			logger.Warnw("worker_commission_reconcile_loop_failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
