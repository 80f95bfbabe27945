package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 账务相关任务队列
	CriticalQueue = constants.QueueCritical
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderStatusChanged 推送订单状态变更任务
func (c *Client) EnqueueOrderStatusChanged(payload OrderStatusChangedPayload, opts ...asynq.Option) error {
	return c.enqueue(func() (*asynq.Task, error) { return NewOrderStatusChangedTask(payload) },
		[]asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(5)}, opts)
}

// EnqueueWithdrawalReviewed 推送提现审核结果任务
func (c *Client) EnqueueWithdrawalReviewed(payload WithdrawalReviewedPayload, opts ...asynq.Option) error {
	return c.enqueue(func() (*asynq.Task, error) { return NewWithdrawalReviewedTask(payload) },
		[]asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(5)}, opts)
}

// EnqueueCommissionReconcile 推送对账任务，同一团长在窗口期内只保留一个
func (c *Client) EnqueueCommissionReconcile(payload CommissionReconcilePayload, unique time.Duration) error {
	var extra []asynq.Option
	if unique > 0 {
		extra = append(extra, asynq.Unique(unique))
	}
	return c.enqueue(func() (*asynq.Task, error) { return NewCommissionReconcileTask(payload) },
		[]asynq.Option{asynq.Queue(CriticalQueue), asynq.MaxRetry(1)}, extra)
}

// enqueue 未启用时静默跳过；调用方选项追加在默认选项之后，同类选项以后者为准
func (c *Client) enqueue(build func() (*asynq.Task, error), defaults []asynq.Option, opts []asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := build()
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, append(defaults, opts...)...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
