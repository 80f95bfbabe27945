package queue

import (
	"testing"

	"github.com/groupbuy-next/internal/config"

	"github.com/hibiken/asynq"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should report disabled")
	}
	if err := client.EnqueueOrderStatusChanged(OrderStatusChangedPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestOrderStatusChangedTaskRoundTrip(t *testing.T) {
	task, err := NewOrderStatusChangedTask(OrderStatusChangedPayload{
		OrderID:          12,
		LeaderID:         3,
		FromStatus:       "pickup",
		ToStatus:         "completed",
		CommissionAmount: "30.00",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskOrderStatusChanged {
		t.Fatalf("task type want %s got %s", TaskOrderStatusChanged, task.Type())
	}
	payload, err := ParseOrderStatusChangedPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.OrderID != 12 || payload.CommissionAmount != "30.00" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseCommissionReconcileEmptyPayload(t *testing.T) {
	payload, err := ParseCommissionReconcilePayload(asynq.NewTask(TaskCommissionReconcile, nil))
	if err != nil {
		t.Fatalf("empty payload should parse: %v", err)
	}
	if payload.LeaderID != 0 {
		t.Fatalf("empty payload should mean all leaders")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Port: 6380, DB: 2})
	if opt.Addr != "127.0.0.1:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
