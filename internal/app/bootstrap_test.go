package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/provider"
)

type stubService struct {
	name     string
	startErr error
	stopped  bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *stubService) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func newAppTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"},
		Database:  config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "app.db"), LogMode: "silent"},
		JWT:       config.JWTConfig{SecretKey: "app-test-secret"},
		Bootstrap: config.BootstrapConfig{AdminUsername: "root", AdminPassword: "Root12345"},
		Commission: config.CommissionConfig{
			DefaultRate: "12.00",
		},
	}
}

func TestEnsureDefaultAdminBindsRole(t *testing.T) {
	cfg := newAppTestConfig(t)
	db, err := OpenDatabase(cfg)
	if err != nil {
		t.Fatalf("open database failed: %v", err)
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	if err := EnsureDefaultAdmin(cfg, container); err != nil {
		t.Fatalf("ensure admin failed: %v", err)
	}
	// 第二次调用不会重复创建
	if err := EnsureDefaultAdmin(cfg, container); err != nil {
		t.Fatalf("ensure admin twice failed: %v", err)
	}

	user, err := container.UserRepo.GetByUsername("root")
	if err != nil || user == nil {
		t.Fatalf("default admin missing: %v", err)
	}
	allowed, err := container.AuthzService.EnforceUser(user.ID, "/api/v1/admin/orders", "GET")
	if err != nil || !allowed {
		t.Fatalf("default admin should reach admin routes, allowed=%v err=%v", allowed, err)
	}
}

func TestBuildRunnerModes(t *testing.T) {
	cfg := newAppTestConfig(t)
	db, err := OpenDatabase(cfg)
	if err != nil {
		t.Fatalf("open database failed: %v", err)
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}

	runner, err := BuildRunner(cfg, container, ModeAll)
	if err != nil {
		t.Fatalf("mode all without queue should still build api: %v", err)
	}
	if names := runner.Names(); len(names) != 1 || names[0] != "api" {
		t.Fatalf("want only api service, got %v", names)
	}
	if _, err := BuildRunner(cfg, container, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
	if _, err := BuildRunner(cfg, container, "bogus"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &stubService{name: "failing", startErr: errors.New("boom")}
	healthy := &stubService{name: "healthy"}
	runner := NewRunner(failing, healthy)

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "failing: boom" {
		t.Fatalf("runner should surface start error, got %v", err)
	}
	if !failing.stopped || !healthy.stopped {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerCancelReturnsNil(t *testing.T) {
	svc := &stubService{name: fmt.Sprintf("svc-%d", time.Now().UnixNano())}
	runner := NewRunner(svc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !svc.stopped {
		t.Fatalf("service should be stopped after cancel")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}
