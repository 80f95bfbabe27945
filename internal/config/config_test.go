package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestSetDefaultsUnmarshal(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database driver want sqlite got %s", cfg.Database.Driver)
	}
	if cfg.Commission.DefaultRate != "12.00" {
		t.Fatalf("default commission rate want 12.00 got %s", cfg.Commission.DefaultRate)
	}
	if cfg.Commission.ReconcileIntervalSeconds != 3600 {
		t.Fatalf("reconcile interval want 3600 got %d", cfg.Commission.ReconcileIntervalSeconds)
	}
	if cfg.Queue.Queues["critical"] != 5 {
		t.Fatalf("critical queue weight want 5 got %d", cfg.Queue.Queues["critical"])
	}
	if cfg.Security.LoginRateLimit.MaxAttempts != 5 {
		t.Fatalf("login max attempts want 5 got %d", cfg.Security.LoginRateLimit.MaxAttempts)
	}
	if cfg.Security.WithdrawalRateLimit.WindowSeconds != 60 || cfg.Security.WithdrawalRateLimit.MaxAttempts != 3 {
		t.Fatalf("unexpected withdrawal rate limit: %+v", cfg.Security.WithdrawalRateLimit)
	}
}

func TestSetDefaultsEnvOverride(t *testing.T) {
	t.Setenv("COMMISSION_DEFAULT_RATE", "15.50")
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.Commission.DefaultRate != "15.50" {
		t.Fatalf("env override want 15.50 got %s", cfg.Commission.DefaultRate)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GB_DOTENV_TEST_KEY=from_file\n"), 0o600); err != nil {
		t.Fatalf("write dotenv failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("GB_DOTENV_TEST_KEY") })

	loadDotEnv(filepath.Join(dir, "missing.env"))
	if got := os.Getenv("GB_DOTENV_TEST_KEY"); got != "" {
		t.Fatalf("missing dotenv should not set env, got %s", got)
	}

	loadDotEnv(path)
	if got := os.Getenv("GB_DOTENV_TEST_KEY"); got != "from_file" {
		t.Fatalf("dotenv value want from_file got %s", got)
	}
}
