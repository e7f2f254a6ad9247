package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	setEnv(t, "GATEWAY_BASE_URL", "https://gateway.example.com")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadRequiresGatewayBaseURL(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/ordersync?parseTime=true")
	unsetEnv(t, "GATEWAY_BASE_URL")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing GATEWAY_BASE_URL")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/ordersync?parseTime=true")
	setEnv(t, "GATEWAY_BASE_URL", "https://gateway.example.com")
	setEnv(t, "GATEWAY_SPACE_ID", "405")
	setEnv(t, "GATEWAY_API_USER_ID", "512")
	setEnv(t, "GATEWAY_API_KEY", "secret")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "SYNC_LOCK_ACQUIRE_TIMEOUT_SECONDS", "3")
	setEnv(t, "SYNC_RECONCILE_STALE_AFTER_MINUTES", "13")
	setEnv(t, "SYNC_JOB_BATCH_SIZE", "99")
	setEnv(t, "SYNC_REFUNDS_BY_AMOUNT_ENABLED", "true")
	unsetEnv(t, "REDIS_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "order-sync-service" {
		t.Errorf("unexpected service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Errorf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 {
		t.Errorf("unexpected max open conns: %d", cfg.MySQL.MaxOpenConns)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Errorf("unexpected conn max lifetime: %s", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Gateway.SpaceID != 405 {
		t.Errorf("unexpected space id: %d", cfg.Gateway.SpaceID)
	}
	if cfg.Gateway.APIUserID != 512 {
		t.Errorf("unexpected api user id: %d", cfg.Gateway.APIUserID)
	}
	if cfg.Gateway.HTTPTimeout != 10*time.Second {
		t.Errorf("unexpected gateway timeout: %s", cfg.Gateway.HTTPTimeout)
	}
	if cfg.Sync.LockAcquireTimeout != 3*time.Second {
		t.Errorf("unexpected lock acquire timeout: %s", cfg.Sync.LockAcquireTimeout)
	}
	if cfg.Sync.ReconcileStaleAfter != 13*time.Minute {
		t.Errorf("unexpected reconcile stale after: %s", cfg.Sync.ReconcileStaleAfter)
	}
	if cfg.Sync.JobBatchSize != 99 {
		t.Errorf("unexpected job batch size: %d", cfg.Sync.JobBatchSize)
	}
	if !cfg.Sync.RefundsByAmountEnabled {
		t.Error("expected refunds by amount to be enabled")
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("expected empty redis addr, got %s", cfg.Redis.Addr)
	}
}
