package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	if cfg.Coupon.CodePrefix != "FU" {
		t.Errorf("Expected prefix FU, got %q", cfg.Coupon.CodePrefix)
	}
	if cfg.Coupon.ExpiresIn != 365*24*time.Hour {
		t.Errorf("Expected 365 day expiry, got %s", cfg.Coupon.ExpiresIn)
	}
	if cfg.Coupon.MaxCodeAttempts != 10 {
		t.Errorf("Expected 10 attempts, got %d", cfg.Coupon.MaxCodeAttempts)
	}
	if cfg.Coupon.DefaultCurrency != "USD" {
		t.Errorf("Expected USD, got %q", cfg.Coupon.DefaultCurrency)
	}
	if cfg.Storage.Driver != DriverMongoDB {
		t.Errorf("Expected mongodb driver, got %q", cfg.Storage.Driver)
	}
	if !cfg.MongoDB.Transactions {
		t.Error("Expected transactions enabled by default")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("COUPON_CODEPREFIX", "GV")
	t.Setenv("COUPON_EXPIRESIN", "720h")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MONGODB_TRANSACTIONS", "false")
	t.Setenv("MAIL_PORT", "2525")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if cfg.Coupon.CodePrefix != "GV" {
		t.Errorf("Expected prefix GV, got %q", cfg.Coupon.CodePrefix)
	}
	if cfg.Coupon.ExpiresIn != 720*time.Hour {
		t.Errorf("Expected 720h expiry, got %s", cfg.Coupon.ExpiresIn)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("Expected memory driver, got %q", cfg.Storage.Driver)
	}
	if cfg.MongoDB.Transactions {
		t.Error("Expected transactions disabled")
	}
	if cfg.Mail.Port != 2525 {
		t.Errorf("Expected mail port 2525, got %d", cfg.Mail.Port)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("coupon:\n  codeprefix: CF\n  defaultcurrency: EUR\nloglevel: debug\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if cfg.Coupon.CodePrefix != "CF" || cfg.Coupon.DefaultCurrency != "EUR" {
		t.Errorf("Expected file values, got %+v", cfg.Coupon)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %q", cfg.LogLevel)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Expected an error for an unknown storage driver, but got nil")
	}
}
