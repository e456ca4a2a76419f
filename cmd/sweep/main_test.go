package main

import (
	"context"
	"testing"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetLevel(logrus.PanicLevel)
}

func TestRun(t *testing.T) {
	t.Run("memory driver sweeps nothing", func(t *testing.T) {
		n, err := run(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}})
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if n != 0 {
			t.Errorf("Expected 0 expired, got %d", n)
		}
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		if _, err := run(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "cassandra"}}); err == nil {
			t.Error("Expected an error so the process exits non-zero")
		}
	})
}
