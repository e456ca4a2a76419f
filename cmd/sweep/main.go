// Command sweep expires overdue coupons once and exits. Run it from an
// external scheduler when the in-process sweeper is disabled. A failed
// sweep exits with status 1.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/logging"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/services"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load(".")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	n, err := run(ctx, cfg)
	cancel()
	if err != nil {
		logrus.WithError(err).Fatal("Sweep failed")
	}
	logrus.WithField("expired", n).Info("Sweep finished")
}

// run opens storage, sweeps once and closes storage again
func run(ctx context.Context, cfg *config.Config) (int64, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("Error disconnecting from storage")
		}
	}()

	// the sweep never sends mail
	couponService := services.NewCouponService(cfg.Coupon, store.Coupons, store.Awards, store.Fundraisers, nil)
	return couponService.SweepExpired(ctx)
}
