package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/api/routes"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/handlers"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/logging"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/services"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/storage"
	"github.com/ArowuTest/fundraiser-awards-backend/pkg/mailer"
	"github.com/gin-gonic/gin"
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
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open storage")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logrus.WithError(err).Error("Error disconnecting from storage")
		}
	}()

	notifier := services.NewEmailNotificationService(mailer.New(cfg.Mail))
	couponService := services.NewCouponService(cfg.Coupon, store.Coupons, store.Awards, store.Fundraisers, notifier)
	selectionService := services.NewSelectionService(store.Coupons)
	awardService := services.NewAwardService(store.Coupons, store.Awards, store.Fundraisers, store.Users, store.Transactor, notifier)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		HealthHandler:    handlers.NewHealthHandler(store.Ping),
		CouponHandler:    handlers.NewCouponHandler(couponService),
		SelectionHandler: handlers.NewSelectionHandler(selectionService),
		AwardHandler:     handlers.NewAwardHandler(awardService),
	})

	if cfg.Coupon.SweepInterval > 0 {
		go runSweeper(ctx, couponService, cfg.Coupon.SweepInterval)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
		return
	}
	logrus.Info("Server exiting")
}

// runSweeper expires overdue coupons every interval until ctx is done
func runSweeper(ctx context.Context, couponService services.CouponService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logrus.WithField("interval", interval.String()).Info("Sweeper: Started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := couponService.SweepExpired(ctx); err != nil {
				logrus.WithError(err).Error("Sweeper: Sweep failed")
			}
		}
	}
}
