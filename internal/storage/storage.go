// Package storage opens the repositories for the configured driver.
package storage

import (
	"context"
	"fmt"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/fundraiser-awards-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/fundraiser-awards-backend/pkg/mongodb"
	"github.com/sirupsen/logrus"
)

// Storage bundles the repositories the services depend on
type Storage struct {
	Coupons     repositories.CouponRepository
	Awards      repositories.AwardRepository
	Fundraisers repositories.FundraiserRepository
	Users       repositories.UserRepository
	// Transactor is nil when transactions are disabled; announcements then
	// fall back to compensation.
	Transactor repositories.Transactor

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects the configured driver
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongoDB:
		return openMongo(ctx, cfg)
	case config.DriverMemory:
		logrus.Warn("Storage: Using the in-memory driver, data is lost on exit")
		return OpenMemory(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config) (*Storage, error) {
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.MongoDB.Database)

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	s := &Storage{
		Coupons:     mongorepo.NewCouponRepository(db),
		Awards:      mongorepo.NewAwardRepository(db),
		Fundraisers: mongorepo.NewFundraiserRepository(db),
		Users:       mongorepo.NewUserRepository(db),
		ping:        client.Ping,
		close:       client.Disconnect,
	}
	if cfg.MongoDB.Transactions {
		s.Transactor = mongorepo.NewTransactor(client.Mongo())
	} else {
		logrus.Warn("Storage: MongoDB transactions disabled, award announcements use compensation")
	}

	logrus.WithFields(logrus.Fields{
		"database":     cfg.MongoDB.Database,
		"transactions": cfg.MongoDB.Transactions,
	}).Info("Storage: Connected to MongoDB")
	return s, nil
}

// OpenMemory wraps an in-memory store
func OpenMemory(store *memory.Store) *Storage {
	return &Storage{
		Coupons:     memory.NewCouponRepository(store),
		Awards:      memory.NewAwardRepository(store),
		Fundraisers: memory.NewFundraiserRepository(store),
		Users:       memory.NewUserRepository(store),
		Transactor:  memory.NewTransactor(store),
	}
}

// Ping reports whether the backing store is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the connection, if any
func (s *Storage) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
