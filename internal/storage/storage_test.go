package storage

import (
	"context"
	"testing"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories/memory"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetLevel(logrus.PanicLevel)
}

func TestOpen(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		s, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if s.Coupons == nil || s.Awards == nil || s.Fundraisers == nil || s.Users == nil || s.Transactor == nil {
			t.Errorf("Expected every repository to be set, got %+v", s)
		}
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "postgres"}}); err == nil {
			t.Error("Expected an error for an unknown driver")
		}
	})
}

func TestOpenMemorySharesStore(t *testing.T) {
	store := memory.NewStore()
	s := OpenMemory(store)
	f := store.AddFundraiser(models.Fundraiser{Title: "Clean Water"})
	got, err := s.Fundraisers.FindByID(context.Background(), f.ID)
	if err != nil || got.Title != f.Title {
		t.Errorf("Expected fundraiser %q, got %v (%v)", f.Title, got, err)
	}
}
