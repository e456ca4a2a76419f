package services

import (
	"errors"
	"fmt"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidState            = errors.New("invalid state")
	ErrNoEligibleDonors        = errors.New("no eligible donors")
	ErrCodeGenerationExhausted = errors.New("coupon code generation exhausted")
	ErrTransactionFailed       = errors.New("transaction failed")
	// ErrNotificationFailed is only returned by operations whose whole
	// purpose is sending, such as a resend. Issuance and announcement log
	// send failures instead.
	ErrNotificationFailed = errors.New("notification failed")
)

// notFound translates a repository miss into ErrNotFound and wraps other
// storage errors.
func notFound(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
