package repositories

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsWriteConflict(t *testing.T) {
	writeConflict := mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{"TransientTransactionError"}}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"labeled command error", writeConflict, true},
		{"wrapped labeled error", fmt.Errorf("failed to update coupon status: %w", writeConflict), true},
		{"sentinel", fmt.Errorf("%w: gave up", ErrWriteConflict), true},
		{"unlabeled command error", mongo.CommandError{Code: 2, Name: "BadValue"}, false},
		{"commit result unknown", mongo.CommandError{Code: 50, Labels: []string{"UnknownTransactionCommitResult"}}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWriteConflict(tt.err); got != tt.want {
				t.Errorf("IsWriteConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}
