package memory

import (
	"context"
	"sync"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// Store holds every collection of the in-memory driver. Writes made outside
// a transaction wait for any running transaction to finish, so a rollback
// never discards them.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	coupons     map[primitive.ObjectID]models.Coupon
	awards      map[primitive.ObjectID]models.Award
	fundraisers map[primitive.ObjectID]models.Fundraiser
	users       map[primitive.ObjectID]models.User
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		coupons:     map[primitive.ObjectID]models.Coupon{},
		awards:      map[primitive.ObjectID]models.Award{},
		fundraisers: map[primitive.ObjectID]models.Fundraiser{},
		users:       map[primitive.ObjectID]models.User{},
	}
}

// lock acquires the store for one repository call and returns the unlock func.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// AddFundraiser seeds a fundraiser. The fundraiser module owns these records.
func (s *Store) AddFundraiser(f models.Fundraiser) models.Fundraiser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.fundraisers[f.ID] = f
	return f
}

// AddUser seeds a user. The user module owns these records.
func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = u
	return u
}

var _ repositories.Transactor = (*Transactor)(nil)

// Transactor serializes transactions on a Store and restores a snapshot of
// coupons and awards when fn fails.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor for the store
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// WithTransaction runs fn with exclusive access to the store
func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s := t.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	coupons := cloneMap(s.coupons)
	awards := cloneMap(s.awards)
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.coupons = coupons
		s.awards = awards
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type fundraiserRepository struct{ store *Store }

// NewFundraiserRepository creates a FundraiserRepository backed by the store
func NewFundraiserRepository(store *Store) repositories.FundraiserRepository {
	return &fundraiserRepository{store: store}
}

func (r *fundraiserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fundraiser, error) {
	defer r.store.lock(ctx)()
	f, ok := r.store.fundraisers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &f, nil
}

type userRepository struct{ store *Store }

// NewUserRepository creates a UserRepository backed by the store
func NewUserRepository(store *Store) repositories.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer r.store.lock(ctx)()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}
