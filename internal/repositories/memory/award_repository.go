package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type awardRepository struct {
	store *Store
}

// NewAwardRepository creates an AwardRepository backed by the store
func NewAwardRepository(store *Store) repositories.AwardRepository {
	return &awardRepository{store: store}
}

func (r *awardRepository) Create(ctx context.Context, award *models.Award) error {
	defer r.store.lock(ctx)()

	for _, a := range r.store.awards {
		if a.CouponID == award.CouponID {
			return repositories.ErrDuplicateAward
		}
	}
	if award.ID.IsZero() {
		award.ID = primitive.NewObjectID()
	}
	if award.CreatedAt.IsZero() {
		award.CreatedAt = time.Now()
	}
	award.UpdatedAt = award.CreatedAt
	r.store.awards[award.ID] = *award
	return nil
}

func (r *awardRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Award, error) {
	defer r.store.lock(ctx)()
	a, ok := r.store.awards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r *awardRepository) FindByCouponID(ctx context.Context, couponID primitive.ObjectID) (*models.Award, error) {
	defer r.store.lock(ctx)()
	for _, a := range r.store.awards {
		if a.CouponID == couponID {
			a := a
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *awardRepository) Find(ctx context.Context, filter models.AwardFilter, page, limit int) ([]*models.Award, error) {
	defer r.store.lock(ctx)()

	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AnnouncedAt.After(matched[j].AnnouncedAt)
	})
	return paginate(matched, page, limit), nil
}

func (r *awardRepository) Count(ctx context.Context, filter models.AwardFilter) (int64, error) {
	defer r.store.lock(ctx)()
	return int64(len(r.matching(filter))), nil
}

func (r *awardRepository) MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	defer r.store.lock(ctx)()

	a, ok := r.store.awards[id]
	if !ok {
		return repositories.ErrNotFound
	}
	sentAt := at
	a.EmailSent = true
	a.EmailSentAt = &sentAt
	a.UpdatedAt = at
	r.store.awards[id] = a
	return nil
}

func (r *awardRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.awards[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.awards, id)
	return nil
}

func (r *awardRepository) matching(f models.AwardFilter) []*models.Award {
	out := []*models.Award{}
	for _, a := range r.store.awards {
		a := a
		if f.FundraiserID != nil && a.FundraiserID != *f.FundraiserID {
			continue
		}
		out = append(out, &a)
	}
	return out
}
