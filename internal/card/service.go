package card

import (
	"context"

	"github.com/retailpoint/checkout-api/internal/store"
)

// Repo is the slice of the card store the service needs.
type Repo interface {
	List(ctx context.Context) ([]store.DiscountCard, error)
	GetByID(ctx context.Context, id int64) (store.DiscountCard, error)
	Create(ctx context.Context, c store.DiscountCard) (store.DiscountCard, error)
	Update(ctx context.Context, c store.DiscountCard) error
	Delete(ctx context.Context, id int64) error
}

// Service is discount card CRUD. Cards are few and read rarely outside
// checkout, so there is no cache in front of them.
type Service struct {
	Repo Repo
}

func (s *Service) List(ctx context.Context) ([]store.DiscountCard, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (store.DiscountCard, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, c store.DiscountCard) (store.DiscountCard, error) {
	return s.Repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, c store.DiscountCard) error {
	return s.Repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}
