package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/retailpoint/checkout-api/internal/store"
)

// Repo is the slice of the product store the catalog service needs.
type Repo interface {
	GetAll(ctx context.Context) ([]store.Product, error)
	GetByID(ctx context.Context, id int64) (store.Product, error)
	Create(ctx context.Context, p store.Product) (store.Product, error)
	Update(ctx context.Context, p store.Product) error
	Delete(ctx context.Context, id int64) error
	UpdateQuantity(ctx context.Context, id int64, quantity int32) error
}

// Service is catalog CRUD with a read-through list cache. Writes invalidate
// the cache; a cache outage degrades to plain reads.
type Service struct {
	Repo   Repo
	Cache  *Cache
	Logger zerolog.Logger
}

func (s *Service) List(ctx context.Context) ([]store.Product, error) {
	var cached []store.Product
	hit, err := s.Cache.getJSON(ctx, productsCacheKey, &cached)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("catalog cache read failed")
	}
	if hit {
		return cached, nil
	}

	products, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.setJSON(ctx, productsCacheKey, products); err != nil {
		s.Logger.Warn().Err(err).Msg("catalog cache write failed")
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (store.Product, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p store.Product) (store.Product, error) {
	created, err := s.Repo.Create(ctx, p)
	if err != nil {
		return store.Product{}, err
	}
	s.Cache.invalidate(ctx, productsCacheKey)
	return created, nil
}

func (s *Service) Update(ctx context.Context, p store.Product) error {
	if err := s.Repo.Update(ctx, p); err != nil {
		return err
	}
	s.Cache.invalidate(ctx, productsCacheKey)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.invalidate(ctx, productsCacheKey)
	return nil
}

// InvalidateList drops the cached product listing. Called after inventory
// commits so the public listing does not serve stale stock for a full TTL.
func (s *Service) InvalidateList(ctx context.Context) {
	s.Cache.invalidate(ctx, productsCacheKey)
}

func (s *Service) SetQuantity(ctx context.Context, id int64, quantity int32) error {
	if err := s.Repo.UpdateQuantity(ctx, id, quantity); err != nil {
		return err
	}
	s.Cache.invalidate(ctx, productsCacheKey)
	return nil
}
