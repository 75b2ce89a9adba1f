package product

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]domain.Product, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Category, error)
}

type IDGenerator func() string

type Service struct {
	repo       Repository
	categories CategoryRepository
	cache      *cache.Entity[domain.Product]
	newID      IDGenerator
	logger     *zap.Logger
}

func NewService(repo Repository, categories CategoryRepository, entityCache *cache.Entity[domain.Product], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		cache:      entityCache,
		newID:      newID,
		logger:     logger,
	}
}

type CreateInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *string
	IsActive    bool
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Product, error) {
	if _, err := s.repo.FindBySKU(ctx, input.SKU); err == nil {
		return nil, apperrors.NewConflictError("product with sku " + input.SKU + " already exists")
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	p := &domain.Product{
		ID:          s.newID(),
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		IsActive:    input.IsActive,
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*created, cache.IDKey(created.ID), cache.SKUKey(created.SKU))
	s.logger.Info("product created", zap.String("productId", created.ID), zap.String("sku", created.SKU))

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *p)
	return p, nil
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if cached, ok := s.cache.Get(cache.SKUKey(sku)); ok {
		return &cached, nil
	}

	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.SKUKey(sku), *p)
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Product, int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("all", strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	products, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, products)
	return products, total, nil
}

func (s *Service) ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]domain.Product, int64, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByCategory(ctx, categoryID)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("category", categoryID, strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	products, err := s.repo.ListByCategory(ctx, categoryID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, products)
	return products, total, nil
}

type UpdateInput struct {
	SKU         *string
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *string
	IsActive    *bool
}

// Update replaces the provided fields. A SKU change drops the old sku:
// cache key as part of the bucket refresh, so stale lookups cannot
// outlive the write.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil && *input.SKU != p.SKU {
		if _, err := s.repo.FindBySKU(ctx, *input.SKU); err == nil {
			return nil, apperrors.NewConflictError("product with sku " + *input.SKU + " already exists")
		} else if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		p.SKU = *input.SKU
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:         "price",
				Message:       "price must be non-negative",
				RejectedValue: input.Price.String(),
			})
		}
		p.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:         "stock",
				Message:       "stock must be non-negative",
				RejectedValue: *input.Stock,
			})
		}
		p.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = input.CategoryID
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*updated, cache.IDKey(updated.ID), cache.SKUKey(updated.SKU))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("product deleted", zap.String("productId", id))
	return nil
}

func (s *Service) CountProducts(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// InvalidateCache drops the whole product bucket. The order lifecycle
// calls this after mutating stock inside its own transaction.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
}
