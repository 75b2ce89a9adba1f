package shipping

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, m *domain.ShippingMethod) error
	FindByID(ctx context.Context, id string) (*domain.ShippingMethod, error)
	FindByName(ctx context.Context, name string) (*domain.ShippingMethod, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ShippingMethod, error)
	Update(ctx context.Context, m *domain.ShippingMethod) error
	Delete(ctx context.Context, id string) error
}

type IDGenerator func() string

type Service struct {
	repo   Repository
	cache  *cache.Entity[domain.ShippingMethod]
	newID  IDGenerator
	logger *zap.Logger
}

func NewService(repo Repository, entityCache *cache.Entity[domain.ShippingMethod], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  entityCache,
		newID:  newID,
		logger: logger,
	}
}

type Input struct {
	Name          string
	Description   string
	Cost          decimal.Decimal
	EstimatedDays int
	IsActive      bool
}

func (s *Service) Create(ctx context.Context, input Input) (*domain.ShippingMethod, error) {
	if input.Cost.IsNegative() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "cost",
			Message:       "cost must not be negative",
			RejectedValue: input.Cost.String(),
		})
	}

	if _, err := s.repo.FindByName(ctx, input.Name); err == nil {
		return nil, apperrors.NewConflictError("shipping method with name " + input.Name + " already exists")
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	m := &domain.ShippingMethod{
		ID:            s.newID(),
		Name:          input.Name,
		Description:   input.Description,
		Cost:          input.Cost,
		EstimatedDays: input.EstimatedDays,
		IsActive:      input.IsActive,
	}

	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*created, cache.IDKey(created.ID))
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.ShippingMethod, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *m)
	return m, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.ShippingMethod, error) {
	key := cache.ListKey("all")
	if activeOnly {
		key = cache.ListKey("active")
	}
	if cached, ok := s.cache.GetList(key); ok {
		return cached, nil
	}

	methods, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(key, methods)
	return methods, nil
}

type UpdateInput struct {
	Name          *string
	Description   *string
	Cost          *decimal.Decimal
	EstimatedDays *int
	IsActive      *bool
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.ShippingMethod, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != m.Name {
		if _, err := s.repo.FindByName(ctx, *input.Name); err == nil {
			return nil, apperrors.NewConflictError("shipping method with name " + *input.Name + " already exists")
		} else if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		m.Name = *input.Name
	}
	if input.Description != nil {
		m.Description = *input.Description
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:         "cost",
				Message:       "cost must not be negative",
				RejectedValue: input.Cost.String(),
			})
		}
		m.Cost = *input.Cost
	}
	if input.EstimatedDays != nil {
		m.EstimatedDays = *input.EstimatedDays
	}
	if input.IsActive != nil {
		m.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*updated, cache.IDKey(updated.ID))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("shipping method deleted", zap.String("shippingMethodId", id))
	return nil
}
