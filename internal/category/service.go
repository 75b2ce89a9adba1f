package category

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, limit, offset int) ([]domain.Category, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductChecker guards category deletion: a category that still has
// products cannot be removed.
type ProductChecker interface {
	HasProductsInCategory(ctx context.Context, categoryID string) (bool, error)
}

type IDGenerator func() string

type Service struct {
	repo     Repository
	products ProductChecker
	cache    *cache.Entity[domain.Category]
	newID    IDGenerator
	logger   *zap.Logger
}

func NewService(repo Repository, products ProductChecker, entityCache *cache.Entity[domain.Category], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    entityCache,
		newID:    newID,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, apperrors.NewConflictError("category with name " + name + " already exists")
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	c := &domain.Category{
		ID:          s.newID(),
		Name:        name,
		Description: description,
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*created, cache.IDKey(created.ID))
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *c)
	return c, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Category, int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("all", strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	categories, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, categories)
	return categories, total, nil
}

func (s *Service) Update(ctx context.Context, id string, name, description *string) (*domain.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil && *name != c.Name {
		if _, err := s.repo.FindByName(ctx, *name); err == nil {
			return nil, apperrors.NewConflictError("category with name " + *name + " already exists")
		} else if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}

	if err := s.repo.Update(ctx, c); err != nil {
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

	inUse, err := s.products.HasProductsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflictError("category " + id + " still has products")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("category deleted", zap.String("categoryId", id))
	return nil
}
