package address

import (
	"context"

	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, a *domain.Address) error
	FindByID(ctx context.Context, id string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	ClearDefault(ctx context.Context, userID string) error
	Update(ctx context.Context, a *domain.Address) error
	Delete(ctx context.Context, id string) error
}

type UserChecker interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type IDGenerator func() string

type Service struct {
	repo   Repository
	users  UserChecker
	cache  *cache.Entity[domain.Address]
	newID  IDGenerator
	logger *zap.Logger
}

func NewService(repo Repository, users UserChecker, entityCache *cache.Entity[domain.Address], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		cache:  entityCache,
		newID:  newID,
		logger: logger,
	}
}

type Input struct {
	Street    string
	City      string
	State     string
	Zip       string
	Country   string
	IsDefault bool
}

func (s *Service) Create(ctx context.Context, userID string, input Input) (*domain.Address, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	// A new default displaces the previous one.
	if input.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	a := &domain.Address{
		ID:        s.newID(),
		UserID:    userID,
		Street:    input.Street,
		City:      input.City,
		State:     input.State,
		Zip:       input.Zip,
		Country:   input.Country,
		IsDefault: input.IsDefault,
	}

	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*created, cache.IDKey(created.ID))
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *a)
	return a, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	key := cache.ListKey("user", userID)
	if cached, ok := s.cache.GetList(key); ok {
		return cached, nil
	}

	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(key, addresses)
	return addresses, nil
}

type UpdateInput struct {
	Street    *string
	City      *string
	State     *string
	Zip       *string
	Country   *string
	IsDefault *bool
}

func (s *Service) Update(ctx context.Context, id, requesterID string, input UpdateInput) (*domain.Address, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != requesterID {
		return nil, apperrors.NewForbiddenError("address belongs to another user")
	}

	if input.Street != nil {
		a.Street = *input.Street
	}
	if input.City != nil {
		a.City = *input.City
	}
	if input.State != nil {
		a.State = *input.State
	}
	if input.Zip != nil {
		a.Zip = *input.Zip
	}
	if input.Country != nil {
		a.Country = *input.Country
	}
	if input.IsDefault != nil {
		if *input.IsDefault && !a.IsDefault {
			if err := s.repo.ClearDefault(ctx, a.UserID); err != nil {
				return nil, err
			}
		}
		a.IsDefault = *input.IsDefault
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*updated, cache.IDKey(updated.ID))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != requesterID {
		return apperrors.NewForbiddenError("address belongs to another user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("address deleted", zap.String("addressId", id))
	return nil
}
