package payment

import (
	"context"

	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, m *domain.PaymentMethod) error
	FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	ClearDefault(ctx context.Context, userID string) error
	Update(ctx context.Context, m *domain.PaymentMethod) error
	Delete(ctx context.Context, id string) error
}

type UserChecker interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type IDGenerator func() string

type Service struct {
	repo   Repository
	users  UserChecker
	cache  *cache.Entity[domain.PaymentMethod]
	newID  IDGenerator
	logger *zap.Logger
}

func NewService(repo Repository, users UserChecker, entityCache *cache.Entity[domain.PaymentMethod], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		cache:  entityCache,
		newID:  newID,
		logger: logger,
	}
}

type Input struct {
	Kind      string
	Label     string
	Token     string
	IsDefault bool
}

func (s *Service) Create(ctx context.Context, userID string, input Input) (*domain.PaymentMethod, error) {
	if !domain.ValidPaymentKind(input.Kind) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "kind",
			Message:       "kind must be one of card, paypal, bank",
			RejectedValue: input.Kind,
		})
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	m := &domain.PaymentMethod{
		ID:        s.newID(),
		UserID:    userID,
		Kind:      input.Kind,
		Label:     input.Label,
		Token:     input.Token,
		IsDefault: input.IsDefault,
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

func (s *Service) GetByID(ctx context.Context, id, requesterID string) (*domain.PaymentMethod, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		if cached.UserID != requesterID {
			return nil, apperrors.NewForbiddenError("payment method belongs to another user")
		}
		return &cached, nil
	}

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != requesterID {
		return nil, apperrors.NewForbiddenError("payment method belongs to another user")
	}

	s.cache.Set(cache.IDKey(id), *m)
	return m, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	key := cache.ListKey("user", userID)
	if cached, ok := s.cache.GetList(key); ok {
		return cached, nil
	}

	methods, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(key, methods)
	return methods, nil
}

type UpdateInput struct {
	Label     *string
	IsDefault *bool
}

func (s *Service) Update(ctx context.Context, id, requesterID string, input UpdateInput) (*domain.PaymentMethod, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != requesterID {
		return nil, apperrors.NewForbiddenError("payment method belongs to another user")
	}

	if input.Label != nil {
		m.Label = *input.Label
	}
	if input.IsDefault != nil {
		if *input.IsDefault && !m.IsDefault {
			if err := s.repo.ClearDefault(ctx, m.UserID); err != nil {
				return nil, err
			}
		}
		m.IsDefault = *input.IsDefault
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

func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != requesterID {
		return apperrors.NewForbiddenError("payment method belongs to another user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("payment method deleted", zap.String("paymentMethodId", id))
	return nil
}
