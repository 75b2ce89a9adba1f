package user

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

type IDGenerator func() string

type Service struct {
	repo   Repository
	cache  *cache.Entity[domain.User]
	newID  IDGenerator
	logger *zap.Logger
}

func NewService(repo Repository, entityCache *cache.Entity[domain.User], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  entityCache,
		newID:  newID,
		logger: logger,
	}
}

// Register creates a user with a bcrypt password hash. A duplicate email
// is surfaced as a conflict before the insert is attempted.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string, phone *string) (*domain.User, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("user with email " + email + " already exists")
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("hashing password", err)
	}

	u := &domain.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Role:         domain.RoleCustomer,
	}

	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*created, cache.IDKey(created.ID), cache.EmailKey(created.Email))
	s.logger.Info("user registered", zap.String("userId", created.ID))

	return created, nil
}

// Authenticate verifies the bcrypt hash and returns the user. Both an
// unknown email and a wrong password yield the same unauthorized error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *u)
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if cached, ok := s.cache.Get(cache.EmailKey(email)); ok {
		return &cached, nil
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.EmailKey(email), *u)
	return u, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	key := cache.ListKey("all", strconv.Itoa(limit), strconv.Itoa(offset))

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, users)
	return users, total, nil
}

type UpdateInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Phone     *string
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != u.Email {
		if _, err := s.repo.FindByEmail(ctx, *input.Email); err == nil {
			return nil, apperrors.NewConflictError("user with email " + *input.Email + " already exists")
		} else if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		u.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.NewInternalError("hashing password", err)
		}
		u.PasswordHash = string(hash)
	}
	if input.FirstName != nil {
		u.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		u.LastName = *input.LastName
	}
	if input.Phone != nil {
		u.Phone = input.Phone
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*updated, cache.IDKey(updated.ID), cache.EmailKey(updated.Email))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("user deleted", zap.String("userId", id))
	return nil
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
