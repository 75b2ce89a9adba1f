package review

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, rv *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
	Update(ctx context.Context, rv *domain.Review) error
	Delete(ctx context.Context, id string) error
}

type ProductChecker interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

type IDGenerator func() string

type Service struct {
	repo     Repository
	products ProductChecker
	cache    *cache.Entity[domain.Review]
	newID    IDGenerator
	logger   *zap.Logger
}

func NewService(repo Repository, products ProductChecker, entityCache *cache.Entity[domain.Review], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    entityCache,
		newID:    newID,
		logger:   logger,
	}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func (s *Service) Create(ctx context.Context, userID, productID string, rating int, comment string) (*domain.Review, error) {
	if !validRating(rating) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "rating",
			Message:       "rating must be between 1 and 5",
			RejectedValue: rating,
		})
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	// One review per user per product.
	if _, err := s.repo.FindByUserAndProduct(ctx, userID, productID); err == nil {
		return nil, apperrors.NewConflictError("user already reviewed product " + productID)
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	rv := &domain.Review{
		ID:        s.newID(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}

	if err := s.repo.Insert(ctx, rv); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, rv.ID)
	if err != nil {
		return nil, err
	}

	s.cache.Refresh(*created, cache.IDKey(created.ID))
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *rv)
	return rv, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, int64, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("product", productID, strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	reviews, err := s.repo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, reviews)
	return reviews, total, nil
}

func (s *Service) AverageRating(ctx context.Context, productID string) (float64, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return 0, err
	}
	return s.repo.AverageRating(ctx, productID)
}

func (s *Service) Update(ctx context.Context, id, requesterID string, rating *int, comment *string) (*domain.Review, error) {
	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != requesterID {
		return nil, apperrors.NewForbiddenError("review belongs to another user")
	}

	if rating != nil {
		if !validRating(*rating) {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:         "rating",
				Message:       "rating must be between 1 and 5",
				RejectedValue: *rating,
			})
		}
		rv.Rating = *rating
	}
	if comment != nil {
		rv.Comment = *comment
	}

	if err := s.repo.Update(ctx, rv); err != nil {
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
	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rv.UserID != requesterID {
		return apperrors.NewForbiddenError("review belongs to another user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("review deleted", zap.String("reviewId", id))
	return nil
}
