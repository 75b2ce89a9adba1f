package wishlist

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, item *domain.WishlistItem) error
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*domain.WishlistItem, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.WishlistItem, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	DeleteByUserAndProduct(ctx context.Context, userID, productID string) error
}

type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

type IDGenerator func() string

// Entry is a wishlist item hydrated with its product.
type Entry struct {
	Item    domain.WishlistItem
	Product domain.Product
}

type Service struct {
	repo     Repository
	products ProductFinder
	cache    *cache.Entity[Entry]
	newID    IDGenerator
	logger   *zap.Logger
}

func NewService(repo Repository, products ProductFinder, entityCache *cache.Entity[Entry], newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    entityCache,
		newID:    newID,
		logger:   logger,
	}
}

func (s *Service) Add(ctx context.Context, userID, productID string) (*Entry, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUserAndProduct(ctx, userID, productID); err == nil {
		return nil, apperrors.NewConflictError("product " + productID + " is already in the wishlist")
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	item := &domain.WishlistItem{
		ID:        s.newID(),
		UserID:    userID,
		ProductID: productID,
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	entry := Entry{Item: *created, Product: *p}
	s.cache.Refresh(entry, cache.IDKey(created.ID))
	return &entry, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, int64, error) {
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("user", userID, strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	items, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			// Product removed from the catalog; drop the stale entry from
			// the listing rather than failing the whole request.
			if _, ok := apperrors.IsNotFoundError(err); ok {
				continue
			}
			return nil, 0, err
		}
		entries = append(entries, Entry{Item: item, Product: *p})
	}

	s.cache.SetList(key, entries)
	return entries, total, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	if err := s.repo.DeleteByUserAndProduct(ctx, userID, productID); err != nil {
		return err
	}

	s.cache.Invalidate()
	s.logger.Info("wishlist item removed",
		zap.String("userId", userID),
		zap.String("productId", productID))
	return nil
}
