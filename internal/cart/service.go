package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type Repository interface {
	InsertCart(ctx context.Context, c *domain.Cart) error
	FindCartByUser(ctx context.Context, userID string) (*domain.Cart, error)
	ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
	FindItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error)
	InsertItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	DeleteItemsByCart(ctx context.Context, cartID string) error
}

type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

type IDGenerator func() string

// Line is a cart item hydrated with its product and priced at the
// product's current price.
type Line struct {
	Item      domain.CartItem
	Product   domain.Product
	LineTotal decimal.Decimal
}

// View is the hydrated cart the API serves.
type View struct {
	Cart  domain.Cart
	Lines []Line
	Total decimal.Decimal
}

type Service struct {
	repo     Repository
	products ProductFinder
	newID    IDGenerator
	logger   *zap.Logger
}

// The cart is not cached: it is written on nearly every read path
// (lazy creation, merges) and a stale cart total is worse than the
// extra queries.
func NewService(repo Repository, products ProductFinder, newID IDGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		newID:    newID,
		logger:   logger,
	}
}

// getOrCreate returns the user's cart, creating an empty one on first use.
func (s *Service) getOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.FindCartByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	c = &domain.Cart{
		ID:     s.newID(),
		UserID: userID,
	}
	if err := s.repo.InsertCart(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.FindCartByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, c)
}

func (s *Service) hydrate(ctx context.Context, c *domain.Cart) (*View, error) {
	view := &View{
		Cart:  *c,
		Lines: make([]Line, 0, len(c.Items)),
		Total: decimal.Zero,
	}

	for _, item := range c.Items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				continue
			}
			return nil, err
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, Line{
			Item:      item,
			Product:   *p,
			LineTotal: lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}

	return view, nil
}

// AddItem puts a product in the cart. Adding a product already present
// merges quantities instead of creating a second line.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "quantity",
			Message:       "quantity must be positive",
			RejectedValue: quantity,
		})
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, c.ID, productID)
	if err == nil {
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, err
		}
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		item := &domain.CartItem{
			ID:        s.newID(),
			CartID:    c.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.repo.InsertItem(ctx, item); err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes
// the line.
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, c.ID, productID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*View, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, c.ID, productID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteItemsByCart(ctx, c.ID); err != nil {
		return err
	}

	s.logger.Info("cart cleared", zap.String("userId", userID), zap.String("cartId", c.ID))
	return nil
}
