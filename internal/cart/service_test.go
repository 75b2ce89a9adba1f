package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

// memoryRepository keeps carts in maps so service flows run end to end.
type memoryRepository struct {
	carts map[string]*domain.Cart
	items map[string][]domain.CartItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		carts: map[string]*domain.Cart{},
		items: map[string][]domain.CartItem{},
	}
}

func (r *memoryRepository) InsertCart(ctx context.Context, c *domain.Cart) error {
	copied := *c
	copied.CreatedAt = time.Now()
	r.carts[c.UserID] = &copied
	return nil
}

func (r *memoryRepository) FindCartByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("cart", "userId", userID)
	}
	copied := *c
	copied.Items = r.items[c.ID]
	return &copied, nil
}

func (r *memoryRepository) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	return r.items[cartID], nil
}

func (r *memoryRepository) FindItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error) {
	for _, item := range r.items[cartID] {
		if item.ProductID == productID {
			copied := item
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("cart item", "productId", productID)
}

func (r *memoryRepository) InsertItem(ctx context.Context, item *domain.CartItem) error {
	r.items[item.CartID] = append(r.items[item.CartID], *item)
	return nil
}

func (r *memoryRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	for cartID, items := range r.items {
		for i := range items {
			if items[i].ID == itemID {
				r.items[cartID][i].Quantity = quantity
				return nil
			}
		}
	}
	return apperrors.NewNotFoundError("cart item", "id", itemID)
}

func (r *memoryRepository) DeleteItem(ctx context.Context, itemID string) error {
	for cartID, items := range r.items {
		for i := range items {
			if items[i].ID == itemID {
				r.items[cartID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return apperrors.NewNotFoundError("cart item", "id", itemID)
}

func (r *memoryRepository) DeleteItemsByCart(ctx context.Context, cartID string) error {
	delete(r.items, cartID)
	return nil
}

type stubProductFinder struct {
	products map[string]*domain.Product
}

func (f *stubProductFinder) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("product", "id", id)
	}
	return p, nil
}

func newTestService() (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	products := &stubProductFinder{products: map[string]*domain.Product{
		"p1": {ID: "p1", SKU: "SKU-1", Name: "widget", Price: decimal.RequireFromString("10.00"), Stock: 5},
		"p2": {ID: "p2", SKU: "SKU-2", Name: "gadget", Price: decimal.RequireFromString("2.50"), Stock: 3},
	}}

	nextID := 0
	newID := func() string {
		nextID++
		return fmt.Sprintf("id-%d", nextID)
	}

	return NewService(repo, products, newID, zap.NewNop()), repo
}

func TestGet_CreatesCartLazily(t *testing.T) {
	svc, repo := newTestService()

	view, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)

	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())
	assert.Len(t, repo.carts, 1, "cart persisted on first access")
}

func TestAddItem_MergesQuantities(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	view, err := svc.AddItem(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1, "same product stays one line")
	assert.Equal(t, 5, view.Lines[0].Item.Quantity)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("50.00")), "total %s", view.Total)
}

func TestAddItem_ComputesTotalsAcrossProducts(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)
	view, err := svc.AddItem(context.Background(), "u1", "p2", 2)
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	// 1×10.00 + 2×2.50 = 15.00
	assert.True(t, view.Total.Equal(decimal.RequireFromString("15.00")), "total %s", view.Total)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "nope", 1)
	require.Error(t, err)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestAddItem_NonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 0)
	require.Error(t, err)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestUpdateItem_ZeroQuantityRemovesLine(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	view, err := svc.UpdateItem(context.Background(), "u1", "p1", 0)
	require.NoError(t, err)

	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())
}

func TestUpdateItem_SetsQuantity(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	view, err := svc.UpdateItem(context.Background(), "u1", "p1", 4)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, 4, view.Lines[0].Item.Quantity)
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "u1", "p2", 1)
	require.NoError(t, err)

	view, err := svc.RemoveItem(context.Background(), "u1", "p1")
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, "p2", view.Lines[0].Product.ID)
}

func TestClear(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "u1"))

	view, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, view.Lines, "another user's cart stays empty")
}
