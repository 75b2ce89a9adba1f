package product

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type mockRepository struct {
	InsertFunc          func(ctx context.Context, p *domain.Product) error
	FindByIDFunc        func(ctx context.Context, id string) (*domain.Product, error)
	FindBySKUFunc       func(ctx context.Context, sku string) (*domain.Product, error)
	ListFunc            func(ctx context.Context, limit, offset int) ([]domain.Product, error)
	ListByCategoryFunc  func(ctx context.Context, categoryID string, limit, offset int) ([]domain.Product, error)
	CountFunc           func(ctx context.Context) (int64, error)
	CountByCategoryFunc func(ctx context.Context, categoryID string) (int64, error)
	UpdateFunc          func(ctx context.Context, p *domain.Product) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *mockRepository) Insert(ctx context.Context, p *domain.Product) error {
	return m.InsertFunc(ctx, p)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return m.FindBySKUFunc(ctx, sku)
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	return m.ListFunc(ctx, limit, offset)
}

func (m *mockRepository) ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]domain.Product, error) {
	return m.ListByCategoryFunc(ctx, categoryID, limit, offset)
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}

func (m *mockRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return m.CountByCategoryFunc(ctx, categoryID)
}

func (m *mockRepository) Update(ctx context.Context, p *domain.Product) error {
	return m.UpdateFunc(ctx, p)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type mockCategoryRepository struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.Category, error)
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return m.FindByIDFunc(ctx, id)
}

func newTestService(repo Repository) *Service {
	categories := &mockCategoryRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Category, error) {
			return &domain.Category{ID: id}, nil
		},
	}
	return NewService(repo, categories, cache.NewEntity[domain.Product](16, time.Hour), func() string { return "p-1" }, zap.NewNop())
}

func TestCreate_DuplicateSKU(t *testing.T) {
	repo := &mockRepository{
		FindBySKUFunc: func(ctx context.Context, sku string) (*domain.Product, error) {
			return &domain.Product{ID: "existing", SKU: sku}, nil
		},
	}

	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{SKU: "DUP", Name: "x", Price: decimal.Zero})
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

// After a SKU change, a lookup by the old SKU must fall through to the
// store (and miss), while a lookup by the new SKU hits the refreshed
// cache — without waiting for the TTL.
func TestUpdate_SKUChangeCacheCoherence(t *testing.T) {
	stored := domain.Product{ID: "p-1", SKU: "OLD", Name: "widget", Price: decimal.RequireFromString("10.00")}
	storeLookups := 0

	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Product, error) {
			out := stored
			return &out, nil
		},
		FindBySKUFunc: func(ctx context.Context, sku string) (*domain.Product, error) {
			storeLookups++
			if sku == stored.SKU {
				out := stored
				return &out, nil
			}
			return nil, apperrors.NewNotFoundError("product", "sku", sku)
		},
		UpdateFunc: func(ctx context.Context, p *domain.Product) error {
			stored = *p
			return nil
		},
	}

	svc := newTestService(repo)

	// Warm the cache under the old SKU.
	_, err := svc.GetBySKU(context.Background(), "OLD")
	require.NoError(t, err)

	newSKU := "NEW"
	_, err = svc.Update(context.Background(), "p-1", UpdateInput{SKU: &newSKU})
	require.NoError(t, err)

	// Old SKU: cache must miss, store must also miss.
	_, err = svc.GetBySKU(context.Background(), "OLD")
	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	// New SKU: served from the refreshed cache, no extra store lookup.
	before := storeLookups
	p, err := svc.GetBySKU(context.Background(), "NEW")
	require.NoError(t, err)
	assert.Equal(t, "NEW", p.SKU)
	assert.Equal(t, before, storeLookups)
}

func TestUpdate_NegativePriceRejected(t *testing.T) {
	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Product, error) {
			return &domain.Product{ID: id, SKU: "A", Price: decimal.Zero}, nil
		},
	}

	svc := newTestService(repo)

	bad := decimal.RequireFromString("-1")
	_, err := svc.Update(context.Background(), "p-1", UpdateInput{Price: &bad})
	require.Error(t, err)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "price", ve.Details[0].Field)
}

func TestList_CachesPerPage(t *testing.T) {
	listCalls := 0
	repo := &mockRepository{
		CountFunc: func(ctx context.Context) (int64, error) {
			return 2, nil
		},
		ListFunc: func(ctx context.Context, limit, offset int) ([]domain.Product, error) {
			listCalls++
			return []domain.Product{{ID: "a"}, {ID: "b"}}, nil
		},
	}

	svc := newTestService(repo)

	_, total, err := svc.List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = svc.List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, listCalls, "second page read must hit the cache")
}
