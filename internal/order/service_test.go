package order

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
	"vincula/internal/infrastructure/mysql"
)

// fakeTx satisfies mysql.Tx; the mocks below ignore the transaction and
// operate on fixture state directly.
type fakeTx struct {
	commits   int
	rollbacks int
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rollbacks++
	return nil
}

type mockRepository struct {
	InsertFunc              func(ctx context.Context, tx mysql.Tx, o *domain.Order) error
	FindByIDFunc            func(ctx context.Context, id string) (*domain.Order, error)
	FindByNumberFunc        func(ctx context.Context, number string) (*domain.Order, error)
	FindByIDTxFunc          func(ctx context.Context, tx mysql.Tx, id string) (*domain.Order, error)
	ListFunc                func(ctx context.Context, limit, offset int) ([]domain.Order, error)
	ListByUserFunc          func(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	ListByStatusFunc        func(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error)
	CountFunc               func(ctx context.Context) (int64, error)
	CountByUserFunc         func(ctx context.Context, userID string) (int64, error)
	CountByStatusFunc       func(ctx context.Context, status domain.OrderStatus) (int64, error)
	UpdateStatusFunc        func(ctx context.Context, id string, status domain.OrderStatus) error
	UpdatePaymentStatusFunc func(ctx context.Context, id string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error
	UpdateFieldsFunc        func(ctx context.Context, tx mysql.Tx, o *domain.Order) error
	SetCancelledFunc        func(ctx context.Context, tx mysql.Tx, id string) error
	DeleteFunc              func(ctx context.Context, tx mysql.Tx, id string) error
}

func (m *mockRepository) Insert(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
	return m.InsertFunc(ctx, tx, o)
}
func (m *mockRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return m.FindByNumberFunc(ctx, number)
}
func (m *mockRepository) FindByIDTx(ctx context.Context, tx mysql.Tx, id string) (*domain.Order, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}
func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return m.ListFunc(ctx, limit, offset)
}
func (m *mockRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	return m.ListByUserFunc(ctx, userID, limit, offset)
}
func (m *mockRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error) {
	return m.ListByStatusFunc(ctx, status, limit, offset)
}
func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}
func (m *mockRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return m.CountByUserFunc(ctx, userID)
}
func (m *mockRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	return m.CountByStatusFunc(ctx, status)
}
func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return m.UpdateStatusFunc(ctx, id, status)
}
func (m *mockRepository) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error {
	return m.UpdatePaymentStatusFunc(ctx, id, paymentStatus, status)
}
func (m *mockRepository) UpdateFields(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
	return m.UpdateFieldsFunc(ctx, tx, o)
}
func (m *mockRepository) SetCancelled(ctx context.Context, tx mysql.Tx, id string) error {
	return m.SetCancelledFunc(ctx, tx, id)
}
func (m *mockRepository) Delete(ctx context.Context, tx mysql.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}

type mockItemRepository struct {
	InsertFunc        func(ctx context.Context, tx mysql.Tx, item *domain.OrderItem) error
	ListByOrderFunc   func(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	ListByOrderTxFunc func(ctx context.Context, tx mysql.Tx, orderID string) ([]domain.OrderItem, error)
	DeleteByOrderFunc func(ctx context.Context, tx mysql.Tx, orderID string) error
}

func (m *mockItemRepository) Insert(ctx context.Context, tx mysql.Tx, item *domain.OrderItem) error {
	return m.InsertFunc(ctx, tx, item)
}
func (m *mockItemRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return m.ListByOrderFunc(ctx, orderID)
}
func (m *mockItemRepository) ListByOrderTx(ctx context.Context, tx mysql.Tx, orderID string) ([]domain.OrderItem, error) {
	return m.ListByOrderTxFunc(ctx, tx, orderID)
}
func (m *mockItemRepository) DeleteByOrder(ctx context.Context, tx mysql.Tx, orderID string) error {
	return m.DeleteByOrderFunc(ctx, tx, orderID)
}

type mockProductRepository struct {
	FindByIDTxFunc     func(ctx context.Context, tx mysql.Tx, id string) (*domain.Product, error)
	DecrementStockFunc func(ctx context.Context, tx mysql.Tx, id string, quantity int) (bool, error)
	RestoreStockFunc   func(ctx context.Context, tx mysql.Tx, id string, quantity int) error
}

func (m *mockProductRepository) FindByIDTx(ctx context.Context, tx mysql.Tx, id string) (*domain.Product, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}
func (m *mockProductRepository) DecrementStock(ctx context.Context, tx mysql.Tx, id string, quantity int) (bool, error) {
	return m.DecrementStockFunc(ctx, tx, id, quantity)
}
func (m *mockProductRepository) RestoreStock(ctx context.Context, tx mysql.Tx, id string, quantity int) error {
	return m.RestoreStockFunc(ctx, tx, id, quantity)
}

type mockUserRepository struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.User, error)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockTxManager struct {
	tx *fakeTx
}

func (m *mockTxManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error) {
	return m.tx, nil
}

type mockProductCache struct {
	invalidations int
}

func (m *mockProductCache) InvalidateCache() {
	m.invalidations++
}

// fixture is an in-memory order store wired into the service through the
// mocks, so every transactional path runs end to end.
type fixture struct {
	svc          *Service
	repo         *mockRepository
	products     *mockProductRepository
	productCache *mockProductCache
	tx           *fakeTx

	stock        map[string]int
	catalog      map[string]*domain.Product
	orders       map[string]*domain.Order
	itemsByOrder map[string][]domain.OrderItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tx:           &fakeTx{},
		productCache: &mockProductCache{},
		stock:        map[string]int{},
		catalog:      map[string]*domain.Product{},
		orders:       map[string]*domain.Order{},
		itemsByOrder: map[string][]domain.OrderItem{},
	}

	f.repo = &mockRepository{
		InsertFunc: func(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
			copied := *o
			copied.CreatedAt = time.Now()
			f.orders[o.ID] = &copied
			return nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			o, ok := f.orders[id]
			if !ok {
				return nil, apperrors.NewNotFoundError("order", "id", id)
			}
			copied := *o
			return &copied, nil
		},
		FindByIDTxFunc: func(ctx context.Context, tx mysql.Tx, id string) (*domain.Order, error) {
			o, ok := f.orders[id]
			if !ok {
				return nil, apperrors.NewNotFoundError("order", "id", id)
			}
			copied := *o
			return &copied, nil
		},
		FindByNumberFunc: func(ctx context.Context, number string) (*domain.Order, error) {
			for _, o := range f.orders {
				if o.OrderNumber == number {
					copied := *o
					return &copied, nil
				}
			}
			return nil, apperrors.NewNotFoundError("order", "orderNumber", number)
		},
		UpdateStatusFunc: func(ctx context.Context, id string, status domain.OrderStatus) error {
			f.orders[id].Status = status
			return nil
		},
		UpdatePaymentStatusFunc: func(ctx context.Context, id string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error {
			f.orders[id].PaymentStatus = paymentStatus
			f.orders[id].Status = status
			return nil
		},
		UpdateFieldsFunc: func(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
			stored := f.orders[o.ID]
			stored.PaymentMethodID = o.PaymentMethodID
			stored.ShippingMethodID = o.ShippingMethodID
			stored.ShippingAddressID = o.ShippingAddressID
			stored.Subtotal = o.Subtotal
			stored.ShippingCost = o.ShippingCost
			stored.Total = o.Total
			stored.Notes = o.Notes
			return nil
		},
		SetCancelledFunc: func(ctx context.Context, tx mysql.Tx, id string) error {
			now := time.Now()
			f.orders[id].Status = domain.OrderStatusCancelled
			f.orders[id].CancelledAt = &now
			return nil
		},
		DeleteFunc: func(ctx context.Context, tx mysql.Tx, id string) error {
			delete(f.orders, id)
			return nil
		},
		CountFunc: func(ctx context.Context) (int64, error) {
			return int64(len(f.orders)), nil
		},
	}

	items := &mockItemRepository{
		InsertFunc: func(ctx context.Context, tx mysql.Tx, item *domain.OrderItem) error {
			f.itemsByOrder[item.OrderID] = append(f.itemsByOrder[item.OrderID], *item)
			return nil
		},
		ListByOrderFunc: func(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
			return f.itemsByOrder[orderID], nil
		},
		ListByOrderTxFunc: func(ctx context.Context, tx mysql.Tx, orderID string) ([]domain.OrderItem, error) {
			return f.itemsByOrder[orderID], nil
		},
		DeleteByOrderFunc: func(ctx context.Context, tx mysql.Tx, orderID string) error {
			delete(f.itemsByOrder, orderID)
			return nil
		},
	}

	f.products = &mockProductRepository{
		FindByIDTxFunc: func(ctx context.Context, tx mysql.Tx, id string) (*domain.Product, error) {
			p, ok := f.catalog[id]
			if !ok {
				return nil, apperrors.NewNotFoundError("product", "id", id)
			}
			copied := *p
			copied.Stock = f.stock[id]
			return &copied, nil
		},
		DecrementStockFunc: func(ctx context.Context, tx mysql.Tx, id string, quantity int) (bool, error) {
			if f.stock[id] < quantity {
				return false, nil
			}
			f.stock[id] -= quantity
			return true, nil
		},
		RestoreStockFunc: func(ctx context.Context, tx mysql.Tx, id string, quantity int) error {
			f.stock[id] += quantity
			return nil
		},
	}

	users := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}

	nextID := 0
	newID := func() string {
		nextID++
		return fmt.Sprintf("id-%d", nextID)
	}
	nextNumber := 0
	newNumber := func() string {
		nextNumber++
		return fmt.Sprintf("ORD-20260828-%06d", nextNumber)
	}

	f.svc = NewService(
		f.repo, items, f.products, users,
		&mockTxManager{tx: f.tx}, f.productCache,
		cache.NewEntity[domain.Order](16, time.Minute),
		newID, newNumber, zap.NewNop(),
	)
	return f
}

func (f *fixture) addProduct(id string, price string, stock int) {
	f.catalog[id] = &domain.Product{
		ID:       id,
		SKU:      "SKU-" + id,
		Name:     "product " + id,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	f.stock[id] = stock
}

func TestCreate_ComputesTotalsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.50", 5)
	f.addProduct("p2", "3.25", 8)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items: []ItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
	})
	require.NoError(t, err)

	// 2×10.50 + 3×3.25 = 30.75
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("30.75")), "subtotal %s", o.Subtotal)
	assert.True(t, o.Total.Equal(o.Subtotal), "shipping is free on creation")
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, domain.PaymentStatusPending, o.PaymentStatus)
	assert.Len(t, o.Items, 2)

	assert.Equal(t, 3, f.stock["p1"])
	assert.Equal(t, 5, f.stock["p2"])
	assert.Equal(t, 1, f.tx.commits)
	assert.Equal(t, 1, f.productCache.invalidations)
}

func TestCreate_SnapshotsProductFields(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "product p1", o.Items[0].ProductName)
	assert.Equal(t, "SKU-p1", o.Items[0].ProductSKU)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestCreate_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 1)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.Error(t, err)

	verr, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "insufficient stock is a bad request, not a conflict")
	assert.Contains(t, verr.Error(), "p1")
	assert.Equal(t, 0, f.tx.commits)
}

func TestCreate_InactiveProduct(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)
	f.catalog["p1"].IsActive = false

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 5, f.stock["p1"], "stock untouched")
}

func TestCreate_EmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: "u1"})
	require.Error(t, err)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCreate_RetriesOrderNumberCollision(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	baseInsert := f.repo.InsertFunc
	collisions := 0
	f.repo.InsertFunc = func(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
		if collisions < 2 {
			collisions++
			return &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
		return baseInsert(ctx, tx, o)
	}

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, collisions)
	assert.Equal(t, "ORD-20260828-000003", o.OrderNumber)
}

func TestCancel_RestoresStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, f.stock["p1"])

	cancelled, err := f.svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock["p1"], "every unit returned")
}

func TestCancel_ShippedRejected(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	f.orders[o.ID].Status = domain.OrderStatusShipped

	_, err = f.svc.Cancel(context.Background(), o.ID)
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 4, f.stock["p1"], "no stock restored")
}

func TestCancel_StatusCheckedOnLockedRow(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	// Another transaction cancels the order between our plain read and the
	// locked read; the locked state must win or stock would restore twice.
	baseFindTx := f.repo.FindByIDTxFunc
	f.repo.FindByIDTxFunc = func(ctx context.Context, tx mysql.Tx, id string) (*domain.Order, error) {
		cancelled, err := baseFindTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		cancelled.Status = domain.OrderStatusCancelled
		return cancelled, nil
	}

	_, err = f.svc.Cancel(context.Background(), o.ID)
	require.Error(t, err)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, f.stock["p1"], "no second restoration")
}

func TestUpdateStatus_SkippingRejected(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), o.ID, domain.OrderStatusDelivered)
	require.Error(t, err)

	conflict, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Contains(t, conflict.Error(), "pending")
	assert.Contains(t, conflict.Error(), "delivered")
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)
}

func TestUpdateStatus_ValidChain(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		updated, err := f.svc.UpdateStatus(context.Background(), o.ID, next)
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, updated.Status)
	}
}

func TestUpdatePaymentStatus_PaidAutoConfirms(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, o.Status)

	updated, err := f.svc.UpdatePaymentStatus(context.Background(), o.ID, domain.PaymentStatusPaid)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
}

func TestUpdatePaymentStatus_PaidOnConfirmedKeepsStatus(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	f.orders[o.ID].Status = domain.OrderStatusProcessing

	updated, err := f.svc.UpdatePaymentStatus(context.Background(), o.ID, domain.PaymentStatusPaid)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestUpdate_AppliesNetStockDelta(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.stock["p1"])

	// Bumping 2 → 3 must consume exactly one extra unit.
	updated, err := f.svc.Update(context.Background(), o.ID, UpdateInput{
		Items: []ItemInput{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, f.stock["p1"])
	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("30")), "subtotal %s", updated.Subtotal)
}

func TestUpdate_ReducingQuantityRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.stock["p1"])

	_, err = f.svc.Update(context.Background(), o.ID, UpdateInput{
		Items: []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, f.stock["p1"])
}

func TestUpdate_ZeroQuantityDeletesLine(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)
	f.addProduct("p2", "4.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items: []ItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.stock["p1"])

	updated, err := f.svc.Update(context.Background(), o.ID, UpdateInput{
		Items: []ItemInput{{ProductID: "p1", Quantity: 0}},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1, "zero quantity removes the line, untouched lines survive")
	assert.Equal(t, "p2", updated.Items[0].ProductID)
	assert.Equal(t, 5, f.stock["p1"], "deleted line restores its full quantity")
	assert.Equal(t, 4, f.stock["p2"], "untouched line keeps its units")
	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("4")), "subtotal %s", updated.Subtotal)
}

func TestUpdate_DeletingEveryLineRejected(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), o.ID, UpdateInput{
		Items: []ItemInput{{ProductID: "p1", Quantity: -1}},
	})
	require.Error(t, err)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, f.stock["p1"], "stock untouched")
}

func TestUpdate_InsufficientStockForAddedUnits(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 3)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.stock["p1"])

	_, err = f.svc.Update(context.Background(), o.ID, UpdateInput{
		Items: []ItemInput{{ProductID: "p1", Quantity: 4}},
	})
	require.Error(t, err)

	verr, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "insufficient stock is a bad request, not a conflict")
	assert.Contains(t, verr.Error(), "p1")
	assert.Equal(t, 1, f.stock["p1"], "stock untouched")
}

func TestUpdate_NotesOnlyLeavesStockAlone(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	invalidationsBefore := f.productCache.invalidations

	notes := "leave at the door"
	updated, err := f.svc.Update(context.Background(), o.ID, UpdateInput{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, &notes, updated.Notes)
	assert.Equal(t, 3, f.stock["p1"], "stock untouched")
	assert.Equal(t, invalidationsBefore, f.productCache.invalidations)
}

func TestUpdate_EmptyInputIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	commitsBefore := f.tx.commits

	updated, err := f.svc.Update(context.Background(), o.ID, UpdateInput{})
	require.NoError(t, err)

	assert.Equal(t, o.ID, updated.ID)
	assert.Equal(t, commitsBefore, f.tx.commits, "no transaction started")
}

func TestDelete_RemovesOrderWithoutRestoringStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), o.ID))

	_, err = f.svc.GetByID(context.Background(), o.ID)
	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, f.stock["p1"], "hard delete keeps stock as-is")
}

func TestGetByNumber_CachesResult(t *testing.T) {
	f := newFixture(t)
	f.addProduct("p1", "10.00", 5)

	o, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Items:  []ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	calls := 0
	baseFind := f.repo.FindByNumberFunc
	f.repo.FindByNumberFunc = func(ctx context.Context, number string) (*domain.Order, error) {
		calls++
		return baseFind(ctx, number)
	}

	first, err := f.svc.GetByNumber(context.Background(), o.OrderNumber)
	require.NoError(t, err)
	second, err := f.svc.GetByNumber(context.Background(), o.OrderNumber)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 0, calls, "creation warmed the number key")
}
