package order

import (
	"context"
	"database/sql"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
	"vincula/internal/infrastructure/mysql"
)

type Repository interface {
	Insert(ctx context.Context, tx mysql.Tx, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	FindByIDTx(ctx context.Context, tx mysql.Tx, id string) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error)
	Count(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error
	UpdateFields(ctx context.Context, tx mysql.Tx, o *domain.Order) error
	SetCancelled(ctx context.Context, tx mysql.Tx, id string) error
	Delete(ctx context.Context, tx mysql.Tx, id string) error
}

type ItemRepository interface {
	Insert(ctx context.Context, tx mysql.Tx, item *domain.OrderItem) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	ListByOrderTx(ctx context.Context, tx mysql.Tx, orderID string) ([]domain.OrderItem, error)
	DeleteByOrder(ctx context.Context, tx mysql.Tx, orderID string) error
}

type ProductRepository interface {
	FindByIDTx(ctx context.Context, tx mysql.Tx, id string) (*domain.Product, error)
	DecrementStock(ctx context.Context, tx mysql.Tx, id string, quantity int) (bool, error)
	RestoreStock(ctx context.Context, tx mysql.Tx, id string, quantity int) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error)
}

// ProductCacheInvalidator lets order flows drop cached product entries
// after their stock changes.
type ProductCacheInvalidator interface {
	InvalidateCache()
}

type IDGenerator func() string

type Service struct {
	repo         Repository
	items        ItemRepository
	products     ProductRepository
	users        UserRepository
	txManager    TransactionManager
	productCache ProductCacheInvalidator
	cache        *cache.Entity[domain.Order]
	newID        IDGenerator
	newNumber    NumberGenerator
	logger       *zap.Logger
}

func NewService(
	repo Repository,
	items ItemRepository,
	products ProductRepository,
	users UserRepository,
	txManager TransactionManager,
	productCache ProductCacheInvalidator,
	entityCache *cache.Entity[domain.Order],
	newID IDGenerator,
	newNumber NumberGenerator,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		items:        items,
		products:     products,
		users:        users,
		txManager:    txManager,
		productCache: productCache,
		cache:        entityCache,
		newID:        newID,
		newNumber:    newNumber,
		logger:       logger,
	}
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type CreateInput struct {
	UserID            string
	Items             []ItemInput
	PaymentMethodID   *string
	ShippingMethodID  *string
	ShippingAddressID *string
	Notes             *string
}

const maxNumberRetries = 3

// deadlockBackoffs follows attempt 1 (0ms), attempt 2 (100ms),
// attempt 3 (200ms).
var deadlockBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "items",
			Message: "order must contain at least one item",
		})
	}
	for _, item := range items {
		if item.ProductID == "" {
			return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "items.productId",
				Message: "productId is required",
			})
		}
		if item.Quantity <= 0 {
			return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:         "items.quantity",
				Message:       "quantity must be positive",
				RejectedValue: item.Quantity,
			})
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Order, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	// Touch products in a stable order so concurrent orders lock rows
	// the same way.
	items := make([]ItemInput, len(input.Items))
	copy(items, input.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	o, err := s.createWithRetry(ctx, input, items)
	if err != nil {
		return nil, err
	}

	created, err := s.hydrate(ctx, o)
	if err != nil {
		return nil, err
	}

	s.productCache.InvalidateCache()
	s.cache.Refresh(*created, cache.IDKey(created.ID), cache.NumberKey(created.OrderNumber))
	s.logger.Info("order created",
		zap.String("orderId", created.ID),
		zap.String("orderNumber", created.OrderNumber),
		zap.String("userId", created.UserID))
	return created, nil
}

func (s *Service) createWithRetry(ctx context.Context, input CreateInput, items []ItemInput) (*domain.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= len(deadlockBackoffs); attempt++ {
		o, err := s.createOnce(ctx, input, items)
		if err == nil {
			return o, nil
		}
		lastErr = err

		if mysql.IsDeadlock(err) {
			if attempt < len(deadlockBackoffs) {
				base := deadlockBackoffs[attempt]
				jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
				time.Sleep(base + jitter)
				s.logger.Warn("deadlock detected, retrying order creation",
					zap.Int("attempt", attempt),
					zap.String("userId", input.UserID))
				continue
			}
			return nil, apperrors.NewDeadlockError("order creation kept deadlocking, giving up")
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *Service) createOnce(ctx context.Context, input CreateInput, items []ItemInput) (*domain.Order, error) {
	tx, err := s.txManager.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	o := &domain.Order{
		ID:                s.newID(),
		UserID:            input.UserID,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		PaymentMethodID:   input.PaymentMethodID,
		ShippingMethodID:  input.ShippingMethodID,
		ShippingAddressID: input.ShippingAddressID,
		Notes:             input.Notes,
		ShippingCost:      decimal.Zero,
	}

	for _, in := range items {
		p, err := s.products.FindByIDTx(ctx, tx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, apperrors.NewConflictError("product " + p.ID + " is not active")
		}

		ok, err := s.products.DecrementStock(ctx, tx, p.ID, in.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.NewValidationError("insufficient stock for product "+p.ID, apperrors.ValidationDetail{
				Field:         "items.quantity",
				Message:       "requested quantity exceeds available stock for product " + p.ID,
				RejectedValue: in.Quantity,
			})
		}

		o.Items = append(o.Items, domain.OrderItem{
			ID:          s.newID(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			UnitPrice:   p.Price,
			Quantity:    in.Quantity,
			TotalPrice:  domain.ItemTotal(p.Price, in.Quantity),
		})
	}

	o.Subtotal = o.ComputeSubtotal()
	o.Total = o.Subtotal.Add(o.ShippingCost)

	if err := s.insertWithFreshNumber(ctx, tx, o); err != nil {
		return nil, err
	}

	for i := range o.Items {
		if err := s.items.Insert(ctx, tx, &o.Items[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("committing order", err)
	}

	return o, nil
}

// insertWithFreshNumber regenerates the order number when the random
// suffix collides with an existing order that day.
func (s *Service) insertWithFreshNumber(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
	var err error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		o.OrderNumber = s.newNumber()
		err = s.repo.Insert(ctx, tx, o)
		if err == nil {
			return nil
		}
		if !mysql.IsDuplicateEntry(err) {
			return err
		}
		s.logger.Warn("order number collision, regenerating",
			zap.String("orderNumber", o.OrderNumber))
	}
	return apperrors.NewConflictError("could not allocate a unique order number")
}

func (s *Service) hydrate(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	items, err := s.items.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if cached, ok := s.cache.Get(cache.IDKey(id)); ok {
		return &cached, nil
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.hydrate(ctx, o); err != nil {
		return nil, err
	}

	s.cache.Set(cache.IDKey(id), *o)
	return o, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if cached, ok := s.cache.Get(cache.NumberKey(number)); ok {
		return &cached, nil
	}

	o, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if _, err := s.hydrate(ctx, o); err != nil {
		return nil, err
	}

	s.cache.Set(cache.NumberKey(number), *o)
	return o, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Order, int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("all", strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	orders, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrateAll(ctx, orders); err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, orders)
	return orders, total, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int64, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("user", userID, strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	orders, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrateAll(ctx, orders); err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, orders)
	return orders, total, nil
}

func (s *Service) ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, int64, error) {
	total, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, err
	}

	key := cache.ListKey("status", string(status), strconv.Itoa(limit), strconv.Itoa(offset))
	if cached, ok := s.cache.GetList(key); ok {
		return cached, total, nil
	}

	orders, err := s.repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrateAll(ctx, orders); err != nil {
		return nil, 0, err
	}

	s.cache.SetList(key, orders)
	return orders, total, nil
}

func (s *Service) hydrateAll(ctx context.Context, orders []domain.Order) error {
	for i := range orders {
		items, err := s.items.ListByOrder(ctx, orders[i].ID)
		if err != nil {
			return err
		}
		orders[i].Items = items
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, target domain.OrderStatus) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Same-status updates are accepted and change nothing.
	if o.Status == target {
		return s.hydrate(ctx, o)
	}

	if !o.Status.CanTransitionTo(target) {
		return nil, apperrors.NewConflictError(
			"cannot transition order from " + string(o.Status) + " to " + string(target))
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}

	s.cache.Refresh(*updated, cache.IDKey(updated.ID), cache.NumberKey(updated.OrderNumber))
	s.logger.Info("order status updated",
		zap.String("orderId", id),
		zap.String("from", string(o.Status)),
		zap.String("to", string(target)))
	return updated, nil
}

// UpdatePaymentStatus records the payment outcome. A payment marked paid
// while the order is still pending confirms the order in the same write:
// payment acceptance is the business event that moves pending orders
// forward.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, target domain.PaymentStatus) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := o.Status
	if target == domain.PaymentStatusPaid && o.Status == domain.OrderStatusPending {
		status = domain.OrderStatusConfirmed
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, target, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}

	s.cache.Refresh(*updated, cache.IDKey(updated.ID), cache.NumberKey(updated.OrderNumber))
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	tx, err := s.txManager.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	// Row-locked read so two concurrent cancels cannot both pass the
	// status check and double-restore stock.
	o, err := s.repo.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !o.Status.IsCancellable() {
		return nil, apperrors.NewConflictError(
			"order in status " + string(o.Status) + " cannot be cancelled")
	}

	items, err := s.items.ListByOrderTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.products.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetCancelled(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("committing cancellation", err)
	}

	cancelled, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.hydrate(ctx, cancelled); err != nil {
		return nil, err
	}

	s.productCache.InvalidateCache()
	s.cache.Refresh(*cancelled, cache.IDKey(cancelled.ID), cache.NumberKey(cancelled.OrderNumber))
	s.logger.Info("order cancelled", zap.String("orderId", id))
	return cancelled, nil
}

type UpdateInput struct {
	PaymentMethodID   *string
	ShippingMethodID  *string
	ShippingAddressID *string
	Notes             *string
	Items             []ItemInput
}

func (in UpdateInput) empty() bool {
	return in.PaymentMethodID == nil && in.ShippingMethodID == nil &&
		in.ShippingAddressID == nil && in.Notes == nil && in.Items == nil
}

// Update edits order fields and, when Items is non-nil, applies item
// edits: a positive quantity sets the line's quantity (adding the line
// when new), zero or less deletes it. Stock is adjusted by the net
// per-product difference between the old and new lines so a quantity bump
// of one only consumes one unit and a deleted line restores its full
// quantity.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Order, error) {
	if input.empty() {
		return s.GetByID(ctx, id)
	}

	for _, in := range input.Items {
		if in.ProductID == "" {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "items.productId",
				Message: "productId is required",
			})
		}
	}

	tx, err := s.txManager.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	o, err := s.repo.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if input.PaymentMethodID != nil {
		o.PaymentMethodID = input.PaymentMethodID
	}
	if input.ShippingMethodID != nil {
		o.ShippingMethodID = input.ShippingMethodID
	}
	if input.ShippingAddressID != nil {
		o.ShippingAddressID = input.ShippingAddressID
	}
	if input.Notes != nil {
		o.Notes = input.Notes
	}

	stockChanged := false
	if input.Items != nil {
		current, err := s.items.ListByOrderTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		// Merge the edits into the existing lines. Lines the input does
		// not mention keep their quantity.
		quantities := make(map[string]int, len(current))
		lineOrder := make([]string, 0, len(current))
		for _, item := range current {
			quantities[item.ProductID] = item.Quantity
			lineOrder = append(lineOrder, item.ProductID)
		}
		for _, in := range input.Items {
			if in.Quantity <= 0 {
				delete(quantities, in.ProductID)
				continue
			}
			if _, exists := quantities[in.ProductID]; !exists {
				lineOrder = append(lineOrder, in.ProductID)
			}
			quantities[in.ProductID] = in.Quantity
		}
		if len(quantities) == 0 {
			return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "items",
				Message: "order must keep at least one item",
			})
		}

		// Net stock delta per product: positive means more units leave
		// stock, negative means units come back.
		deltas := make(map[string]int)
		for _, item := range current {
			deltas[item.ProductID] -= item.Quantity
		}
		for productID, quantity := range quantities {
			deltas[productID] += quantity
		}

		productIDs := make([]string, 0, len(deltas))
		for productID := range deltas {
			productIDs = append(productIDs, productID)
		}
		sort.Strings(productIDs)

		for _, productID := range productIDs {
			delta := deltas[productID]
			switch {
			case delta > 0:
				ok, err := s.products.DecrementStock(ctx, tx, productID, delta)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, apperrors.NewValidationError("insufficient stock for product "+productID, apperrors.ValidationDetail{
						Field:         "items.quantity",
						Message:       "requested quantity exceeds available stock for product " + productID,
						RejectedValue: quantities[productID],
					})
				}
				stockChanged = true
			case delta < 0:
				if err := s.products.RestoreStock(ctx, tx, productID, -delta); err != nil {
					return nil, err
				}
				stockChanged = true
			}
		}

		if err := s.items.DeleteByOrder(ctx, tx, id); err != nil {
			return nil, err
		}

		o.Items = o.Items[:0]
		for _, productID := range lineOrder {
			quantity, kept := quantities[productID]
			if !kept {
				continue
			}
			p, err := s.products.FindByIDTx(ctx, tx, productID)
			if err != nil {
				return nil, err
			}
			item := domain.OrderItem{
				ID:          s.newID(),
				OrderID:     id,
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSKU:  p.SKU,
				UnitPrice:   p.Price,
				Quantity:    quantity,
				TotalPrice:  domain.ItemTotal(p.Price, quantity),
			}
			if err := s.items.Insert(ctx, tx, &item); err != nil {
				return nil, err
			}
			o.Items = append(o.Items, item)
		}

		o.Subtotal = o.ComputeSubtotal()
		o.Total = o.Subtotal.Add(o.ShippingCost)
	}

	if err := s.repo.UpdateFields(ctx, tx, o); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("committing order update", err)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}

	if stockChanged {
		s.productCache.InvalidateCache()
	}
	s.cache.Refresh(*updated, cache.IDKey(updated.ID), cache.NumberKey(updated.OrderNumber))
	return updated, nil
}

// Delete removes the order and its items outright. Stock is not restored:
// hard deletion is an administrative cleanup, not a cancellation.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	tx, err := s.txManager.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := s.items.DeleteByOrder(ctx, tx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("committing order deletion", err)
	}

	s.cache.Invalidate()
	s.logger.Info("order deleted", zap.String("orderId", id))
	return nil
}
