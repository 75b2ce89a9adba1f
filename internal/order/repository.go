package order

import (
	"context"
	"database/sql"
	"fmt"

	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
	"vincula/internal/infrastructure/mysql"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const orderColumns = `id, userId, orderNumber, status, paymentStatus, paymentMethodId,
	shippingMethodId, shippingAddressId, subtotal, shippingCost, total, notes,
	createdAt, updatedAt, cancelledAt`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Order, error) {
	var o domain.Order
	var status, paymentStatus string
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &status, &paymentStatus,
		&o.PaymentMethodID, &o.ShippingMethodID, &o.ShippingAddressID,
		&o.Subtotal, &o.ShippingCost, &o.Total, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return &o, nil
}

// Insert writes the order row inside the caller's transaction. Items are
// inserted separately so the whole order commits or rolls back as one.
func (r *MySQLRepository) Insert(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
	query := `
		INSERT INTO Orders (id, userId, orderNumber, status, paymentStatus,
			paymentMethodId, shippingMethodId, shippingAddressId,
			subtotal, shippingCost, total, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		o.ID, o.UserID, o.OrderNumber, string(o.Status), string(o.PaymentStatus),
		o.PaymentMethodID, o.ShippingMethodID, o.ShippingAddressID,
		o.Subtotal, o.ShippingCost, o.Total, o.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("order", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return o, nil
}

func (r *MySQLRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE orderNumber = ?`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, number))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("order", "orderNumber", number)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by number: %w", err)
	}

	return o, nil
}

// FindByIDTx reads the order row under the caller's transaction, locking
// it for the duration.
func (r *MySQLRepository) FindByIDTx(ctx context.Context, tx mysql.Tx, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ? FOR UPDATE`

	o, err := scanOrder(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("order", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return o, nil
}

func (r *MySQLRepository) List(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders ORDER BY createdAt DESC LIMIT ? OFFSET ?`
	return r.queryOrders(ctx, query, limit, offset)
}

func (r *MySQLRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE userId = ? ORDER BY createdAt DESC LIMIT ? OFFSET ?`
	return r.queryOrders(ctx, query, userID, limit, offset)
}

func (r *MySQLRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE status = ? ORDER BY createdAt DESC LIMIT ? OFFSET ?`
	return r.queryOrders(ctx, query, string(status), limit, offset)
}

func (r *MySQLRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (r *MySQLRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Orders`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Orders WHERE userId = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting orders by user: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Orders WHERE status = ?`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting orders by status: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE Orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) error {
	query := `UPDATE Orders SET paymentStatus = ?, status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(paymentStatus), string(status), id)
	if err != nil {
		return fmt.Errorf("updating order payment status: %w", err)
	}
	return nil
}

// UpdateFields rewrites the mutable order columns inside the caller's
// transaction.
func (r *MySQLRepository) UpdateFields(ctx context.Context, tx mysql.Tx, o *domain.Order) error {
	query := `
		UPDATE Orders
		SET paymentMethodId = ?, shippingMethodId = ?, shippingAddressId = ?,
			subtotal = ?, shippingCost = ?, total = ?, notes = ?
		WHERE id = ?
	`

	_, err := tx.ExecContext(ctx, query,
		o.PaymentMethodID, o.ShippingMethodID, o.ShippingAddressID,
		o.Subtotal, o.ShippingCost, o.Total, o.Notes, o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order fields: %w", err)
	}

	return nil
}

// SetCancelled marks the order cancelled inside the same transaction that
// restores its stock.
func (r *MySQLRepository) SetCancelled(ctx context.Context, tx mysql.Tx, id string) error {
	query := `UPDATE Orders SET status = ?, cancelledAt = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, query, string(domain.OrderStatusCancelled), id)
	if err != nil {
		return fmt.Errorf("cancelling order: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, tx mysql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM Orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("order", "id", id)
	}

	return nil
}
