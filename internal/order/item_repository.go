package order

import (
	"context"
	"database/sql"
	"fmt"

	"vincula/internal/domain"
	"vincula/internal/infrastructure/mysql"
)

type MySQLItemRepository struct {
	db *sql.DB
}

func NewMySQLItemRepository(db *sql.DB) *MySQLItemRepository {
	return &MySQLItemRepository{db: db}
}

const itemColumns = `id, orderId, productId, productName, productSku, unitPrice, quantity, totalPrice`

func (r *MySQLItemRepository) Insert(ctx context.Context, tx mysql.Tx, item *domain.OrderItem) error {
	query := `
		INSERT INTO OrderItems (id, orderId, productId, productName, productSku,
			unitPrice, quantity, totalPrice)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductSKU,
		item.UnitPrice, item.Quantity, item.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}

	return nil
}

func (r *MySQLItemRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM OrderItems WHERE orderId = ?`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListByOrderTx reads the items under the caller's transaction so item
// edits see a consistent snapshot.
func (r *MySQLItemRepository) ListByOrderTx(ctx context.Context, tx mysql.Tx, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM OrderItems WHERE orderId = ?`

	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.ProductName, &item.ProductSKU, &item.UnitPrice,
			&item.Quantity, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLItemRepository) DeleteByOrder(ctx context.Context, tx mysql.Tx, orderID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM OrderItems WHERE orderId = ?`, orderID)
	if err != nil {
		return fmt.Errorf("deleting order items: %w", err)
	}
	return nil
}
