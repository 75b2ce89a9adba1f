package cart

import (
	"context"
	"database/sql"
	"fmt"

	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) InsertCart(ctx context.Context, c *domain.Cart) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO Carts (id, userId) VALUES (?, ?)`, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("inserting cart: %w", err)
	}
	return nil
}

func (r *MySQLRepository) FindCartByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `SELECT id, userId, createdAt, updatedAt FROM Carts WHERE userId = ?`

	var c domain.Cart
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("cart", "userId", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying cart by user: %w", err)
	}

	items, err := r.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items

	return &c, nil
}

func (r *MySQLRepository) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	query := `
		SELECT id, cartId, productId, quantity, createdAt, updatedAt
		FROM CartItems WHERE cartId = ? ORDER BY createdAt ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("querying cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning cart item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLRepository) FindItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error) {
	query := `
		SELECT id, cartId, productId, quantity, createdAt, updatedAt
		FROM CartItems WHERE cartId = ? AND productId = ?
	`

	var item domain.CartItem
	err := r.db.QueryRowContext(ctx, query, cartID, productID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("cart item", "productId", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying cart item: %w", err)
	}

	return &item, nil
}

func (r *MySQLRepository) InsertItem(ctx context.Context, item *domain.CartItem) error {
	query := `INSERT INTO CartItems (id, cartId, productId, quantity) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, item.ID, item.CartID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("inserting cart item: %w", err)
	}

	return nil
}

func (r *MySQLRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE CartItems SET quantity = ? WHERE id = ?`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("updating cart item quantity: %w", err)
	}
	return nil
}

func (r *MySQLRepository) DeleteItem(ctx context.Context, itemID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM CartItems WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("cart item", "id", itemID)
	}

	return nil
}

func (r *MySQLRepository) DeleteItemsByCart(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM CartItems WHERE cartId = ?`, cartID)
	if err != nil {
		return fmt.Errorf("clearing cart items: %w", err)
	}
	return nil
}
