package wishlist

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

const wishlistColumns = `id, userId, productId, createdAt`

func scanItem(row interface {
	Scan(dest ...interface{}) error
}) (*domain.WishlistItem, error) {
	var item domain.WishlistItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, item *domain.WishlistItem) error {
	query := `INSERT INTO WishlistItems (id, userId, productId) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, item.ID, item.UserID, item.ProductID)
	if err != nil {
		return fmt.Errorf("inserting wishlist item: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	query := `SELECT ` + wishlistColumns + ` FROM WishlistItems WHERE userId = ? AND productId = ?`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, userID, productID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("wishlist item", "productId", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying wishlist item: %w", err)
	}

	return item, nil
}

func (r *MySQLRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.WishlistItem, error) {
	query := `SELECT ` + wishlistColumns + ` FROM WishlistItems WHERE userId = ? ORDER BY createdAt DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying wishlist items: %w", err)
	}
	defer rows.Close()

	var items []domain.WishlistItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning wishlist item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wishlist item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM WishlistItems WHERE userId = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting wishlist items: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) DeleteByUserAndProduct(ctx context.Context, userID, productID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM WishlistItems WHERE userId = ? AND productId = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("deleting wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("wishlist item", "productId", productID)
	}

	return nil
}
