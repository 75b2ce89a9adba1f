package review

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

const reviewColumns = `id, productId, userId, rating, comment, createdAt, updatedAt`

func scanReview(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO Reviews (id, productId, userId, rating, comment)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	)
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM Reviews WHERE id = ?`

	rv, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("review", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying review by id: %w", err)
	}

	return rv, nil
}

func (r *MySQLRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM Reviews WHERE userId = ? AND productId = ?`

	rv, err := scanReview(r.db.QueryRowContext(ctx, query, userID, productID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("review", "productId", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying review by user and product: %w", err)
	}

	return rv, nil
}

func (r *MySQLRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM Reviews WHERE productId = ? ORDER BY createdAt DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review rows: %w", err)
	}

	return reviews, nil
}

func (r *MySQLRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Reviews WHERE productId = ?`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	return count, nil
}

// AverageRating returns 0 when the product has no reviews.
func (r *MySQLRepository) AverageRating(ctx context.Context, productID string) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT AVG(rating) FROM Reviews WHERE productId = ?`, productID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("averaging ratings: %w", err)
	}
	return avg.Float64, nil
}

func (r *MySQLRepository) Update(ctx context.Context, rv *domain.Review) error {
	query := `UPDATE Reviews SET rating = ?, comment = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, rv.Rating, rv.Comment, rv.ID)
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("review", "id", id)
	}

	return nil
}
