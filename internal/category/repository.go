package category

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

func (r *MySQLRepository) Insert(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO Categories (id, name, description) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, description, createdAt, updatedAt FROM Categories WHERE id = ?`

	var c domain.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("category", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by id: %w", err)
	}

	return &c, nil
}

func (r *MySQLRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT id, name, description, createdAt, updatedAt FROM Categories WHERE name = ?`

	var c domain.Category
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("category", "name", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by name: %w", err)
	}

	return &c, nil
}

func (r *MySQLRepository) List(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	query := `SELECT id, name, description, createdAt, updatedAt FROM Categories ORDER BY name LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *MySQLRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Categories`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting categories: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE Categories SET name = ?, description = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("category", "id", id)
	}

	return nil
}
