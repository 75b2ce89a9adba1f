package shipping

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

const shippingColumns = `id, name, description, cost, estimatedDays, isActive, createdAt, updatedAt`

func scanShippingMethod(row interface {
	Scan(dest ...interface{}) error
}) (*domain.ShippingMethod, error) {
	var m domain.ShippingMethod
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, m *domain.ShippingMethod) error {
	query := `
		INSERT INTO ShippingMethods (id, name, description, cost, estimatedDays, isActive)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Description, m.Cost, m.EstimatedDays, m.IsActive,
	)
	if err != nil {
		return fmt.Errorf("inserting shipping method: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.ShippingMethod, error) {
	query := `SELECT ` + shippingColumns + ` FROM ShippingMethods WHERE id = ?`

	m, err := scanShippingMethod(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("shipping method", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying shipping method by id: %w", err)
	}

	return m, nil
}

func (r *MySQLRepository) FindByName(ctx context.Context, name string) (*domain.ShippingMethod, error) {
	query := `SELECT ` + shippingColumns + ` FROM ShippingMethods WHERE name = ?`

	m, err := scanShippingMethod(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("shipping method", "name", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying shipping method by name: %w", err)
	}

	return m, nil
}

func (r *MySQLRepository) List(ctx context.Context, activeOnly bool) ([]domain.ShippingMethod, error) {
	query := `SELECT ` + shippingColumns + ` FROM ShippingMethods`
	if activeOnly {
		query += ` WHERE isActive = 1`
	}
	query += ` ORDER BY cost ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying shipping methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.ShippingMethod
	for rows.Next() {
		m, err := scanShippingMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shipping method row: %w", err)
		}
		methods = append(methods, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shipping method rows: %w", err)
	}

	return methods, nil
}

func (r *MySQLRepository) Update(ctx context.Context, m *domain.ShippingMethod) error {
	query := `
		UPDATE ShippingMethods
		SET name = ?, description = ?, cost = ?, estimatedDays = ?, isActive = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		m.Name, m.Description, m.Cost, m.EstimatedDays, m.IsActive, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating shipping method: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ShippingMethods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting shipping method: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("shipping method", "id", id)
	}

	return nil
}
