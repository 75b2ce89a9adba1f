package address

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

const addressColumns = `id, userId, street, city, state, zip, country, isDefault, createdAt, updatedAt`

func scanAddress(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.Zip, &a.Country,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, a *domain.Address) error {
	query := `
		INSERT INTO Addresses (id, userId, street, city, state, zip, country, isDefault)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Street, a.City, a.State, a.Zip, a.Country, a.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("inserting address: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM Addresses WHERE id = ?`

	a, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("address", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying address by id: %w", err)
	}

	return a, nil
}

func (r *MySQLRepository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM Addresses WHERE userId = ? ORDER BY createdAt DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying addresses: %w", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning address row: %w", err)
		}
		addresses = append(addresses, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating address rows: %w", err)
	}

	return addresses, nil
}

func (r *MySQLRepository) ClearDefault(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE Addresses SET isDefault = 0 WHERE userId = ?`, userID)
	if err != nil {
		return fmt.Errorf("clearing default address: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, a *domain.Address) error {
	query := `
		UPDATE Addresses
		SET street = ?, city = ?, state = ?, zip = ?, country = ?, isDefault = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		a.Street, a.City, a.State, a.Zip, a.Country, a.IsDefault, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating address: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Addresses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("address", "id", id)
	}

	return nil
}
