package payment

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

const paymentMethodColumns = `id, userId, kind, label, token, isDefault, createdAt, updatedAt`

func scanPaymentMethod(row interface {
	Scan(dest ...interface{}) error
}) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := row.Scan(
		&m.ID, &m.UserID, &m.Kind, &m.Label, &m.Token, &m.IsDefault,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, m *domain.PaymentMethod) error {
	query := `
		INSERT INTO PaymentMethods (id, userId, kind, label, token, isDefault)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Kind, m.Label, m.Token, m.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("inserting payment method: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM PaymentMethods WHERE id = ?`

	m, err := scanPaymentMethod(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("payment method", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment method by id: %w", err)
	}

	return m, nil
}

func (r *MySQLRepository) ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM PaymentMethods WHERE userId = ? ORDER BY createdAt DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment method row: %w", err)
		}
		methods = append(methods, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment method rows: %w", err)
	}

	return methods, nil
}

func (r *MySQLRepository) ClearDefault(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE PaymentMethods SET isDefault = 0 WHERE userId = ?`, userID)
	if err != nil {
		return fmt.Errorf("clearing default payment method: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, m *domain.PaymentMethod) error {
	query := `
		UPDATE PaymentMethods
		SET kind = ?, label = ?, token = ?, isDefault = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		m.Kind, m.Label, m.Token, m.IsDefault, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating payment method: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM PaymentMethods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting payment method: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("payment method", "id", id)
	}

	return nil
}
