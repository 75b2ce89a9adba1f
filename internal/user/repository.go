package user

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

const userColumns = `id, email, passwordHash, firstName, lastName, phone, role, createdAt, updatedAt`

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO Users (id, email, passwordHash, firstName, lastName, phone, role)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM Users WHERE id = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return u, nil
}

func (r *MySQLRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM Users WHERE email = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user", "email", email)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return u, nil
}

func (r *MySQLRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM Users ORDER BY createdAt DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

func (r *MySQLRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE Users
		SET email = ?, passwordHash = ?, firstName = ?, lastName = ?, phone = ?, role = ?
		WHERE id = ?
	`

	// rowsAffected is not checked: MySQL reports zero for no-change
	// updates and callers verify existence beforehand.
	_, err := r.db.ExecContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role, u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("user", "id", id)
	}

	return nil
}
