package product

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

const productColumns = `id, sku, name, description, price, stock, categoryId, isActive, createdAt, updatedAt`

func scanProduct(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO Products (id, sku, name, description, price, stock, categoryId, isActive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products WHERE id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("product", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return p, nil
}

func (r *MySQLRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products WHERE sku = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("product", "sku", sku)
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by sku: %w", err)
	}

	return p, nil
}

// FindByIDTx reads a product inside an open transaction, so order
// creation sees stock values consistent with its own decrements.
func (r *MySQLRepository) FindByIDTx(ctx context.Context, tx mysql.Tx, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products WHERE id = ?`

	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("product", "id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return p, nil
}

func (r *MySQLRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products ORDER BY createdAt DESC LIMIT ? OFFSET ?`
	return r.queryProducts(ctx, query, limit, offset)
}

func (r *MySQLRepository) ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products WHERE categoryId = ? ORDER BY createdAt DESC LIMIT ? OFFSET ?`
	return r.queryProducts(ctx, query, categoryID, limit, offset)
}

func (r *MySQLRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Products WHERE categoryId = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting products by category: %w", err)
	}
	return count, nil
}

func (r *MySQLRepository) HasProductsInCategory(ctx context.Context, categoryID string) (bool, error) {
	count, err := r.CountByCategory(ctx, categoryID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MySQLRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE Products
		SET sku = ?, name = ?, description = ?, price = ?, stock = ?, categoryId = ?, isActive = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		p.SKU, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.IsActive, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("product", "id", id)
	}

	return nil
}

// DecrementStock applies an atomic conditional decrement: the sufficiency
// check and the mutation happen in one statement, so concurrent orders
// cannot both pass a stale check. A false return means insufficient stock
// (the caller has already confirmed the product exists).
func (r *MySQLRepository) DecrementStock(ctx context.Context, tx mysql.Tx, id string, quantity int) (bool, error) {
	query := `UPDATE Products SET stock = stock - ? WHERE id = ? AND stock >= ?`

	result, err := tx.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return false, fmt.Errorf("decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// RestoreStock adds quantity back. Relative update, safe against lost
// updates under concurrency.
func (r *MySQLRepository) RestoreStock(ctx context.Context, tx mysql.Tx, id string, quantity int) error {
	query := `UPDATE Products SET stock = stock + ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("restoring stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("product", "id", id)
	}

	return nil
}
