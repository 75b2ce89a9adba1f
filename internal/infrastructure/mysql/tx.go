package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Tx is the slice of *sql.Tx that repositories and services use. Keeping
// it an interface lets service tests drive transactional paths with a
// fake transaction.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	Commit() error
	Rollback() error
}

type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	return m.db.BeginTx(ctx, opts)
}

const (
	errDuplicateEntry = 1062
	errLockDeadlock   = 1213
	errLockWaitExpiry = 1205
)

// IsDuplicateEntry reports a unique-constraint violation.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDuplicateEntry
	}
	return false
}

// IsDeadlock reports a lock conflict worth retrying.
func IsDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errLockDeadlock || mysqlErr.Number == errLockWaitExpiry
	}
	return false
}
