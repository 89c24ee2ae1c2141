package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrCheckViolation is returned when a guarded update would break a row
	// invariant, e.g. stock going below zero.
	ErrCheckViolation = errors.New("check constraint violated")

	// ErrStaleUpdate is returned when a guarded update finds the row no longer
	// in the state the caller read it in.
	ErrStaleUpdate = errors.New("record changed since it was read")
)

// SQLExecutor defines an interface that can be satisfied by *sqlx.DB or *sqlx.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
// In-memory repositories ignore it and accept nil.
type SQLExecutor interface {
	sqlx.ExtContext
}

// TxRunner is the transactional store the services run their units of work
// against.
type TxRunner interface {
	// DB returns the executor for reads outside a transaction.
	DB() SQLExecutor
	// WithinTx runs fn in a transaction. The transaction is committed if fn
	// returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlxTxRunner struct {
	db *sqlx.DB
}

// NewTxRunner creates a TxRunner backed by a sqlx connection pool.
func NewTxRunner(db *sqlx.DB) TxRunner {
	return &sqlxTxRunner{db: db}
}

func (r *sqlxTxRunner) DB() SQLExecutor {
	return r.db
}

func (r *sqlxTxRunner) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrDatabaseError, err)
	}
	return nil
}

// mapPQError converts driver errors into repository sentinels.
func mapPQError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, action, pqErr.Constraint)
		case "check_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrCheckViolation, action, pqErr.Constraint)
		case "foreign_key_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrNotFound, action, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// Set bundles one implementation of every repository.
type Set struct {
	Auth      AuthRepository
	Catalog   CatalogRepository
	Inventory InventoryRepository
	Orders    OrderRepository
	Tables    TableRepository
	Finance   FinanceRepository
}

// NewPostgresSet returns the SQL-backed repositories.
func NewPostgresSet() Set {
	return Set{
		Auth:      NewAuthRepository(),
		Catalog:   NewCatalogRepository(),
		Inventory: NewInventoryRepository(),
		Orders:    NewOrderRepository(),
		Tables:    NewTableRepository(),
		Finance:   NewFinanceRepository(),
	}
}
