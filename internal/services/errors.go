package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant_ops_backend/internal/repositories"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrStorage           = errors.New("storage failure")
)

// Specific errors
var (
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("order item %w", ErrNotFound)
	ErrUnitNotFound       = fmt.Errorf("preparation unit instance %w", ErrNotFound)
	ErrDishNotFound       = fmt.Errorf("dish %w", ErrNotFound)
	ErrDefinitionNotFound = fmt.Errorf("preparation unit %w", ErrNotFound)
	ErrStockItemNotFound  = fmt.Errorf("stock item %w", ErrNotFound)
	ErrTableNotFound      = fmt.Errorf("table %w", ErrNotFound)
	ErrRecordNotFound     = fmt.Errorf("financial record %w", ErrNotFound)

	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrValidation)
	ErrNameConflict      = fmt.Errorf("%w: name already in use", ErrConflict)
)

// storageError wraps an unexpected repository failure.
func storageError(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, action, err)
}

// repoError maps a repository error to the service taxonomy. notFound is
// returned for repositories.ErrNotFound.
func repoError(action string, err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return notFound
	case errors.Is(err, repositories.ErrDuplicateKey):
		return fmt.Errorf("%w: %s", ErrNameConflict, action)
	case errors.Is(err, repositories.ErrCheckViolation):
		return fmt.Errorf("%w: %s: %v", ErrValidation, action, err)
	case isServiceError(err):
		return err
	default:
		return storageError(action, err)
	}
}

func isServiceError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrConflict) || errors.Is(err, ErrStorage)
}

// withinTx runs fn as one unit of work and maps failures that are not already
// service errors to ErrStorage.
func withinTx(ctx context.Context, store repositories.TxRunner, fn func(exec repositories.SQLExecutor) error) error {
	err := store.WithinTx(ctx, fn)
	if err == nil || isServiceError(err) {
		return err
	}
	return storageError("unit of work", err)
}
