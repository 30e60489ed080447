package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCategoryNotFound is returned when a category-scoped search names a category that does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrListingNotFound is returned when a listing id does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrStoreUnavailable wraps any failure of the backing store.
	ErrStoreUnavailable = errors.New("listing store unavailable")
	// ErrInvalidFilter marks a filter value that could not be parsed. It is never fatal.
	ErrInvalidFilter = errors.New("invalid filter parameter")
	// ErrCacheMiss is returned by a SearchCache when it holds no entry for a key.
	ErrCacheMiss = errors.New("cache miss")
)

// FilterError describes a single rejected filter value.
type FilterError struct {
	Field string
	Value string
	Err   error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %v", ErrInvalidFilter, e.Field, e.Value, e.Err)
}

func (e *FilterError) Unwrap() error {
	return ErrInvalidFilter
}

// StoreError wraps err so that errors.Is(err, ErrStoreUnavailable) holds.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
