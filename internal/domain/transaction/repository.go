package transaction

import (
	"context"
	"errors"
)

var (
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidMonthToken = errors.New("invalid month token")
	ErrNoSyncRun         = errors.New("no sync run recorded")
)

// Repository defines the interface for transaction data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Replace swaps the whole dataset for records and records run, atomically
	Replace(ctx context.Context, run SyncRun, records []Transaction) (int64, error)

	// List returns one page of a month, optionally narrowed by search text
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)

	// FilterByMonth returns every transaction of a month matching title and price substrings
	FilterByMonth(ctx context.Context, month Month, title, price string) ([]Transaction, error)

	// Statistics aggregates price and sold counts for a month
	Statistics(ctx context.Context, month Month) (Statistics, error)

	// CountByPriceRange counts a month's transactions per range, aligned to ranges
	CountByPriceRange(ctx context.Context, month Month, ranges []PriceRange) ([]int64, error)

	// Count returns the number of stored transactions
	Count(ctx context.Context) (int64, error)

	// LastSync returns the newest sync run or ErrNoSyncRun
	LastSync(ctx context.Context) (*SyncRun, error)
}
