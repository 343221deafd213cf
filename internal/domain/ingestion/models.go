package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"saledash/internal/domain/transaction"

	"github.com/google/uuid"
)

var ErrInvalidRecord = errors.New("invalid dataset record")

// RawRecord is one element of the upstream JSON array before normalization.
// Optional fields are pointers so absence can be told apart from zero values.
type RawRecord struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	DateOfSale  string          `json:"dateOfSale"`
	Category    *string         `json:"category"`
	Sold        *bool           `json:"sold"`
	Image       *string         `json:"image"`
}

// DatasetSource fetches the upstream dataset
type DatasetSource interface {
	Fetch(ctx context.Context) ([]RawRecord, error)
}

// EventPublisher announces completed syncs to other services
type EventPublisher interface {
	PublishDatasetSynced(ctx context.Context, event DatasetSynced) error
}

// DatasetSynced is the event emitted after the store has been replaced.
type DatasetSynced struct {
	RunID    uuid.UUID `json:"runId"`
	Fetched  int       `json:"fetched"`
	Stored   int64     `json:"stored"`
	SyncedAt time.Time `json:"syncedAt"`
}

// SyncResult describes one SyncDataset call.
type SyncResult struct {
	RunID    uuid.UUID                 `json:"runId"`
	Fetched  int                       `json:"fetched"`
	Stored   int64                     `json:"stored"`
	SyncedAt time.Time                 `json:"syncedAt"`
	Records  []transaction.Transaction `json:"-"`
}
