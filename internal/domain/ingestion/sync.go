package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"saledash/internal/domain/transaction"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SyncService mirrors the upstream dataset into the transaction store
type SyncService struct {
	source    DatasetSource
	repo      transaction.Repository
	publisher EventPublisher
	now       func() time.Time

	mu sync.Mutex
}

// NewSyncService creates a new sync service. publisher may be nil.
func NewSyncService(source DatasetSource, repo transaction.Repository, publisher EventPublisher) *SyncService {
	return &SyncService{
		source:    source,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// SyncDataset fetches the dataset, normalizes it and replaces the stored
// records in one transaction. On error the previous dataset is untouched.
func (s *SyncService) SyncDataset(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	records, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	run := transaction.SyncRun{
		ID:       uuid.New(),
		Fetched:  len(raw),
		SyncedAt: start.UTC(),
	}

	stored, err := s.repo.Replace(ctx, run, records)
	if err != nil {
		return nil, fmt.Errorf("failed to replace dataset: %w", err)
	}
	run.Stored = stored

	log.Info().
		Str("run_id", run.ID.String()).
		Int("fetched", run.Fetched).
		Int64("stored", stored).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Dataset sync completed")

	if s.publisher != nil {
		event := DatasetSynced{
			RunID:    run.ID,
			Fetched:  run.Fetched,
			Stored:   run.Stored,
			SyncedAt: run.SyncedAt,
		}
		if err := s.publisher.PublishDatasetSynced(ctx, event); err != nil {
			log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("Failed to publish dataset synced event")
		}
	}

	return &SyncResult{
		RunID:    run.ID,
		Fetched:  run.Fetched,
		Stored:   run.Stored,
		SyncedAt: run.SyncedAt,
		Records:  records,
	}, nil
}
