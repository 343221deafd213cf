package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"saledash/internal/domain/ingestion"
)

// DatasetSyncer replaces the store with the upstream dataset.
type DatasetSyncer interface {
	SyncDataset(ctx context.Context) (*ingestion.SyncResult, error)
}

// DatasetSyncJob re-syncs the whole dataset. There is one per trigger.
type DatasetSyncJob struct {
	source string
	syncer DatasetSyncer
}

func NewDatasetSyncJob(source string, syncer DatasetSyncer) *DatasetSyncJob {
	return &DatasetSyncJob{
		source: source,
		syncer: syncer,
	}
}

func (j *DatasetSyncJob) Execute(ctx context.Context) error {
	result, err := j.syncer.SyncDataset(ctx)
	if err != nil {
		return fmt.Errorf("dataset sync failed: %w", err)
	}

	log.Info().
		Str("run_id", result.RunID.String()).
		Int("fetched", result.Fetched).
		Int64("stored", result.Stored).
		Msg("Scheduled dataset sync completed")

	return nil
}

func (j *DatasetSyncJob) Key() string {
	return j.source
}

func (j *DatasetSyncJob) Description() string {
	return "dataset sync"
}

// DatasetSyncJobProvider returns a scheduler job provider yielding one
// DatasetSyncJob per run.
func DatasetSyncJobProvider(source string, syncer DatasetSyncer) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		return []Job{NewDatasetSyncJob(source, syncer)}, nil
	}
}
