package main

import (
	"context"
	"fmt"
	"time"

	"saledash/internal/domain/ingestion"
	"saledash/internal/domain/transaction"
	"saledash/internal/infrastructure/amqp"
	"saledash/internal/infrastructure/dataset"
	"saledash/internal/infrastructure/store"
	httphandlers "saledash/internal/interfaces/http"
	"saledash/internal/interfaces/scheduler"
	"saledash/internal/shared/config"

	"github.com/rs/zerolog/log"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Store     *store.Store
	Publisher *amqp.Client
	Source    *dataset.Client

	SyncService        *ingestion.SyncService
	TransactionService *transaction.Service
	TransactionHandler *httphandlers.TransactionHandler
}

// NewDependencies opens the store and wires services and handlers.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	st, err := store.Open(cfg.Store, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", st.Backend).Msg("Connected to transaction store")

	deps := &Dependencies{Store: st}

	// A nil *amqp.Client must not reach the sync service as a non-nil interface.
	var publisher ingestion.EventPublisher
	if cfg.AMQP.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := amqp.WaitForConnection(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("AMQP unavailable, sync events will not be published")
		} else {
			deps.Publisher = client
			publisher = client
		}
	} else {
		log.Info().Msg("AMQP_URL not set, sync events disabled")
	}

	deps.Source = dataset.NewClient(cfg.Dataset.URL, cfg.Dataset.Timeout)
	deps.SyncService = ingestion.NewSyncService(deps.Source, st.Repository, publisher)
	deps.TransactionService = transaction.NewServiceWithMaxPerPage(st.Repository, cfg.Pagination.MaxPerPage)
	deps.TransactionHandler = httphandlers.NewTransactionHandler(deps.TransactionService, deps.SyncService)

	return deps, nil
}

// NewScheduler starts the periodic dataset sync when enabled. It returns nil
// when the scheduler is disabled.
func NewScheduler(cfg *config.Config, deps *Dependencies) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		log.Info().Msg("Scheduler is disabled")
		return nil, nil
	}

	sched, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		ScheduleTimes: cfg.Scheduler.ScheduleTimes,
		WorkerCount:   cfg.Scheduler.WorkerCount,
		JobDelay:      cfg.Scheduler.JobDelay,
		QueueSize:     cfg.Scheduler.QueueSize,
		RunOnStartup:  cfg.Scheduler.RunOnStartup,
		JobProvider:   scheduler.DatasetSyncJobProvider(deps.Source.URL(), deps.SyncService),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	sched.Start()

	times := make([]string, 0, len(cfg.Scheduler.ScheduleTimes))
	for _, st := range sched.GetScheduleTimes() {
		times = append(times, st.String())
	}
	log.Info().
		Strs("times", times).
		Time("next_run", sched.GetNextScheduledTime()).
		Msg("Scheduler started")
	return sched, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing AMQP client")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing transaction store")
		}
	}
}
