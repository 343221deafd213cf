// Package store opens the configured transaction store backend.
package store

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"saledash/internal/domain/transaction"
	"saledash/internal/infrastructure/postgres"
	"saledash/internal/infrastructure/sqlite"
	"saledash/internal/shared/config"
)

// Store is an open backend and the repository over it.
type Store struct {
	Backend    string
	Repository transaction.Repository
	close      func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by cfg.Backend, running migrations
// first when cfg.AutoMigrate is set.
func Open(cfg config.StoreConfig, db config.DatabaseConfig) (*Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return openPostgres(cfg, db)
	case config.BackendSQLite:
		return openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.Backend)
	}
}

func openPostgres(cfg config.StoreConfig, dbCfg config.DatabaseConfig) (*Store, error) {
	connStr := dbCfg.ConnectionString()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(connStr); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("PostgreSQL migrations applied")
	}

	db, err := postgres.New(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("host", dbCfg.Host).Str("database", dbCfg.DBName).Msg("Connected to PostgreSQL")

	return &Store{
		Backend:    config.BackendPostgres,
		Repository: postgres.NewTransactionRepository(db),
		close:      db.Close,
	}, nil
}

func openSQLite(cfg config.StoreConfig) (*Store, error) {
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if cfg.AutoMigrate {
		if err := sqlite.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("SQLite migrations applied")
	}

	log.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite store")

	return &Store{
		Backend:    config.BackendSQLite,
		Repository: sqlite.NewTransactionRepository(db),
		close:      db.Close,
	}, nil
}
