package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"saledash/internal/domain/transaction"
	"saledash/internal/infrastructure/sqlquery"

	"github.com/lib/pq"
)

const (
	transactionColumns = `id, title, description, price, date_of_sale, category, sold, image`
	monthPredicate     = `EXTRACT(MONTH FROM date_of_sale AT TIME ZONE 'UTC') = $1`
)

type TransactionRepository struct {
	db *DB
}

// Ensure TransactionRepository implements transaction.Repository
var _ transaction.Repository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Replace deletes every row and bulk-loads records with COPY, recording run,
// all inside one transaction. Readers keep seeing the old rows until commit.
func (r *TransactionRepository) Replace(ctx context.Context, run transaction.SyncRun, records []transaction.Transaction) (int64, error) {
	var stored int64

	err := r.db.WithTx(ctx, "replace_transactions", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("transactions",
			"title", "description", "price", "date_of_sale", "category", "sold", "image"))
		if err != nil {
			return fmt.Errorf("failed to prepare copy: %w", err)
		}

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx,
				rec.Title, rec.Description, rec.Price, rec.DateOfSale.UTC(),
				rec.Category, rec.Sold, rec.Image,
			); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to copy transaction: %w", err)
			}
		}

		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to flush copy: %w", err)
		}
		if err := stmt.Close(); err != nil {
			return fmt.Errorf("failed to close copy: %w", err)
		}
		stored = int64(len(records))

		_, err = tx.ExecContext(ctx,
			`INSERT INTO sync_runs (id, fetched, stored, synced_at) VALUES ($1, $2, $3, $4)`,
			run.ID, run.Fetched, stored, run.SyncedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to record sync run: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return stored, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error) {
	args := []any{int(filter.Month)}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + monthPredicate

	if filter.Search != "" {
		args = append(args, sqlquery.ContainsPattern(filter.Search))
		n := "$" + strconv.Itoa(len(args))
		query += ` AND (title ILIKE ` + n + ` OR description ILIKE ` + n + ` OR price::text ILIKE ` + n + `)`
	}

	args = append(args, filter.Limit, filter.Offset)
	query += ` ORDER BY id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	return r.queryTransactions(ctx, query, args...)
}

func (r *TransactionRepository) FilterByMonth(ctx context.Context, month transaction.Month, title, price string) ([]transaction.Transaction, error) {
	args := []any{int(month)}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + monthPredicate

	if title != "" {
		args = append(args, sqlquery.ContainsPattern(title))
		query += ` AND title ILIKE $` + strconv.Itoa(len(args))
	}
	if price != "" {
		args = append(args, sqlquery.ContainsPattern(price))
		query += ` AND price::text ILIKE $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY id`

	return r.queryTransactions(ctx, query, args...)
}

func (r *TransactionRepository) Statistics(ctx context.Context, month transaction.Month) (transaction.Statistics, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(price), 0),
		       COUNT(*) FILTER (WHERE sold),
		       COUNT(*) FILTER (WHERE NOT sold)
		FROM transactions
		WHERE ` + monthPredicate

	var stats transaction.Statistics
	err := r.db.QueryRowContext(ctx, query, int(month)).Scan(
		&stats.Records, &stats.TotalSaleAmount, &stats.TotalSoldItems, &stats.TotalNotSoldItems,
	)
	if err != nil {
		return transaction.Statistics{}, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	return stats, nil
}

func (r *TransactionRepository) CountByPriceRange(ctx context.Context, month transaction.Month, ranges []transaction.PriceRange) ([]int64, error) {
	query := `
		SELECT ` + sqlquery.BucketCase("price", ranges) + ` AS bucket, COUNT(*)
		FROM transactions
		WHERE ` + monthPredicate + `
		GROUP BY bucket`

	rows, err := r.db.QueryContext(ctx, query, int(month))
	if err != nil {
		return nil, fmt.Errorf("failed to count price ranges: %w", err)
	}
	defer rows.Close()

	var buckets []int
	var counts []int64
	for rows.Next() {
		var bucket int
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan price range: %w", err)
		}
		buckets = append(buckets, bucket)
		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price ranges: %w", err)
	}

	return sqlquery.AlignCounts(len(ranges), buckets, counts), nil
}

func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) LastSync(ctx context.Context) (*transaction.SyncRun, error) {
	query := `
		SELECT id, fetched, stored, synced_at
		FROM sync_runs
		ORDER BY synced_at DESC
		LIMIT 1
	`

	var run transaction.SyncRun
	err := r.db.QueryRowContext(ctx, query).Scan(&run.ID, &run.Fetched, &run.Stored, &run.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNoSyncRun
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync run: %w", err)
	}

	run.SyncedAt = run.SyncedAt.UTC()
	return &run, nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []transaction.Transaction{}
	for rows.Next() {
		var tx transaction.Transaction
		err := rows.Scan(
			&tx.ID, &tx.Title, &tx.Description, &tx.Price,
			&tx.DateOfSale, &tx.Category, &tx.Sold, &tx.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.DateOfSale = tx.DateOfSale.UTC()
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
