package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"saledash/internal/domain/transaction"
	"saledash/internal/infrastructure/sqlquery"
)

const (
	transactionColumns = `id, title, description, price, date_of_sale, category, sold, image`
	monthPredicate     = `CAST(strftime('%m', date_of_sale) AS INTEGER) = ?`
	likeEscape         = ` ESCAPE '\'`
)

type TransactionRepository struct {
	db *DB
}

// Ensure TransactionRepository implements transaction.Repository
var _ transaction.Repository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Replace(ctx context.Context, run transaction.SyncRun, records []transaction.Transaction) (stored int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (title, description, price, date_of_sale, category, sold, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx,
			rec.Title, rec.Description, rec.Price, formatTime(rec.DateOfSale),
			rec.Category, boolToInt(rec.Sold), rec.Image,
		); err != nil {
			return 0, fmt.Errorf("failed to insert transaction: %w", err)
		}
		stored++
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sync_runs (id, fetched, stored, synced_at) VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.Fetched, stored, formatTime(run.SyncedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record sync run: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stored, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]transaction.Transaction, error) {
	args := []any{int(filter.Month)}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + monthPredicate

	if filter.Search != "" {
		pattern := sqlquery.ContainsPattern(filter.Search)
		args = append(args, pattern, pattern, pattern)
		query += ` AND (title LIKE ?` + likeEscape +
			` OR description LIKE ?` + likeEscape +
			` OR CAST(price AS TEXT) LIKE ?` + likeEscape + `)`
	}

	args = append(args, filter.Limit, filter.Offset)
	query += ` ORDER BY id LIMIT ? OFFSET ?`

	return r.queryTransactions(ctx, query, args...)
}

func (r *TransactionRepository) FilterByMonth(ctx context.Context, month transaction.Month, title, price string) ([]transaction.Transaction, error) {
	args := []any{int(month)}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + monthPredicate

	if title != "" {
		args = append(args, sqlquery.ContainsPattern(title))
		query += ` AND title LIKE ?` + likeEscape
	}
	if price != "" {
		args = append(args, sqlquery.ContainsPattern(price))
		query += ` AND CAST(price AS TEXT) LIKE ?` + likeEscape
	}
	query += ` ORDER BY id`

	return r.queryTransactions(ctx, query, args...)
}

func (r *TransactionRepository) Statistics(ctx context.Context, month transaction.Month) (transaction.Statistics, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(price), 0),
		       COALESCE(SUM(CASE WHEN sold <> 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN sold = 0 THEN 1 ELSE 0 END), 0)
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
	query := `SELECT id, fetched, stored, synced_at FROM sync_runs ORDER BY synced_at DESC LIMIT 1`

	var run transaction.SyncRun
	var syncedAt string
	err := r.db.QueryRowContext(ctx, query).Scan(&run.ID, &run.Fetched, &run.Stored, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNoSyncRun
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync run: %w", err)
	}

	if run.SyncedAt, err = parseTime(syncedAt); err != nil {
		return nil, err
	}
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
		var dateOfSale string
		err := rows.Scan(
			&tx.ID, &tx.Title, &tx.Description, &tx.Price,
			&dateOfSale, &tx.Category, &tx.Sold, &tx.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.DateOfSale, err = parseTime(dateOfSale); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
