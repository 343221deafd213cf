package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"saledash/internal/domain/ingestion"
	"saledash/internal/domain/transaction"
	"saledash/internal/infrastructure/chart"
	"saledash/internal/infrastructure/dataset"
	"saledash/internal/infrastructure/store"
	"saledash/internal/shared/config"
	"saledash/internal/shared/logger"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

const usage = `Saledash Admin CLI - Management commands for the transaction dashboard

Usage:
  admin <command> [options]

Commands:
  sync          Download the dataset and replace the stored transactions
  sync-status   Show the most recent sync run
  list          List a month's transactions
  stats         Show a month's sale statistics
  bar-chart     Show a month's price ranges, optionally as a PNG

Examples:
  # Re-seed the store from the configured dataset URL
  admin sync

  # Page through March, searching for "shirt"
  admin list --month=03 --search=shirt --page=2 --per-page=10

  # Statistics for November
  admin stats --month=11

  # Write the March histogram to a file
  admin bar-chart --month=03 --png=march.png
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "sync":
		err = runSync(os.Args[2:])
	case "sync-status":
		err = runSyncStatus(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "bar-chart":
		err = runBarChart(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}
}

// openStore loads configuration, initializes logging and opens the configured store.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: "console"}); err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Store, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("backend", st.Backend).Msg("Connected to transaction store")

	return cfg, st, nil
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	url := fs.String("url", "", "Dataset URL (defaults to DATASET_URL)")
	timeout := fs.Duration("timeout", 5*time.Minute, "Timeout for the operation (e.g., 30s, 5m)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	source := cfg.Dataset.URL
	if *url != "" {
		source = *url
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc := ingestion.NewSyncService(dataset.NewClient(source, cfg.Dataset.Timeout), st.Repository, nil)

	startTime := time.Now()
	result, err := svc.SyncDataset(ctx)
	if err != nil {
		return err
	}

	rows, err := st.Repository.Count(ctx)
	if err != nil {
		return err
	}

	printSyncRun(os.Stdout, &transaction.SyncRun{
		ID:       result.RunID,
		Fetched:  result.Fetched,
		Stored:   result.Stored,
		SyncedAt: result.SyncedAt,
	}, rows)
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("Sync completed")
	return nil
}

func runSyncStatus(args []string) error {
	fs := flag.NewFlagSet("sync-status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	run, err := st.Repository.LastSync(ctx)
	if err != nil {
		return err
	}

	rows, err := st.Repository.Count(ctx)
	if err != nil {
		return err
	}

	printSyncRun(os.Stdout, run, rows)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	month := fs.String("month", "", "Month as MM (required)")
	search := fs.String("search", "", "Substring of title, description or price")
	page := fs.String("page", "1", "Page number")
	perPage := fs.String("per-page", "10", "Rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := transaction.NewServiceWithMaxPerPage(st.Repository, cfg.Pagination.MaxPerPage)
	txs, err := svc.List(context.Background(), transaction.ListParams{
		Month:   *month,
		Search:  *search,
		Page:    *page,
		PerPage: *perPage,
	})
	if err != nil {
		return err
	}

	printTransactions(os.Stdout, txs)
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	month := fs.String("month", "", "Month as MM (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := transaction.NewService(st.Repository).Statistics(context.Background(), *month)
	if err != nil {
		return err
	}

	printStatistics(os.Stdout, stats)
	return nil
}

func runBarChart(args []string) error {
	fs := flag.NewFlagSet("bar-chart", flag.ExitOnError)
	month := fs.String("month", "", "Month as MM (required)")
	pngPath := fs.String("png", "", "Also write the chart as a PNG to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ranges, err := transaction.NewService(st.Repository).BarChart(context.Background(), *month)
	if err != nil {
		return err
	}

	printPriceRanges(os.Stdout, ranges)

	if *pngPath == "" {
		return nil
	}

	f, err := os.Create(*pngPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.RenderBarChart(f, "Price ranges, month "+*month, ranges); err != nil {
		return err
	}
	fmt.Printf("Bar chart saved to: %s\n", *pngPath)
	return nil
}

// printSyncRun shows a sync run next to the number of rows currently stored.
func printSyncRun(w io.Writer, run *transaction.SyncRun, rows int64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run ID", "Fetched", "Stored", "Synced At", "Rows In Store"})
	table.Append([]string{
		run.ID.String(),
		strconv.Itoa(run.Fetched),
		strconv.FormatInt(run.Stored, 10),
		run.SyncedAt.Format(time.RFC3339),
		strconv.FormatInt(rows, 10),
	})
	table.Render()
}

func printTransactions(w io.Writer, txs []transaction.Transaction) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Price", "Date of Sale", "Category", "Sold"})
	for _, tx := range txs {
		table.Append([]string{
			strconv.FormatInt(tx.ID, 10),
			tx.Title,
			strconv.FormatFloat(tx.Price, 'f', 2, 64),
			tx.DateOfSale.Format("2006-01-02"),
			tx.Category,
			strconv.FormatBool(tx.Sold),
		})
	}
	table.Render()
}

func printStatistics(w io.Writer, stats transaction.Statistics) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Total Sale Amount", "Sold Items", "Not Sold Items"})
	table.Append([]string{
		strconv.FormatFloat(stats.TotalSaleAmount, 'f', 2, 64),
		strconv.FormatInt(stats.TotalSoldItems, 10),
		strconv.FormatInt(stats.TotalNotSoldItems, 10),
	})
	table.Render()
}

func printPriceRanges(w io.Writer, ranges []transaction.PriceRangeCount) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Range", "Count"})
	for _, r := range ranges {
		table.Append([]string{r.Range, strconv.FormatInt(r.Count, 10)})
	}
	table.Render()
}
