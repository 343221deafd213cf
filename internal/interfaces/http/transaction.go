package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"saledash/internal/domain/ingestion"
	"saledash/internal/domain/transaction"
	"saledash/internal/infrastructure/chart"
)

const (
	msgMethodNotAllowed  = "Method not allowed"
	msgInvalidMonth      = "Invalid month format. Use 'MM'."
	msgInvalidDateOfSale = "Invalid dateOfSale format. Use 'MM'."
	msgProcessingError   = "Error processing request"
	msgTransactionsError = "Error fetching transactions"
	msgBarChartError     = "Error fetching bar chart data"
	msgCombinedError     = "Error fetching combined data"
	msgNoSyncRun         = "No sync has run yet"
	msgSyncError         = "Error syncing dataset"
	msgSyncStatusError   = "Error fetching sync status"
)

// TransactionService is the read side used by the handlers.
type TransactionService interface {
	List(ctx context.Context, params transaction.ListParams) ([]transaction.Transaction, error)
	FilteredRead(ctx context.Context, token, title, price string) ([]transaction.Transaction, error)
	Statistics(ctx context.Context, rawMonth string) (transaction.Statistics, error)
	BarChart(ctx context.Context, rawMonth string) ([]transaction.PriceRangeCount, error)
	Combined(ctx context.Context, rawMonth string) (*transaction.CombinedData, error)
	LastSync(ctx context.Context) (*transaction.SyncRun, error)
}

// DatasetSyncer replaces the store with the upstream dataset.
type DatasetSyncer interface {
	SyncDataset(ctx context.Context) (*ingestion.SyncResult, error)
}

type TransactionHandler struct {
	service TransactionService
	syncer  DatasetSyncer
}

func NewTransactionHandler(service TransactionService, syncer DatasetSyncer) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		syncer:  syncer,
	}
}

// HandleInit serves the legacy init route. With dateOfSale it filters the
// stored records by month; without it, it re-syncs and returns the records.
func (h *TransactionHandler) HandleInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	if token := q.Get("dateOfSale"); token != "" {
		transactions, err := h.service.FilteredRead(r.Context(), token, q.Get("title"), q.Get("price"))
		if err != nil {
			if errors.Is(err, transaction.ErrInvalidMonthToken) {
				http.Error(w, msgInvalidDateOfSale, http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Str("dateOfSale", token).Msg("Filtered read failed")
			http.Error(w, msgProcessingError, http.StatusInternalServerError)
			return
		}
		writeJSON(w, transactions)
		return
	}

	result, err := h.syncer.SyncDataset(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Dataset sync from init failed")
		http.Error(w, msgProcessingError, http.StatusInternalServerError)
		return
	}

	records := result.Records
	if records == nil {
		records = []transaction.Transaction{}
	}
	writeJSON(w, records)
}

// HandleSync re-syncs the dataset and returns the run summary
func (h *TransactionHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	result, err := h.syncer.SyncDataset(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Dataset sync failed")
		http.Error(w, msgSyncError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// HandleSyncStatus returns the most recent sync run
func (h *TransactionHandler) HandleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	run, err := h.service.LastSync(r.Context())
	if err != nil {
		if errors.Is(err, transaction.ErrNoSyncRun) {
			http.Error(w, msgNoSyncRun, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("Failed to get last sync run")
		http.Error(w, msgSyncStatusError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, run)
}

// HandleTransactions lists a month's transactions with search and paging
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	params := transaction.ListParams{
		Month:   q.Get("month"),
		Search:  q.Get("search"),
		Page:    q.Get("page"),
		PerPage: q.Get("perPage"),
	}

	transactions, err := h.service.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidMonth) {
			http.Error(w, msgInvalidMonth, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("month", params.Month).Msg("Failed to list transactions")
		http.Error(w, msgTransactionsError, http.StatusInternalServerError)
		return
	}

	writeJSON(w, transactions)
}

// HandleStatistics returns the month's sale totals
func (h *TransactionHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	month := r.URL.Query().Get("month")
	stats, err := h.service.Statistics(r.Context(), month)
	if err != nil {
		h.handleMonthError(w, err, month, msgProcessingError)
		return
	}

	writeJSON(w, stats)
}

// HandleBarChart returns the month's price histogram
func (h *TransactionHandler) HandleBarChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	month := r.URL.Query().Get("month")
	ranges, err := h.service.BarChart(r.Context(), month)
	if err != nil {
		h.handleMonthError(w, err, month, msgBarChartError)
		return
	}

	writeJSON(w, ranges)
}

// HandleBarChartPNG renders the month's price histogram as a PNG image
func (h *TransactionHandler) HandleBarChartPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	month := r.URL.Query().Get("month")
	m, err := transaction.ParseMonth(month)
	if err != nil {
		h.handleMonthError(w, err, month, msgBarChartError)
		return
	}

	ranges, err := h.service.BarChart(r.Context(), m.String())
	if err != nil {
		h.handleMonthError(w, err, month, msgBarChartError)
		return
	}

	// Render into a buffer so a failure can still return 500.
	var buf bytes.Buffer
	if err := chart.RenderBarChart(&buf, fmt.Sprintf("Price ranges, month %s", m), ranges); err != nil {
		log.Error().Err(err).Str("month", month).Msg("Failed to render bar chart")
		http.Error(w, msgBarChartError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// HandleCombined returns statistics and histogram in one response
func (h *TransactionHandler) HandleCombined(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	month := r.URL.Query().Get("month")
	data, err := h.service.Combined(r.Context(), month)
	if err != nil {
		h.handleMonthError(w, err, month, msgCombinedError)
		return
	}

	writeJSON(w, data)
}

func (h *TransactionHandler) handleMonthError(w http.ResponseWriter, err error, month, failure string) {
	if errors.Is(err, transaction.ErrInvalidMonth) {
		http.Error(w, msgInvalidMonth, http.StatusBadRequest)
		return
	}
	log.Error().Err(err).Str("month", month).Msg(failure)
	http.Error(w, failure, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
