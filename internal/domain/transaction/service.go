package transaction

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage       = 1
	DefaultPerPage    = 10
	DefaultMaxPerPage = 100
)

// Service answers listing and aggregation queries over the stored dataset
type Service struct {
	repo       Repository
	maxPerPage int
}

// NewService creates a new transaction service with the default perPage cap
func NewService(repo Repository) *Service {
	return &Service{
		repo:       repo,
		maxPerPage: DefaultMaxPerPage,
	}
}

// NewServiceWithMaxPerPage creates a service with a custom perPage cap
func NewServiceWithMaxPerPage(repo Repository, maxPerPage int) *Service {
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPerPage
	}
	return &Service{
		repo:       repo,
		maxPerPage: maxPerPage,
	}
}

// ResolveListFilter validates the month and applies pagination defaults and the cap
func (s *Service) ResolveListFilter(params ListParams) (ListFilter, error) {
	month, err := ParseMonth(params.Month)
	if err != nil {
		return ListFilter{}, err
	}

	page := parsePositive(params.Page, DefaultPage)
	perPage := parsePositive(params.PerPage, DefaultPerPage)
	if perPage > s.maxPerPage {
		perPage = s.maxPerPage
	}
	// keep the offset within int32 for both SQL backends
	if page > math.MaxInt32/perPage {
		page = math.MaxInt32 / perPage
	}

	return ListFilter{
		Month:  month,
		Search: strings.TrimSpace(params.Search),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}, nil
}

// List returns one page of a month's transactions, optionally filtered by search text
func (s *Service) List(ctx context.Context, params ListParams) ([]Transaction, error) {
	filter, err := s.ResolveListFilter(params)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if records == nil {
		records = []Transaction{}
	}
	return records, nil
}

// FilteredRead returns the stored transactions of a two-digit month token,
// narrowed by optional title and price substrings
func (s *Service) FilteredRead(ctx context.Context, token, title, price string) ([]Transaction, error) {
	month, err := ParseMonthToken(token)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.FilterByMonth(ctx, month, strings.TrimSpace(title), strings.TrimSpace(price))
	if err != nil {
		return nil, fmt.Errorf("failed to filter transactions: %w", err)
	}
	if records == nil {
		records = []Transaction{}
	}
	return records, nil
}

// Statistics summarizes a month; an empty result marshals as {}
func (s *Service) Statistics(ctx context.Context, rawMonth string) (Statistics, error) {
	month, err := ParseMonth(rawMonth)
	if err != nil {
		return Statistics{}, err
	}
	return s.statistics(ctx, month)
}

func (s *Service) statistics(ctx context.Context, month Month) (Statistics, error) {
	stats, err := s.repo.Statistics(ctx, month)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats, nil
}

// BarChart returns the month's price histogram, always one entry per range
func (s *Service) BarChart(ctx context.Context, rawMonth string) ([]PriceRangeCount, error) {
	month, err := ParseMonth(rawMonth)
	if err != nil {
		return nil, err
	}
	return s.barChart(ctx, month)
}

func (s *Service) barChart(ctx context.Context, month Month) ([]PriceRangeCount, error) {
	counts, err := s.repo.CountByPriceRange(ctx, month, PriceRanges)
	if err != nil {
		return nil, fmt.Errorf("failed to count price ranges: %w", err)
	}
	return BuildBarChart(counts), nil
}

// Combined computes statistics and the histogram concurrently
func (s *Service) Combined(ctx context.Context, rawMonth string) (*CombinedData, error) {
	month, err := ParseMonth(rawMonth)
	if err != nil {
		return nil, err
	}

	var result CombinedData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.statistics(gctx, month)
		if err != nil {
			return err
		}
		result.Statistics = stats
		return nil
	})

	g.Go(func() error {
		chart, err := s.barChart(gctx, month)
		if err != nil {
			return err
		}
		result.BarChart = chart
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

// LastSync returns the newest recorded sync run
func (s *Service) LastSync(ctx context.Context) (*SyncRun, error) {
	return s.repo.LastSync(ctx)
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
