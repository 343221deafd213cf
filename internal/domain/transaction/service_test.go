package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	ReplaceFunc           func(ctx context.Context, run SyncRun, records []Transaction) (int64, error)
	ListFunc              func(ctx context.Context, filter ListFilter) ([]Transaction, error)
	FilterByMonthFunc     func(ctx context.Context, month Month, title, price string) ([]Transaction, error)
	StatisticsFunc        func(ctx context.Context, month Month) (Statistics, error)
	CountByPriceRangeFunc func(ctx context.Context, month Month, ranges []PriceRange) ([]int64, error)
	CountFunc             func(ctx context.Context) (int64, error)
	LastSyncFunc          func(ctx context.Context) (*SyncRun, error)
}

func (m *MockRepository) Replace(ctx context.Context, run SyncRun, records []Transaction) (int64, error) {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, run, records)
	}
	return int64(len(records)), nil
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockRepository) FilterByMonth(ctx context.Context, month Month, title, price string) ([]Transaction, error) {
	if m.FilterByMonthFunc != nil {
		return m.FilterByMonthFunc(ctx, month, title, price)
	}
	return nil, nil
}

func (m *MockRepository) Statistics(ctx context.Context, month Month) (Statistics, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx, month)
	}
	return Statistics{}, nil
}

func (m *MockRepository) CountByPriceRange(ctx context.Context, month Month, ranges []PriceRange) ([]int64, error) {
	if m.CountByPriceRangeFunc != nil {
		return m.CountByPriceRangeFunc(ctx, month, ranges)
	}
	return nil, nil
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockRepository) LastSync(ctx context.Context) (*SyncRun, error) {
	if m.LastSyncFunc != nil {
		return m.LastSyncFunc(ctx)
	}
	return nil, ErrNoSyncRun
}

func TestService_ResolveListFilter(t *testing.T) {
	svc := NewService(&MockRepository{})

	tests := []struct {
		name    string
		params  ListParams
		want    ListFilter
		wantErr error
	}{
		{
			name:   "defaults",
			params: ListParams{Month: "03"},
			want:   ListFilter{Month: 3, Limit: 10, Offset: 0},
		},
		{
			name:   "explicit page",
			params: ListParams{Month: "3", Page: "3", PerPage: "5", Search: "  shirt "},
			want:   ListFilter{Month: 3, Search: "shirt", Limit: 5, Offset: 10},
		},
		{
			name:   "invalid pagination falls back to defaults",
			params: ListParams{Month: "12", Page: "-2", PerPage: "abc"},
			want:   ListFilter{Month: 12, Limit: 10, Offset: 0},
		},
		{
			name:   "perPage capped",
			params: ListParams{Month: "1", PerPage: "1000"},
			want:   ListFilter{Month: 1, Limit: DefaultMaxPerPage, Offset: 0},
		},
		{
			name:    "invalid month",
			params:  ListParams{Month: "13"},
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "missing month",
			params:  ListParams{},
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveListFilter(tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveListFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewServiceWithMaxPerPage(t *testing.T) {
	svc := NewServiceWithMaxPerPage(&MockRepository{}, 25)
	filter, err := svc.ResolveListFilter(ListParams{Month: "05", PerPage: "50"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Limit != 25 {
		t.Errorf("Limit = %d, want 25", filter.Limit)
	}

	svc = NewServiceWithMaxPerPage(&MockRepository{}, 0)
	if svc.maxPerPage != DefaultMaxPerPage {
		t.Errorf("maxPerPage = %d, want %d for zero input", svc.maxPerPage, DefaultMaxPerPage)
	}
}

func TestService_List_PaginationConcatenation(t *testing.T) {
	var all []Transaction
	for i := 1; i <= 23; i++ {
		all = append(all, Transaction{ID: int64(i), Title: "item"})
	}

	repo := &MockRepository{
		ListFunc: func(ctx context.Context, filter ListFilter) ([]Transaction, error) {
			if filter.Offset >= len(all) {
				return nil, nil
			}
			end := filter.Offset + filter.Limit
			if end > len(all) {
				end = len(all)
			}
			return all[filter.Offset:end], nil
		},
	}
	svc := NewService(repo)

	var got []Transaction
	for page := 1; page <= 3; page++ {
		records, err := svc.List(context.Background(), ListParams{
			Month:   "03",
			Page:    strconv.Itoa(page),
			PerPage: "7",
		})
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", page, err)
		}
		got = append(got, records...)
	}

	if !reflect.DeepEqual(got, all[:21]) {
		t.Errorf("concatenated pages = %d records, want first 21 in order", len(got))
	}
}

func TestService_List_EmptyIsNotNil(t *testing.T) {
	svc := NewService(&MockRepository{})

	records, err := svc.List(context.Background(), ListParams{Month: "04"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil {
		t.Fatal("expected empty slice, got nil")
	}

	body, _ := json.Marshal(records)
	if string(body) != "[]" {
		t.Errorf("JSON = %s, want []", body)
	}
}

func TestService_List_RepositoryError(t *testing.T) {
	repoErr := errors.New("connection refused")
	svc := NewService(&MockRepository{
		ListFunc: func(ctx context.Context, filter ListFilter) ([]Transaction, error) {
			return nil, repoErr
		},
	})

	_, err := svc.List(context.Background(), ListParams{Month: "03"})
	if !errors.Is(err, repoErr) {
		t.Errorf("error = %v, want wrapped %v", err, repoErr)
	}
}

func TestService_FilteredRead(t *testing.T) {
	var gotMonth Month
	var gotTitle, gotPrice string
	repo := &MockRepository{
		FilterByMonthFunc: func(ctx context.Context, month Month, title, price string) ([]Transaction, error) {
			gotMonth, gotTitle, gotPrice = month, title, price
			return []Transaction{{ID: 1, Title: "Backpack"}}, nil
		},
	}
	svc := NewService(repo)

	records, err := svc.FilteredRead(context.Background(), "03", " back ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
	if gotMonth != 3 || gotTitle != "back" || gotPrice != "" {
		t.Errorf("FilterByMonth called with (%d, %q, %q)", gotMonth, gotTitle, gotPrice)
	}

	if _, err := svc.FilteredRead(context.Background(), "13", "", ""); !errors.Is(err, ErrInvalidMonthToken) {
		t.Errorf("token 13: error = %v, want ErrInvalidMonthToken", err)
	}
	if _, err := svc.FilteredRead(context.Background(), "3", "", ""); !errors.Is(err, ErrInvalidMonthToken) {
		t.Errorf("token 3: error = %v, want ErrInvalidMonthToken", err)
	}
}

func TestService_Statistics(t *testing.T) {
	svc := NewService(&MockRepository{
		StatisticsFunc: func(ctx context.Context, month Month) (Statistics, error) {
			if month != 3 {
				return Statistics{}, nil
			}
			return Statistics{TotalSaleAmount: 1000, TotalSoldItems: 1, TotalNotSoldItems: 1, Records: 2}, nil
		},
	})

	stats, err := svc.Statistics(context.Background(), "03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalSoldItems+stats.TotalNotSoldItems != stats.Records {
		t.Errorf("sold + notSold = %d, want %d", stats.TotalSoldItems+stats.TotalNotSoldItems, stats.Records)
	}

	body, _ := json.Marshal(stats)
	want := `{"totalSaleAmount":1000,"totalSoldItems":1,"totalNotSoldItems":1}`
	if string(body) != want {
		t.Errorf("JSON = %s, want %s", body, want)
	}

	empty, err := svc.Statistics(context.Background(), "04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ = json.Marshal(empty)
	if string(body) != "{}" {
		t.Errorf("empty JSON = %s, want {}", body)
	}

	if _, err := svc.Statistics(context.Background(), "0"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("error = %v, want ErrInvalidMonth", err)
	}
}

func TestStatistics_MarshalRoundsAmount(t *testing.T) {
	stats := Statistics{TotalSaleAmount: 0.1 + 0.2, TotalSoldItems: 2, Records: 2}
	body, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"totalSaleAmount":0.3,"totalSoldItems":2,"totalNotSoldItems":0}`
	if string(body) != want {
		t.Errorf("JSON = %s, want %s", body, want)
	}
}

func TestService_BarChart(t *testing.T) {
	svc := NewService(&MockRepository{
		CountByPriceRangeFunc: func(ctx context.Context, month Month, ranges []PriceRange) ([]int64, error) {
			counts := make([]int64, len(ranges))
			for _, p := range []float64{150, 850} {
				counts[RangeIndex(p)]++
			}
			return counts, nil
		},
	})

	chart, err := svc.BarChart(context.Background(), "03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chart) != 10 {
		t.Fatalf("len(chart) = %d, want 10", len(chart))
	}

	var total int64
	for _, bar := range chart {
		total += bar.Count
		switch bar.Range {
		case "101-200", "801-900":
			if bar.Count != 1 {
				t.Errorf("range %s count = %d, want 1", bar.Range, bar.Count)
			}
		default:
			if bar.Count != 0 {
				t.Errorf("range %s count = %d, want 0", bar.Range, bar.Count)
			}
		}
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	if _, err := svc.BarChart(context.Background(), "thirteen"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("error = %v, want ErrInvalidMonth", err)
	}
}

func TestService_Combined(t *testing.T) {
	svc := NewService(&MockRepository{
		StatisticsFunc: func(ctx context.Context, month Month) (Statistics, error) {
			return Statistics{TotalSaleAmount: 150, TotalSoldItems: 1, Records: 1}, nil
		},
		CountByPriceRangeFunc: func(ctx context.Context, month Month, ranges []PriceRange) ([]int64, error) {
			counts := make([]int64, len(ranges))
			counts[1] = 1
			return counts, nil
		},
	})

	data, err := svc.Combined(context.Background(), "03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Statistics.TotalSoldItems != 1 {
		t.Errorf("TotalSoldItems = %d, want 1", data.Statistics.TotalSoldItems)
	}
	if len(data.BarChart) != 10 || data.BarChart[1].Count != 1 {
		t.Errorf("unexpected bar chart: %+v", data.BarChart)
	}
}

func TestService_Combined_PropagatesError(t *testing.T) {
	repoErr := errors.New("statement timeout")
	svc := NewService(&MockRepository{
		StatisticsFunc: func(ctx context.Context, month Month) (Statistics, error) {
			return Statistics{}, repoErr
		},
		CountByPriceRangeFunc: func(ctx context.Context, month Month, ranges []PriceRange) ([]int64, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return make([]int64, len(ranges)), nil
			}
		},
	})

	_, err := svc.Combined(context.Background(), "03")
	if !errors.Is(err, repoErr) {
		t.Errorf("error = %v, want %v", err, repoErr)
	}
}
