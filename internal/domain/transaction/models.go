package transaction

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Transaction is a single product sale mirrored from the upstream dataset.
type Transaction struct {
	ID          int64     `json:"id,omitempty"` // store-assigned, ascending in insertion order
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	DateOfSale  time.Time `json:"dateOfSale"`
	Category    string    `json:"category"`
	Sold        bool      `json:"sold"`
	Image       string    `json:"image"`
}

// SyncRun records one successful replacement of the dataset.
type SyncRun struct {
	ID       uuid.UUID `json:"runId"`
	Fetched  int       `json:"fetched"`
	Stored   int64     `json:"stored"`
	SyncedAt time.Time `json:"syncedAt"`
}

// ListFilter is the resolved form of ListParams handed to the repository.
type ListFilter struct {
	Month  Month
	Search string
	Limit  int
	Offset int
}

// ListParams carries the raw query values of a listing request.
type ListParams struct {
	Month   string
	Search  string
	Page    string
	PerPage string
}

// Statistics summarizes the transactions of one month.
type Statistics struct {
	TotalSaleAmount   float64 `json:"totalSaleAmount"`
	TotalSoldItems    int64   `json:"totalSoldItems"`
	TotalNotSoldItems int64   `json:"totalNotSoldItems"`

	// Records is the number of matching rows; zero renders as {}.
	Records int64 `json:"-"`
}

// Empty reports whether no transaction matched.
func (s Statistics) Empty() bool {
	return s.Records == 0
}

// MarshalJSON renders an empty summary as {} rather than zeros.
func (s Statistics) MarshalJSON() ([]byte, error) {
	if s.Empty() {
		return []byte("{}"), nil
	}
	type plain Statistics
	s.TotalSaleAmount = math.Round(s.TotalSaleAmount*100) / 100
	return json.Marshal(plain(s))
}

// PriceRangeCount is one bar of the price histogram.
type PriceRangeCount struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// CombinedData is the payload of the combined endpoint.
type CombinedData struct {
	Statistics Statistics        `json:"statistics"`
	BarChart   []PriceRangeCount `json:"barChart"`
}
