package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"saledash/internal/domain/transaction"
)

// dateLayouts are tried in order when parsing dateOfSale.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts raw records into transactions, applying field defaults.
// The first record that cannot be coerced aborts the whole batch.
func Normalize(raw []RawRecord) ([]transaction.Transaction, error) {
	out := make([]transaction.Transaction, 0, len(raw))
	for i, r := range raw {
		tx, err := normalizeRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w at index %d: %v", ErrInvalidRecord, i, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func normalizeRecord(r RawRecord) (transaction.Transaction, error) {
	price, err := parsePrice(r.Price)
	if err != nil {
		return transaction.Transaction{}, err
	}

	date, err := parseDate(r.DateOfSale)
	if err != nil {
		return transaction.Transaction{}, err
	}

	return transaction.Transaction{
		Title:       deref(r.Title),
		Description: deref(r.Description),
		Price:       price,
		DateOfSale:  date,
		Category:    deref(r.Category),
		Sold:        r.Sold != nil && *r.Sold,
		Image:       deref(r.Image),
	}, nil
}

// parsePrice accepts a JSON number or a numeric string; missing or null is 0.
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("invalid price %s: %w", raw, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q: %w", s, err)
		}
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		return price, nil
	}

	var price float64
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, fmt.Errorf("invalid price %s: %w", raw, err)
	}
	return price, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing dateOfSale")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized dateOfSale %q", s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
