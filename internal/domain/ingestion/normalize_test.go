package ingestion

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func decodeRaw(t *testing.T, body string) []RawRecord {
	t.Helper()
	var raw []RawRecord
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return raw
}

func TestNormalize_AppliesDefaults(t *testing.T) {
	raw := decodeRaw(t, `[
		{"title":"A","description":"first","price":150,"dateOfSale":"2024-03-05","sold":true},
		{"title":"B","price":850,"dateOfSale":"2024-03-10T08:30:00Z","category":"electronics","sold":false,"image":"http://img/b.jpg"}
	]`)

	records, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}
	if len(records) != len(raw) {
		t.Fatalf("len(records) = %d, want %d", len(records), len(raw))
	}

	a := records[0]
	if a.Category != "" || a.Image != "" {
		t.Errorf("record A defaults: category=%q image=%q, want empty", a.Category, a.Image)
	}
	if !a.Sold {
		t.Error("record A should keep sold=true")
	}
	if a.Price != 150 {
		t.Errorf("record A price = %v, want 150", a.Price)
	}

	b := records[1]
	if b.Description != "" {
		t.Errorf("record B description = %q, want empty", b.Description)
	}
	if b.Category != "electronics" || b.Image != "http://img/b.jpg" || b.Sold {
		t.Errorf("record B raw values not kept: %+v", b)
	}
	if b.DateOfSale.Month() != time.March || b.DateOfSale.Location() != time.UTC {
		t.Errorf("record B date = %v, want March in UTC", b.DateOfSale)
	}
}

func TestNormalize_MissingSoldDefaultsFalse(t *testing.T) {
	records, err := Normalize(decodeRaw(t, `[{"title":"C","price":1,"dateOfSale":"2024-01-01"}]`))
	if err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}
	if records[0].Sold {
		t.Error("sold should default to false")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{`329.85`, 329.85, false},
		{`0`, 0, false},
		{`"44.6"`, 44.6, false},
		{`" 12 "`, 12, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{``, 0, false},
		{`"cheap"`, 0, true},
		{`"NaN"`, 0, true},
		{`true`, 0, true},
		{`{"amount":1}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parsePrice(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePrice(%s) expected error, got %v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePrice(%s) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parsePrice(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input     string
		wantMonth time.Month
		wantErr   bool
	}{
		{"2021-11-27T20:29:54+05:30", time.November, false},
		{"2021-10-27T20:29:54.123Z", time.October, false},
		{"2022-06-01 10:00:00", time.June, false},
		{"2022-06-01T10:00:00", time.June, false},
		{"2022-02-28", time.February, false},
		// early on the 1st at a positive offset is still the previous month in UTC
		{"2022-04-01T02:00:00+05:30", time.March, false},
		{"", 0, true},
		{"27/11/2021", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.Month() != tt.wantMonth {
				t.Errorf("parseDate(%q).Month() = %v, want %v", tt.input, got.Month(), tt.wantMonth)
			}
		})
	}
}

func TestNormalize_InvalidRecordAborts(t *testing.T) {
	raw := decodeRaw(t, `[
		{"title":"ok","price":1,"dateOfSale":"2024-01-01"},
		{"title":"bad","price":"n/a","dateOfSale":"2024-01-01"}
	]`)

	_, err := Normalize(raw)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("error = %v, want ErrInvalidRecord", err)
	}
}
