package transaction

import (
	"errors"
	"testing"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{"1", 1, false},
		{"03", 3, false},
		{"12", 12, false},
		{"7", 7, false},
		{" 7 ", 0, true},
		{"+3", 0, true},
		{"003", 0, true},
		{"1a", 0, true},
		{"0", 0, true},
		{"13", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"march", 0, true},
		{"3.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMonth) {
					t.Errorf("ParseMonth(%q) error = %v, want ErrInvalidMonth", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMonthToken(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{"01", 1, false},
		{"09", 9, false},
		{"12", 12, false},
		{"13", 0, true},
		{"00", 0, true},
		{"3", 0, true},
		{"003", 0, true},
		{"a1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonthToken(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMonthToken) {
					t.Errorf("ParseMonthToken(%q) error = %v, want ErrInvalidMonthToken", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthToken(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonthToken(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonth_String(t *testing.T) {
	if got := Month(3).String(); got != "03" {
		t.Errorf("Month(3).String() = %q, want %q", got, "03")
	}
	if got := Month(11).String(); got != "11" {
		t.Errorf("Month(11).String() = %q, want %q", got, "11")
	}
}
