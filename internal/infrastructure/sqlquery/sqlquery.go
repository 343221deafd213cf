// Package sqlquery holds SQL fragments shared by the relational stores.
package sqlquery

import (
	"math"
	"strconv"
	"strings"

	"saledash/internal/domain/transaction"
)

// BucketCase renders a CASE expression mapping column to its index in ranges.
// Ranges must be ordered and contiguous; the last one catches everything above.
func BucketCase(column string, ranges []transaction.PriceRange) string {
	if len(ranges) < 2 {
		return "0"
	}
	var b strings.Builder
	b.WriteString("CASE")
	for i, r := range ranges {
		if i == len(ranges)-1 || math.IsInf(r.Max, 1) {
			break
		}
		b.WriteString(" WHEN ")
		b.WriteString(column)
		b.WriteString(" < ")
		b.WriteString(strconv.FormatFloat(r.Max, 'f', -1, 64))
		b.WriteString(" THEN ")
		b.WriteString(strconv.Itoa(i))
	}
	b.WriteString(" ELSE ")
	b.WriteString(strconv.Itoa(len(ranges) - 1))
	b.WriteString(" END")
	return b.String()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a LIKE pattern matching s anywhere, with
// wildcards in s escaped by backslash.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// AlignCounts spreads (bucket, count) rows into a slice of length n.
// Out-of-range buckets are ignored.
func AlignCounts(n int, buckets []int, counts []int64) []int64 {
	out := make([]int64, n)
	for i, b := range buckets {
		if b >= 0 && b < n {
			out[b] += counts[i]
		}
	}
	return out
}
