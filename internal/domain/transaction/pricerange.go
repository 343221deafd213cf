package transaction

import (
	"math"
	"strconv"
)

// PriceRange is a histogram bucket covering [Min, Max).
// The last range has Max = +Inf.
type PriceRange struct {
	Label string
	Min   float64
	Max   float64
}

// PriceRanges are the fixed histogram buckets, in display order.
var PriceRanges = buildPriceRanges()

func buildPriceRanges() []PriceRange {
	ranges := make([]PriceRange, 0, 10)
	ranges = append(ranges, PriceRange{Label: "0-100", Min: 0, Max: 101})
	for lo := 101; lo < 901; lo += 100 {
		ranges = append(ranges, PriceRange{
			Label: strconv.Itoa(lo) + "-" + strconv.Itoa(lo+99),
			Min:   float64(lo),
			Max:   float64(lo + 100),
		})
	}
	ranges = append(ranges, PriceRange{Label: "901-above", Min: 901, Max: math.Inf(1)})
	return ranges
}

// RangeIndex returns the index in PriceRanges that price falls into.
// Negative prices are counted in the first range.
func RangeIndex(price float64) int {
	for i, r := range PriceRanges {
		if price < r.Max {
			return i
		}
	}
	return len(PriceRanges) - 1
}

// BuildBarChart pairs counts with PriceRanges labels, zero-filling missing ones.
func BuildBarChart(counts []int64) []PriceRangeCount {
	out := make([]PriceRangeCount, len(PriceRanges))
	for i, r := range PriceRanges {
		out[i] = PriceRangeCount{Range: r.Label}
		if i < len(counts) {
			out[i].Count = counts[i]
		}
	}
	return out
}
