package dataset

import (
	"math"
	"sort"
)

// NumericSummary holds descriptive statistics for one numeric column.
// Std is the sample standard deviation; quartiles use linear interpolation
// between closest ranks.
type NumericSummary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

// Describe computes a NumericSummary for a numeric column. The second return
// is false when the column is not numeric or has no non-missing cells.
func Describe(c Column) (NumericSummary, bool) {
	if c.Kind != KindNumeric {
		return NumericSummary{}, false
	}
	var values []float64
	for _, cell := range c.Cells {
		if !cell.Missing {
			values = append(values, cell.Number)
		}
	}
	if len(values) == 0 {
		return NumericSummary{}, false
	}
	sort.Float64s(values)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	std := 0.0
	if len(values) > 1 {
		ss := 0.0
		for _, v := range values {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(len(values)-1))
	}

	return NumericSummary{
		Count:  len(values),
		Mean:   mean,
		Std:    std,
		Min:    values[0],
		P25:    quantile(values, 0.25),
		Median: quantile(values, 0.5),
		P75:    quantile(values, 0.75),
		Max:    values[len(values)-1],
	}, true
}

// quantile expects sorted values and interpolates linearly between ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
