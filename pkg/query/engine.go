package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/ssargent/rowreader/pkg/codec"
)

// Apply reduces a series according to the request. Stages run in the order
// range, filter, map, resolution. The input series is never modified.
func Apply(s Series, req Request) (Series, error) {
	if err := req.Validate(); err != nil {
		return Series{}, err
	}
	if s.Rows == nil {
		s.Rows = []codec.Row{}
	}

	s = applyRange(s, req.From, req.To)

	if req.Filter != nil {
		s = applyFilter(s, *req.Filter)
	}

	if req.Map != nil {
		var err error
		if s, err = applyMap(s, req.Map); err != nil {
			return Series{}, err
		}
	}

	if req.Resolution > 0 {
		s = applyResolution(s, req.Resolution)
	}

	return s, nil
}

func applyRange(s Series, from, to *int32) Series {
	if from == nil && to == nil {
		return s
	}

	rows := make([]codec.Row, 0, len(s.Rows))
	for _, row := range s.Rows {
		if from != nil && row.Index < *from {
			continue
		}
		if to != nil && row.Index > *to {
			continue
		}
		rows = append(rows, row)
	}
	return Series{Variants: s.Variants, Rows: rows}
}

// applyFilter ranks variants by the sum of their column
func applyFilter(s Series, f FilterOp) Series {
	if len(s.Variants) <= f.Count {
		return s
	}

	sums := make([]float64, len(s.Variants))
	for _, row := range s.Rows {
		for i := range sums {
			sums[i] += row.Values[i]
		}
	}

	order := make([]int, len(s.Variants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if f.Top {
			return sums[order[a]] > sums[order[b]]
		}
		return sums[order[a]] < sums[order[b]]
	})
	keep := order[:f.Count]

	variants := make([]string, len(keep))
	for i, col := range keep {
		variants[i] = s.Variants[col]
	}

	rows := make([]codec.Row, len(s.Rows))
	for r, row := range s.Rows {
		values := make([]float64, len(keep))
		for i, col := range keep {
			values[i] = row.Values[col]
		}
		rows[r] = codec.Row{Index: row.Index, Values: values}
	}

	return Series{Variants: variants, Rows: rows}
}

func applyMap(s Series, m *MapOp) (Series, error) {
	n := len(s.Variants)
	if n == 0 {
		return Series{}, fmt.Errorf("%w: cannot apply %s to a series without variants", ErrInvalidQuery, m)
	}

	var fold func(values []float64) float64
	switch m.Kind {
	case MapSum:
		fold = sum
	case MapAvg:
		fold = func(values []float64) float64 { return sum(values) / float64(n) }
	case MapPercentile:
		if m.Percentile < 0 || m.Percentile > 1 {
			return Series{}, fmt.Errorf("%w: percentile %v must be within [0, 1]", ErrInvalidQuery, m.Percentile)
		}
		pos := int(math.Round(m.Percentile * float64(n-1)))
		sorted := make([]float64, n)
		fold = func(values []float64) float64 {
			copy(sorted, values)
			sort.Float64s(sorted)
			return sorted[pos]
		}
	default:
		return Series{}, fmt.Errorf("%w: unknown map kind %d", ErrInvalidQuery, m.Kind)
	}

	rows := make([]codec.Row, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = codec.Row{Index: row.Index, Values: []float64{fold(row.Values)}}
	}
	return Series{Variants: []string{m.String()}, Rows: rows}, nil
}

func applyResolution(s Series, resolution int32) Series {
	rows := make([]codec.Row, 0, len(s.Rows))
	var prev int64
	for _, row := range s.Rows {
		if int64(row.Index)-prev >= int64(resolution) {
			prev = int64(row.Index)
			rows = append(rows, row)
		}
	}
	return Series{Variants: s.Variants, Rows: rows}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
