package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowreader/pkg/codec"
)

func testSeries() Series {
	return Series{
		Variants: []string{"a", "b", "c"},
		Rows: []codec.Row{
			{Index: 0, Values: []float64{1, 10, 5}},
			{Index: 1, Values: []float64{2, 20, 5}},
			{Index: 2, Values: []float64{3, 30, 5}},
			{Index: 6, Values: []float64{4, 40, 5}},
			{Index: 7, Values: []float64{5, 50, 5}},
		},
	}
}

func mustMap(t *testing.T, s string) *MapOp {
	t.Helper()
	m, err := ParseMap(s)
	require.NoError(t, err)
	return m
}

func mustFilter(t *testing.T, s string) *FilterOp {
	t.Helper()
	f, err := ParseFilter(s)
	require.NoError(t, err)
	return f
}

func TestApply_Empty(t *testing.T) {
	s := testSeries()
	out, err := Apply(s, Request{})
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestApply_Map(t *testing.T) {
	tests := []struct {
		spec string
		want []float64
	}{
		{spec: "sum", want: []float64{16, 27, 38, 49, 60}},
		{spec: "avg", want: []float64{16.0 / 3, 9, 38.0 / 3, 49.0 / 3, 20}},
		{spec: "perc-0", want: []float64{1, 2, 3, 4, 5}},
		{spec: "perc-0.5", want: []float64{5, 5, 5, 5, 5}},
		{spec: "perc-1", want: []float64{10, 20, 30, 40, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			out, err := Apply(testSeries(), Request{Map: mustMap(t, tt.spec)})
			require.NoError(t, err)

			assert.Equal(t, []string{tt.spec}, out.Variants)
			require.Len(t, out.Rows, len(tt.want))
			for i, row := range out.Rows {
				assert.Equal(t, testSeries().Rows[i].Index, row.Index)
				require.Len(t, row.Values, 1)
				assert.InDelta(t, tt.want[i], row.Values[0], 1e-9)
			}
		})
	}
}

func TestApply_MapDoesNotReorderInput(t *testing.T) {
	s := Series{
		Variants: []string{"x", "y"},
		Rows:     []codec.Row{{Index: 1, Values: []float64{9, 1}}},
	}

	_, err := Apply(s, Request{Map: mustMap(t, "perc-0")})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 1}, s.Rows[0].Values)
}

func TestApply_MapWithoutVariants(t *testing.T) {
	s := Series{Variants: []string{}, Rows: []codec.Row{{Index: 1, Values: []float64{}}}}

	_, err := Apply(s, Request{Map: mustMap(t, "avg")})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestApply_Filter(t *testing.T) {
	out, err := Apply(testSeries(), Request{Filter: mustFilter(t, "top-2")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, out.Variants)
	assert.Equal(t, []float64{10, 5}, out.Rows[0].Values)

	out, err = Apply(testSeries(), Request{Filter: mustFilter(t, "bot-1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out.Variants)
	assert.Equal(t, []float64{3}, out.Rows[2].Values)

	// filtering to at least the number of variants keeps the series as is
	out, err = Apply(testSeries(), Request{Filter: mustFilter(t, "top-3")})
	require.NoError(t, err)
	assert.Equal(t, testSeries(), out)
}

func TestApply_FilterThenMap(t *testing.T) {
	out, err := Apply(testSeries(), Request{
		Filter: mustFilter(t, "top-2"),
		Map:    mustMap(t, "sum"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sum"}, out.Variants)
	assert.Equal(t, []float64{15}, out.Rows[0].Values)
	assert.Equal(t, []float64{55}, out.Rows[4].Values)
}

func TestApply_Range(t *testing.T) {
	from, to := int32(1), int32(6)

	out, err := Apply(testSeries(), Request{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, int32(1), out.Rows[0].Index)
	assert.Equal(t, int32(6), out.Rows[2].Index)

	out, err = Apply(testSeries(), Request{From: &to})
	require.NoError(t, err)
	assert.Len(t, out.Rows, 2)
}

func TestApply_Resolution(t *testing.T) {
	out, err := Apply(testSeries(), Request{Resolution: 5})
	require.NoError(t, err)

	// index 0 is skipped because the previous kept index starts at 0
	indexes := make([]int32, len(out.Rows))
	for i, row := range out.Rows {
		indexes[i] = row.Index
	}
	assert.Equal(t, []int32{6}, indexes)

	out, err = Apply(testSeries(), Request{Resolution: 1})
	require.NoError(t, err)
	assert.Len(t, out.Rows, 4)
}

func TestApply_InvalidRequest(t *testing.T) {
	_, err := Apply(testSeries(), Request{Resolution: -5})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
