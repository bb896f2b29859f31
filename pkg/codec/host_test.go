package codec

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSON(t *testing.T) {
	records := []Record{{1, 2.5, Value(math.NaN()), Value(math.Inf(1)), Value(math.Inf(-1))}}

	data, err := json.Marshal(records)
	require.NoError(t, err)
	assert.Equal(t, `[[1,2.5,"NaN","+Inf","-Inf"]]`, string(data))

	var back []Record
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, Value(1), back[0][0])
	assert.Equal(t, Value(2.5), back[0][1])
	assert.True(t, math.IsNaN(float64(back[0][2])))
	assert.True(t, math.IsInf(float64(back[0][3]), 1))
	assert.True(t, math.IsInf(float64(back[0][4]), -1))

	var v Value
	assert.Error(t, json.Unmarshal([]byte(`"one"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
}

func TestValue_JSONMatchesFloat64(t *testing.T) {
	data, err := json.Marshal(Records([]Row{{Index: 29000000, Values: []float64{1234567}}}))
	require.NoError(t, err)
	assert.Equal(t, `[[29000000,1234567]]`, string(data))

	for _, f := range []float64{0, -0.5, 1e6, 123456789.25, 1e20, 1e21, 1e-6, 1e-7, -3.4028234663852886e+38} {
		want, err := json.Marshal(f)
		require.NoError(t, err)
		got, err := json.Marshal(Value(f))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), "value %v", f)
	}
}

func TestRecords(t *testing.T) {
	rows := []Row{
		{Index: math.MaxInt32, Values: []float64{1, -2}},
		{Index: math.MinInt32, Values: []float64{0.5, 3}},
	}

	records := Records(rows)
	assert.Equal(t, []Record{
		{Value(math.MaxInt32), 1, -2},
		{Value(math.MinInt32), 0.5, 3},
	}, records)

	back, err := RowsFromRecords(records, 2)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}

func TestRecords_IndexOnly(t *testing.T) {
	records := Records([]Row{{Index: 9, Values: []float64{}}})
	assert.Equal(t, []Record{{9}}, records)
}

func TestRowsFromRecords_Errors(t *testing.T) {
	_, err := RowsFromRecords([]Record{{1, 2}}, 2)
	assert.True(t, errors.Is(err, ErrFieldCountMismatch))

	_, err = RowsFromRecords([]Record{{1.5, 2}}, 1)
	assert.True(t, errors.Is(err, ErrValueOutOfRange))

	_, err = RowsFromRecords([]Record{{Value(math.MaxInt32) + 1, 2}}, 1)
	assert.True(t, errors.Is(err, ErrValueOutOfRange))
}
