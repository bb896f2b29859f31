package codec

import (
	"encoding/json"
	"fmt"
	"math"
)

// Value is a widened field value with a JSON form that also covers the
// non-finite results of Float32 fields: NaN, +Inf and -Inf are written as the
// strings "NaN", "+Inf" and "-Inf".
type Value float64

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*v = Value(math.NaN())
		case "+Inf", "Inf":
			*v = Value(math.Inf(1))
		case "-Inf":
			*v = Value(math.Inf(-1))
		default:
			return fmt.Errorf("invalid value %q", s)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// Record is the host form of a row: the index followed by the row values.
type Record []Value

// Records converts rows into records. Every int32 index is exactly
// representable in the leading element.
func Records(rows []Row) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		rec := make(Record, 1+len(row.Values))
		rec[0] = Value(row.Index)
		for j, v := range row.Values {
			rec[j+1] = Value(v)
		}
		records[i] = rec
	}
	return records
}

// RowsFromRecords is the inverse of Records. Every record must hold an integral
// int32 index and exactly fieldCount values.
func RowsFromRecords(records []Record, fieldCount int) ([]Row, error) {
	rows := make([]Row, len(records))
	for i, rec := range records {
		if len(rec) != 1+fieldCount {
			return nil, fmt.Errorf("%w: record %d has %d values, want %d",
				ErrFieldCountMismatch, i, len(rec)-1, fieldCount)
		}
		idx := float64(rec[0])
		if idx != math.Trunc(idx) || idx < math.MinInt32 || idx > math.MaxInt32 {
			return nil, fmt.Errorf("%w: record %d index %v is not an int32", ErrValueOutOfRange, i, idx)
		}
		values := make([]float64, fieldCount)
		for j := range values {
			values[j] = float64(rec[j+1])
		}
		rows[i] = Row{Index: int32(idx), Values: values}
	}
	return rows, nil
}
