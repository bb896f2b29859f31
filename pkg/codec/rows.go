package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode splits buf into rows of fieldCount values of type et.
// Trailing bytes that do not fill a whole row are ignored.
func Decode(buf []byte, et ElementType, fieldCount int) ([]Row, error) {
	parse, ok := fieldDecoders[et]
	if !ok {
		return nil, unsupportedElement(et)
	}
	if fieldCount < 0 || fieldCount > MaxFieldCount {
		return nil, invalidFieldCount(fieldCount)
	}

	width := RowWidth(fieldCount)
	count := len(buf) / width
	rows := make([]Row, count)

	// values of all rows share one backing array
	values := make([]float64, count*fieldCount)

	for i := range rows {
		chunk := buf[i*width : (i+1)*width]
		vals := values[i*fieldCount : (i+1)*fieldCount : (i+1)*fieldCount]
		for j := range vals {
			off := IndexSize + j*ValueSize
			vals[j] = parse(chunk[off : off+ValueSize])
		}
		rows[i] = Row{
			Index:  int32(binary.LittleEndian.Uint32(chunk[0:IndexSize])),
			Values: vals,
		}
	}

	return rows, nil
}

// DecodeVariants decodes buf using a wire type tag and a list of variant names.
// Only the number of variants matters; a nil list is rejected because it cannot
// describe a row width.
func DecodeVariants(buf []byte, typeTag string, variants []string) ([]Row, error) {
	et, err := ParseElementType(typeTag)
	if err != nil {
		return nil, err
	}
	if variants == nil {
		return nil, fmt.Errorf("%w: missing variant list", ErrInvalidFieldCount)
	}
	return Decode(buf, et, len(variants))
}

// Encode writes rows in the binary row format. Every row must carry exactly
// fieldCount values; Int32 values must be integral and fit into an int32.
func Encode(rows []Row, et ElementType, fieldCount int) ([]byte, error) {
	if !et.Valid() {
		return nil, unsupportedElement(et)
	}
	if fieldCount < 0 || fieldCount > MaxFieldCount {
		return nil, invalidFieldCount(fieldCount)
	}

	width := RowWidth(fieldCount)
	buf := make([]byte, len(rows)*width)

	for i, row := range rows {
		if len(row.Values) != fieldCount {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d",
				ErrFieldCountMismatch, i, len(row.Values), fieldCount)
		}

		chunk := buf[i*width : (i+1)*width]
		binary.LittleEndian.PutUint32(chunk[0:], uint32(row.Index))

		for j, v := range row.Values {
			bits, err := encodeValue(v, et)
			if err != nil {
				return nil, fmt.Errorf("row %d value %d: %w", i, j, err)
			}
			binary.LittleEndian.PutUint32(chunk[IndexSize+j*ValueSize:], bits)
		}
	}

	return buf, nil
}

func encodeValue(v float64, et ElementType) (uint32, error) {
	if et == Float32 {
		return math.Float32bits(float32(v)), nil
	}
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v is not an int32", ErrValueOutOfRange, v)
	}
	return uint32(int32(v)), nil
}
