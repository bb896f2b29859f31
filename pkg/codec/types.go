package codec

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// IndexSize is the size of the leading index field of every row
	IndexSize = 4
	// ValueSize is the size of every value field
	ValueSize = 4
	// MaxFieldCount is the largest field count whose row width fits an int
	MaxFieldCount = (math.MaxInt - IndexSize) / ValueSize
)

// ElementType selects how the value fields of a buffer are interpreted
type ElementType uint8

const (
	// Int32 values are little-endian signed 32-bit integers
	Int32 ElementType = iota + 1
	// Float32 values are little-endian IEEE-754 single precision floats
	Float32
)

// Wire tags of the supported element types
const (
	TagInt32   = "I32"
	TagFloat32 = "F32"
)

// fieldDecoder turns one 4-byte value field into its widened value
type fieldDecoder func(b []byte) float64

var fieldDecoders = map[ElementType]fieldDecoder{
	Int32:   decodeInt32,
	Float32: decodeFloat32,
}

func decodeInt32(b []byte) float64 {
	return float64(int32(binary.LittleEndian.Uint32(b)))
}

func decodeFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// ParseElementType maps a wire tag ("I32" or "F32") to its ElementType
func ParseElementType(tag string) (ElementType, error) {
	switch tag {
	case TagInt32:
		return Int32, nil
	case TagFloat32:
		return Float32, nil
	default:
		return 0, unsupportedType(tag)
	}
}

// String returns the wire tag of the element type
func (t ElementType) String() string {
	switch t {
	case Int32:
		return TagInt32
	case Float32:
		return TagFloat32
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the supported element types
func (t ElementType) Valid() bool {
	_, ok := fieldDecoders[t]
	return ok
}

// MarshalText implements encoding.TextMarshaler
func (t ElementType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, unsupportedElement(t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ElementType) UnmarshalText(text []byte) error {
	parsed, err := ParseElementType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Row is one decoded fixed-width record
type Row struct {
	Index  int32     // Leading index field, usually minutes since the Unix epoch
	Values []float64 // One value per variant, in variant order
}

// Time interprets the index as minutes since the Unix epoch
func (r Row) Time() time.Time {
	return time.Unix(int64(r.Index)*60, 0).UTC()
}

// MinutesOf converts t into the minute index used by maintainer buffers
func MinutesOf(t time.Time) int32 {
	return int32(t.Unix() / 60)
}

// RowWidth returns the encoded size of one row with fieldCount values
func RowWidth(fieldCount int) int {
	return IndexSize + ValueSize*fieldCount
}

// Layout describes how a buffer is split into rows
type Layout struct {
	RowWidth     int `json:"row_width"`
	Rows         int `json:"rows"`
	DroppedBytes int `json:"dropped_bytes"`
}

// ComputeLayout returns the chunking of a buffer of bufLen bytes
func ComputeLayout(bufLen, fieldCount int) (Layout, error) {
	if fieldCount < 0 || fieldCount > MaxFieldCount {
		return Layout{}, invalidFieldCount(fieldCount)
	}
	width := RowWidth(fieldCount)
	return Layout{
		RowWidth:     width,
		Rows:         bufLen / width,
		DroppedBytes: bufLen % width,
	}, nil
}
