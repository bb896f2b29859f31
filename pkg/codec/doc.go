// Package codec decodes and encodes fixed-width binary row buffers.
//
// A row buffer is a flat byte sequence produced by a metrics maintainer. Every row
// starts with a 32-bit index (usually a timestamp in minutes since the Unix epoch)
// followed by one 4-byte value per variant. All variants in a buffer share the same
// element type.
//
// # Row Format
//
// Rows are laid out back to back with no header or padding:
//
//	[Index(4)][Value_1(4)]...[Value_N(4)]
//
// Fields:
//   - Index: signed 32-bit integer (little-endian)
//   - Value_i: signed 32-bit integer or IEEE-754 single precision float
//     (little-endian), selected by the ElementType of the buffer
//
// N is the number of variants the caller asks for. The variant names are not part
// of the binary layout, only their count is. The row width is:
//
//	4 + 4*N bytes
//
// # Chunking
//
// The buffer is split from offset 0 into consecutive rows of exactly one row width.
// Trailing bytes that do not form a complete row are dropped without error, so a
// buffer shorter than one row decodes to an empty slice. Use ComputeLayout to find
// out how many bytes a decode will ignore.
//
// # Usage
//
//	rows, err := codec.DecodeVariants(buf, "F32", []string{"average", "peak"})
//	if err != nil {
//	    return err
//	}
//	for _, row := range rows {
//	    fmt.Println(row.Time(), row.Values)
//	}
//
// # Error Handling
//
// An unsupported element type is a configuration mismatch, not a data error: the
// whole call fails with ErrUnsupportedType before any byte is read. A missing
// variant list or a negative field count fails with ErrInvalidFieldCount. No rows are
// ever returned together with an error.
//
// # Precision
//
// Row.Index keeps the full int32 range. Values are widened to float64, which
// represents every int32 and every float32 exactly, so widening never loses
// information. Hosts that render the index as a float64 (JSON, JavaScript) are also
// exact for the whole int32 range.
//
// # Thread Safety
//
// Decode and Encode are pure functions. They never mutate or retain the input and
// are safe for concurrent use.
package codec
