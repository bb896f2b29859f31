package codec_test

import (
	"fmt"
	"log"

	"github.com/ssargent/rowreader/pkg/codec"
)

// ExampleDecodeVariants decodes two I32 rows with two variants each
func ExampleDecodeVariants() {
	buf := []byte{
		1, 0, 0, 0, 10, 0, 0, 0, 20, 0, 0, 0,
		2, 0, 0, 0, 30, 0, 0, 0, 40, 0, 0, 0,
	}

	rows, err := codec.DecodeVariants(buf, "I32", []string{"read", "write"})
	if err != nil {
		log.Fatal(err)
	}

	for _, row := range rows {
		fmt.Printf("index=%d values=%v\n", row.Index, row.Values)
	}

	// Output:
	// index=1 values=[10 20]
	// index=2 values=[30 40]
}

// ExampleEncode builds a buffer and reads it back
func ExampleEncode() {
	rows := []codec.Row{{Index: 5, Values: []float64{2.5}}}

	buf, err := codec.Encode(rows, codec.Float32, 1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Encoded %d bytes: % x\n", len(buf), buf)

	// Trailing bytes are ignored
	decoded, err := codec.Decode(append(buf, 0xFF, 0xFF), codec.Float32, 1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Decoded: %+v\n", decoded)

	// Output:
	// Encoded 8 bytes: 05 00 00 00 00 00 20 40
	// Decoded: [{Index:5 Values:[2.5]}]
}

// ExampleDecodeVariants_unsupportedType shows the error for an unknown type tag
func ExampleDecodeVariants_unsupportedType() {
	_, err := codec.DecodeVariants(nil, "F64", []string{"average"})
	fmt.Println(err)

	// Output:
	// unsupported element type: "F64"
}

// ExampleComputeLayout reports how a buffer will be chunked
func ExampleComputeLayout() {
	layout, err := codec.ComputeLayout(27, 2)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("row width %d, rows %d, dropped %d\n", layout.RowWidth, layout.Rows, layout.DroppedBytes)

	// Output:
	// row width 12, rows 2, dropped 3
}
