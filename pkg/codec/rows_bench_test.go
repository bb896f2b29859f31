//go:build bench
// +build bench

package codec

import (
	"testing"
)

func benchmarkRows(n, fieldCount int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		values := make([]float64, fieldCount)
		for j := range values {
			values[j] = float64(i*fieldCount + j)
		}
		rows[i] = Row{Index: int32(i), Values: values}
	}
	return rows
}

func BenchmarkDecode(b *testing.B) {
	benchmarks := []struct {
		name       string
		rows       int
		fieldCount int
		et         ElementType
	}{
		{name: "day_I32_2", rows: 1440, fieldCount: 2, et: Int32},
		{name: "day_F32_2", rows: 1440, fieldCount: 2, et: Float32},
		{name: "week_F32_32", rows: 10080, fieldCount: 32, et: Float32},
		{name: "month_F32_128", rows: 43200, fieldCount: 128, et: Float32},
	}

	for _, bm := range benchmarks {
		buf, err := Encode(benchmarkRows(bm.rows, bm.fieldCount), bm.et, bm.fieldCount)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(buf)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Decode(buf, bm.et, bm.fieldCount); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	rows := benchmarkRows(10080, 32)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(rows, Float32, 32); err != nil {
			b.Fatal(err)
		}
	}
}
