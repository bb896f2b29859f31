package codec

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch is one independent decode request
type Batch struct {
	Buf        []byte
	Type       ElementType
	FieldCount int
}

// DecodeBatch decodes independent buffers concurrently, using at most limit
// goroutines (runtime.NumCPU when limit <= 0). Results keep the order of batches.
// If any batch fails, no results are returned.
func DecodeBatch(ctx context.Context, batches []Batch, limit int) ([][]Row, error) {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([][]Row, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := Decode(b.Buf, b.Type, b.FieldCount)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
