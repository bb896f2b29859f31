package api

import (
	"context"

	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DecodeResponse is the payload of a decoded buffer. Every record is the row
// index followed by its values.
type DecodeResponse struct {
	Variants []string       `json:"variants"`
	Layout   codec.Layout   `json:"layout"`
	Rows     []codec.Record `json:"rows"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	DefaultType  codec.ElementType // Used when a request has no type parameter
	MaxBodyBytes int64
	CacheBytes   int64 // Size of the query result cache, 0 disables it
}

// DatasetStore defines the dataset operations used by the API
type DatasetStore interface {
	Put(ctx context.Context, meta storage.DatasetMeta, payload []byte) (*storage.DatasetMeta, error)
	Meta(ctx context.Context, id string) (*storage.DatasetMeta, error)
	Get(ctx context.Context, id string) (*storage.DatasetMeta, []byte, error)
	List(ctx context.Context) ([]storage.DatasetMeta, error)
	FindByName(ctx context.Context, name string) ([]storage.DatasetMeta, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*storage.Stats, error)
}
