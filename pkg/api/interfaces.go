// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/rowreader/pkg/logging"
	"github.com/ssargent/rowreader/pkg/storage"
)

// ClosableStore is a DatasetStore that owns resources
type ClosableStore interface {
	DatasetStore
	Close() error
}

// StorageFactory creates dataset stores
type StorageFactory interface {
	// CreateStorage opens the dataset store in dataDir
	CreateStorage(dataDir string, compression storage.Compression) (ClosableStore, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, store DatasetStore, config ServerConfig, logger *logging.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
