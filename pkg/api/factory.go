// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/rowreader/pkg/logging"
	"github.com/ssargent/rowreader/pkg/storage"
)

// DefaultStorageFactory is the default implementation of StorageFactory
type DefaultStorageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &DefaultStorageFactory{}
}

// CreateStorage opens the pebble backed dataset store
func (f *DefaultStorageFactory) CreateStorage(dataDir string, compression storage.Compression) (ClosableStore, error) {
	store, err := storage.NewDefaultStorage(storage.Config{
		DataDir:     dataDir,
		Compression: compression,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store DatasetStore, config ServerConfig, logger *logging.Logger) error {
	return StartServer(ctx, store, config, logger)
}
