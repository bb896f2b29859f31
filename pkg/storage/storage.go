package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/rowreader/pkg/codec"
)

// Errors
var (
	ErrNotFound    = &Error{"dataset not found"}
	ErrInvalidID   = &Error{"invalid dataset id"}
	ErrCorruptBlob = &Error{"corrupt dataset blob"}
	ErrClosed      = &Error{"storage is closed"}
	ErrInvalidName = &Error{"invalid dataset name"}
)

// Error represents a storage error
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	metaPrefix = []byte("meta/")
	blobPrefix = []byte("blob/")
	namePrefix = []byte("name/")
)

// DatasetMeta describes a stored row buffer
type DatasetMeta struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Type        codec.ElementType `json:"type"`
	Variants    []string          `json:"variants"`
	Units       string            `json:"units,omitempty"`
	Layout      codec.Layout      `json:"layout"`
	Compression Compression       `json:"compression"`
	Size        int               `json:"size"`
	StoredSize  int               `json:"stored_size"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Stats summarizes the contents of the store
type Stats struct {
	Datasets    int    `json:"datasets"`
	Rows        int64  `json:"rows"`
	RawBytes    int64  `json:"raw_bytes"`
	StoredBytes int64  `json:"stored_bytes"`
	DiskUsage   uint64 `json:"disk_usage"`
}

// Config holds configuration for the dataset store
type Config struct {
	DataDir     string      // Directory of the pebble database
	Compression Compression // Compression for new datasets
}

// DefaultStorage keeps datasets in a pebble database. It is safe for
// concurrent use; Close waits for running operations.
type DefaultStorage struct {
	mu          sync.RWMutex // guards db
	db          *pebble.DB
	compression Compression
}

// NewDefaultStorage opens (or creates) the dataset store in cfg.DataDir
func NewDefaultStorage(cfg Config) (*DefaultStorage, error) {
	compression, err := ParseCompression(string(cfg.Compression))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := pebble.Open(cfg.DataDir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble: %w", err)
	}
	return &DefaultStorage{db: db, compression: compression}, nil
}

// Put stores payload under a new id. The element type and variants of meta are
// validated before anything is written; ID, Layout, sizes and CreatedAt are
// filled in by the store.
func (s *DefaultStorage) Put(ctx context.Context, meta DatasetMeta, payload []byte) (*DatasetMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.IndexByte(meta.Name, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, meta.Name)
	}
	if !meta.Type.Valid() {
		return nil, fmt.Errorf("%w: ElementType(%d)", codec.ErrUnsupportedType, uint8(meta.Type))
	}
	if meta.Variants == nil {
		return nil, fmt.Errorf("%w: missing variant list", codec.ErrInvalidFieldCount)
	}

	layout, err := codec.ComputeLayout(len(payload), len(meta.Variants))
	if err != nil {
		return nil, err
	}

	framed, err := frame(payload, s.compression)
	if err != nil {
		return nil, err
	}

	id := ksuid.New()
	meta.ID = id.String()
	meta.Layout = layout
	meta.Compression = s.compression
	meta.Size = len(payload)
	meta.StoredSize = len(framed)
	meta.CreatedAt = id.Time().UTC()

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(key(metaPrefix, id), metaJSON, nil); err != nil {
		return nil, err
	}
	if err := batch.Set(key(blobPrefix, id), framed, nil); err != nil {
		return nil, err
	}
	if meta.Name != "" {
		if err := batch.Set(nameKey(meta.Name, id), nil, nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to commit dataset: %w", err)
	}

	return &meta, nil
}

// Meta returns the metadata of a dataset
func (s *DefaultStorage) Meta(ctx context.Context, id string) (*DatasetMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta(kid)
}

func (s *DefaultStorage) meta(id ksuid.KSUID) (*DatasetMeta, error) {
	data, err := s.read(key(metaPrefix, id))
	if err != nil {
		return nil, err
	}

	var meta DatasetMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata of %s: %w", id, err)
	}
	return &meta, nil
}

// Get returns the metadata and the original payload of a dataset
func (s *DefaultStorage) Get(ctx context.Context, id string) (*DatasetMeta, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	kid, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := s.meta(kid)
	if err != nil {
		return nil, nil, err
	}

	framed, err := s.read(key(blobPrefix, kid))
	if err != nil {
		return nil, nil, err
	}

	payload, err := unframe(framed, meta.Compression)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset %s: %w", id, err)
	}
	return meta, payload, nil
}

// List returns the metadata of all datasets, oldest first
func (s *DefaultStorage) List(ctx context.Context) ([]DatasetMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(ctx)
}

func (s *DefaultStorage) list(ctx context.Context) ([]DatasetMeta, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: metaPrefix,
		UpperBound: prefixEnd(metaPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	metas := []DatasetMeta{}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var meta DatasetMeta
		if err := json.Unmarshal(iter.Value(), &meta); err != nil {
			return nil, fmt.Errorf("failed to parse metadata at %q: %w", iter.Key(), err)
		}
		metas = append(metas, meta)
	}
	return metas, iter.Error()
}

// FindByName returns the metadata of all datasets named name, oldest first
func (s *DefaultStorage) FindByName(ctx context.Context, name string) ([]DatasetMeta, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	prefix := nameKey(name, ksuid.Nil)[:len(namePrefix)+len(name)+1]
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(prefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: name index entry %q", ErrCorruptBlob, iter.Key())
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	metas := make([]DatasetMeta, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta, err := s.meta(id)
		if errors.Is(err, ErrNotFound) {
			// deleted since the scan
			continue
		}
		if err != nil {
			return nil, err
		}
		metas = append(metas, *meta)
	}
	return metas, nil
}

// Delete removes a dataset
func (s *DefaultStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kid, err := parseID(id)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := s.meta(kid)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Delete(key(metaPrefix, kid), nil); err != nil {
		return err
	}
	if err := batch.Delete(key(blobPrefix, kid), nil); err != nil {
		return err
	}
	if meta.Name != "" {
		if err := batch.Delete(nameKey(meta.Name, kid), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// Stats returns aggregated information about the stored datasets
func (s *DefaultStorage) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Datasets: len(metas)}
	for _, m := range metas {
		stats.Rows += int64(m.Layout.Rows)
		stats.RawBytes += int64(m.Size)
		stats.StoredBytes += int64(m.StoredSize)
	}
	stats.DiskUsage = s.db.Metrics().DiskSpaceUsage()
	return stats, nil
}

// Close closes the underlying database
func (s *DefaultStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// read copies the value of k out of pebble. Callers hold mu.
func (s *DefaultStorage) read(k []byte) ([]byte, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	data, closer, err := s.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), data...), nil
}

func parseID(id string) (ksuid.KSUID, error) {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return kid, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	return append(append([]byte(nil), prefix...), id.Bytes()...)
}

// nameKey is name/<name>\x00<id>. Names never contain NUL, so a scan of
// name/<name>\x00 never reaches a longer name sharing the prefix.
func nameKey(name string, id ksuid.KSUID) []byte {
	k := make([]byte, 0, len(namePrefix)+len(name)+1+len(id))
	k = append(k, namePrefix...)
	k = append(k, name...)
	k = append(k, 0)
	return append(k, id.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with prefix
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}
