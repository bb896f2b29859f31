package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/rowreader/pkg/cache"
	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/logging"
	"github.com/ssargent/rowreader/pkg/query"
	"github.com/ssargent/rowreader/pkg/storage"
)

// Server holds the API server state
type Server struct {
	store   DatasetStore
	config  ServerConfig
	metrics *Metrics
	logger  *logging.Logger
	results *cache.LRU[query.Series]
}

// NewServer creates a new API server
func NewServer(store DatasetStore, config ServerConfig, metrics *Metrics, logger *logging.Logger) *Server {
	if !config.DefaultType.Valid() {
		config.DefaultType = codec.Float32
	}
	if logger == nil {
		logger = logging.Noop()
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
		results: cache.NewLRU(config.CacheBytes, seriesSize),
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleDecode godoc
//
//	@Summary		Decode a row buffer
//	@Description	Decode a binary row buffer. Every returned record is the row index followed by one value per variant.
//	@Tags			decode
//	@Accept			octet-stream
//	@Produce		json
//	@Param			type		query		string	false	"Element type (I32 or F32)"
//	@Param			variants	query		string	true	"Comma separated variant names"
//	@Param			map			query		string	false	"sum, avg or perc-<p>"
//	@Param			filter		query		string	false	"top-<n> or bot-<n>"
//	@Param			resolution	query		int		false	"Minimum index distance between rows"
//	@Param			from		query		int		false	"First index"
//	@Param			to			query		int		false	"Last index"
//	@Success		200			{object}	DecodeResponse
//	@Failure		400			{object}	APIResponse
//	@Failure		413			{object}	APIResponse
//	@Router			/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	typeTag := s.typeParam(r)
	variants := variantsParam(r)

	req, err := requestParams(r)
	if err != nil {
		sendErr(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendErr(w, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	rows, err := codec.DecodeVariants(body, typeTag, variants)
	if err != nil {
		s.metrics.RecordDecode(typeLabel(typeTag), 0, 0, false)
		s.logger.LogDecode(r.Context(), typeTag, len(variants), 0, 0, err)
		sendErr(w, err)
		return
	}

	layout, _ := codec.ComputeLayout(len(body), len(variants))
	s.metrics.RecordDecode(typeTag, layout.Rows, layout.DroppedBytes, true)
	s.logger.LogDecode(r.Context(), typeTag, len(variants), layout.Rows, layout.DroppedBytes, nil)

	series, err := query.Apply(query.Series{Variants: variants, Rows: rows}, req)
	if err != nil {
		sendErr(w, err)
		return
	}

	sendSuccess(w, decodeResponse(series, layout))
}

// handlePutDataset godoc
//
//	@Summary		Store a dataset
//	@Description	Store a binary row buffer together with its element type and variant names
//	@Tags			datasets
//	@Accept			octet-stream
//	@Produce		json
//	@Param			name		query		string	false	"Dataset name"
//	@Param			type		query		string	false	"Element type (I32 or F32)"
//	@Param			variants	query		string	true	"Comma separated variant names"
//	@Param			units		query		string	false	"Units of the values"
//	@Success		200			{object}	storage.DatasetMeta
//	@Failure		400			{object}	APIResponse
//	@Failure		500			{object}	APIResponse
//	@Router			/datasets [post]
//	@Security		ApiKeyAuth
func (s *Server) handlePutDataset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	et, err := codec.ParseElementType(s.typeParam(r))
	if err != nil {
		sendErr(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendErr(w, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	meta, err := s.store.Put(r.Context(), storage.DatasetMeta{
		Name:     r.URL.Query().Get("name"),
		Type:     et,
		Variants: variantsParam(r),
		Units:    r.URL.Query().Get("units"),
	}, body)
	s.metrics.RecordStorageOperation("put", err == nil, time.Since(start))
	if err != nil {
		s.logger.LogPut(r.Context(), "", 0, len(body), 0, err)
		sendErr(w, err)
		return
	}

	s.logger.LogPut(r.Context(), meta.ID, meta.Layout.Rows, meta.Size, meta.StoredSize, nil)
	sendSuccess(w, meta)
}

// handleListDatasets godoc
//
//	@Summary		List datasets
//	@Tags			datasets
//	@Produce		json
//	@Param			name	query		string	false	"Only datasets with this name"
//	@Success		200		{array}		storage.DatasetMeta
//	@Failure		500		{object}	APIResponse
//	@Router			/datasets [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	op := "list"
	var metas []storage.DatasetMeta
	var err error
	if name := r.URL.Query().Get("name"); name != "" {
		op = "find"
		metas, err = s.store.FindByName(r.Context(), name)
	} else {
		metas, err = s.store.List(r.Context())
	}
	s.metrics.RecordStorageOperation(op, err == nil, time.Since(start))
	if err != nil {
		sendErr(w, err)
		return
	}
	sendSuccess(w, metas)
}

// handleGetDataset godoc
//
//	@Summary		Get dataset metadata
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset ID"
//	@Success		200	{object}	storage.DatasetMeta
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/datasets/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	meta, err := s.store.Meta(r.Context(), chi.URLParam(r, "id"))
	s.metrics.RecordStorageOperation("meta", err == nil, time.Since(start))
	if err != nil {
		sendErr(w, err)
		return
	}
	sendSuccess(w, meta)
}

// handleGetRows godoc
//
//	@Summary		Decode a stored dataset
//	@Description	Decode a stored dataset and reduce it with the map, filter, resolution and range parameters
//	@Tags			datasets
//	@Produce		json
//	@Param			id			path		string	true	"Dataset ID"
//	@Param			map			query		string	false	"sum, avg or perc-<p>"
//	@Param			filter		query		string	false	"top-<n> or bot-<n>"
//	@Param			resolution	query		int		false	"Minimum index distance between rows"
//	@Param			from		query		int		false	"First index"
//	@Param			to			query		int		false	"Last index"
//	@Success		200			{object}	DecodeResponse
//	@Failure		400			{object}	APIResponse
//	@Failure		404			{object}	APIResponse
//	@Router			/datasets/{id}/rows [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := requestParams(r)
	if err != nil {
		sendErr(w, err)
		return
	}

	series, layout, err := s.datasetSeries(r.Context(), id, req)
	if err != nil {
		sendErr(w, err)
		return
	}

	sendSuccess(w, decodeResponse(series, layout))
}

// datasetSeries decodes a stored dataset and applies req. Results of requests
// without range are cached by their cache key; resolution is applied afterwards.
func (s *Server) datasetSeries(ctx context.Context, id string, req query.Request) (query.Series, codec.Layout, error) {
	cacheable := req.From == nil && req.To == nil
	key := req.CacheKey(id)

	if cacheable {
		if series, ok := s.results.Get(key); ok {
			meta, err := s.store.Meta(ctx, id)
			if err != nil {
				return query.Series{}, codec.Layout{}, err
			}
			series, err = query.Apply(series, query.Request{Resolution: req.Resolution})
			return series, meta.Layout, err
		}
	}

	start := time.Now()
	meta, payload, err := s.store.Get(ctx, id)
	s.metrics.RecordStorageOperation("get", err == nil, time.Since(start))
	if err != nil {
		return query.Series{}, codec.Layout{}, err
	}

	rows, err := codec.Decode(payload, meta.Type, len(meta.Variants))
	s.metrics.RecordDecode(meta.Type.String(), meta.Layout.Rows, meta.Layout.DroppedBytes, err == nil)
	if err != nil {
		s.logger.WithDataset(id).LogDecode(ctx, meta.Type.String(), len(meta.Variants), 0, 0, err)
		return query.Series{}, codec.Layout{}, err
	}
	series := query.Series{Variants: meta.Variants, Rows: rows}

	if cacheable {
		base, err := query.Apply(series, query.Request{Map: req.Map, Filter: req.Filter})
		if err != nil {
			return query.Series{}, codec.Layout{}, err
		}
		s.results.Set(key, base)
		series, err = query.Apply(base, query.Request{Resolution: req.Resolution})
		return series, meta.Layout, err
	}

	series, err = query.Apply(series, req)
	return series, meta.Layout, err
}

// handleGetRaw godoc
//
//	@Summary		Download a stored buffer
//	@Description	Return the original bytes of a dataset. Type and variants are sent in the X-Row-Type and X-Row-Variants headers.
//	@Tags			datasets
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Dataset ID"
//	@Success		200	{string}	byte
//	@Failure		404	{object}	APIResponse
//	@Router			/datasets/{id}/raw [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRaw(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	meta, payload, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	s.metrics.RecordStorageOperation("get", err == nil, time.Since(start))
	if err != nil {
		sendErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.Header().Set("X-Row-Type", meta.Type.String())
	w.Header().Set("X-Row-Variants", strings.Join(meta.Variants, ","))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleDeleteDataset godoc
//
//	@Summary		Delete a dataset
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	APIResponse
//	@Router			/datasets/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	err := s.store.Delete(r.Context(), id)
	s.metrics.RecordStorageOperation("delete", err == nil, time.Since(start))
	s.logger.LogDelete(r.Context(), id, err)
	if err != nil {
		sendErr(w, err)
		return
	}

	s.results.InvalidatePrefix(id + ";")
	sendSuccess(w, map[string]string{"message": "Dataset deleted successfully"})
}

// handleStats godoc
//
//	@Summary		Storage statistics
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	storage.Stats
//	@Failure		500	{object}	APIResponse
//	@Router			/stats [get]
//	@Security		ApiKeyAuth
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		sendErr(w, err)
		return
	}
	s.metrics.UpdateStorageStats(stats.Datasets, stats.StoredBytes)
	sendSuccess(w, stats)
}

// startMetricsUpdater periodically updates storage metrics until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := s.store.Stats(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to refresh storage metrics", "error", err)
				continue
			}
			s.metrics.UpdateStorageStats(stats.Datasets, stats.StoredBytes)
		}
	}
}

// typeLabel bounds the values of the type label of decode metrics
func typeLabel(tag string) string {
	if _, err := codec.ParseElementType(tag); err != nil {
		return "unsupported"
	}
	return tag
}

func (s *Server) typeParam(r *http.Request) string {
	if tag := r.URL.Query().Get("type"); tag != "" {
		return tag
	}
	return s.config.DefaultType.String()
}

// variantsParam returns nil when the parameter is absent and an empty list when
// it is present but empty.
func variantsParam(r *http.Request) []string {
	values, ok := r.URL.Query()["variants"]
	if !ok {
		return nil
	}
	return SplitVariants(values[0])
}

// SplitVariants splits a comma separated list of variant names. An empty
// string yields an empty, non-nil list.
func SplitVariants(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func requestParams(r *http.Request) (query.Request, error) {
	q := r.URL.Query()
	return query.ParseRequest(q.Get("map"), q.Get("filter"), q.Get("resolution"), q.Get("from"), q.Get("to"))
}

func decodeResponse(series query.Series, layout codec.Layout) DecodeResponse {
	return DecodeResponse{
		Variants: series.Variants,
		Layout:   layout,
		Rows:     codec.Records(series.Rows),
	}
}

func seriesSize(s query.Series) int64 {
	size := int64(len(s.Variants)) * 16
	for _, row := range s.Rows {
		size += 32 + int64(len(row.Values))*8
	}
	return size
}
