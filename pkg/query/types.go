package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ssargent/rowreader/pkg/codec"
)

// ErrInvalidQuery is returned for malformed map, filter or range parameters
var ErrInvalidQuery = errors.New("invalid query")

// Series is a decoded buffer together with the names of its variants
type Series struct {
	Variants []string    `json:"variants"`
	Rows     []codec.Row `json:"-"`
}

// MapKind selects how the values of a row are folded into one value
type MapKind int

const (
	MapSum MapKind = iota + 1
	MapAvg
	MapPercentile
)

// MapOp folds all variants of every row into a single value
type MapOp struct {
	Kind       MapKind
	Percentile float64 // Only used by MapPercentile, in [0, 1]
	spec       string
}

// String returns the textual form of the operation (e.g. "sum", "perc-0.95")
func (m *MapOp) String() string {
	switch {
	case m == nil:
		return ""
	case m.spec != "":
		return m.spec
	case m.Kind == MapSum:
		return "sum"
	case m.Kind == MapAvg:
		return "avg"
	default:
		return "perc-" + strconv.FormatFloat(m.Percentile, 'f', -1, 64)
	}
}

var percRegex = regexp.MustCompile(`^perc-(\d+(?:\.\d+)?)$`)

// ParseMap parses "sum", "avg" or "perc-<p>". An empty string yields nil.
func ParseMap(s string) (*MapOp, error) {
	switch s {
	case "":
		return nil, nil
	case "sum":
		return &MapOp{Kind: MapSum, spec: s}, nil
	case "avg":
		return &MapOp{Kind: MapAvg, spec: s}, nil
	}

	m := percRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: unknown map %q", ErrInvalidQuery, s)
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil || p > 1 {
		return nil, fmt.Errorf("%w: percentile %q must be within [0, 1]", ErrInvalidQuery, m[1])
	}
	return &MapOp{Kind: MapPercentile, Percentile: p, spec: s}, nil
}

// FilterOp keeps the Count variants with the highest (Top) or lowest column sums
type FilterOp struct {
	Top   bool
	Count int
}

// String returns the textual form of the filter (e.g. "top-10")
func (f *FilterOp) String() string {
	if f == nil {
		return ""
	}
	if f.Top {
		return fmt.Sprintf("top-%d", f.Count)
	}
	return fmt.Sprintf("bot-%d", f.Count)
}

var filterRegex = regexp.MustCompile(`^(top|bot)-(\d+)$`)

// ParseFilter parses "top-<n>" or "bot-<n>". An empty string yields nil.
func ParseFilter(s string) (*FilterOp, error) {
	if s == "" {
		return nil, nil
	}

	m := filterRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidQuery, s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: filter count %q must be positive", ErrInvalidQuery, m[2])
	}
	return &FilterOp{Top: m[1] == "top", Count: n}, nil
}

// Request describes how a stored series is reduced before it is returned
type Request struct {
	Map        *MapOp
	Filter     *FilterOp
	Resolution int32  // Minimum index distance between kept rows, 0 keeps all
	From       *int32 // Inclusive lower index bound
	To         *int32 // Inclusive upper index bound
}

// Validate checks if the request is properly formed
func (r Request) Validate() error {
	if r.Resolution < 0 {
		return fmt.Errorf("%w: resolution must not be negative", ErrInvalidQuery)
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("%w: range start %d is after end %d", ErrInvalidQuery, *r.From, *r.To)
	}
	return nil
}

// CacheKey returns the key under which the result for metric is cached
func (r Request) CacheKey(metric string) string {
	return fmt.Sprintf("%s;%s;%s", metric, r.Map.String(), r.Filter.String())
}

// ParseRequest builds a Request from its textual parameters. Empty strings
// leave the corresponding stage disabled.
func ParseRequest(mapSpec, filterSpec, resolution, from, to string) (Request, error) {
	var req Request
	var err error

	if req.Map, err = ParseMap(mapSpec); err != nil {
		return Request{}, err
	}
	if req.Filter, err = ParseFilter(filterSpec); err != nil {
		return Request{}, err
	}
	if resolution != "" {
		res, err := parseIndex("resolution", resolution)
		if err != nil {
			return Request{}, err
		}
		req.Resolution = *res
	}
	if req.From, err = parseIndex("from", from); err != nil {
		return Request{}, err
	}
	if req.To, err = parseIndex("to", to); err != nil {
		return Request{}, err
	}

	return req, req.Validate()
}

func parseIndex(name, s string) (*int32, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not an int32", ErrInvalidQuery, name, s)
	}
	v := int32(n)
	return &v, nil
}
