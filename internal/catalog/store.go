package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/observability"
)

// ErrCatalogUnavailable is returned when the product document cannot be fetched or parsed.
var ErrCatalogUnavailable = errors.New("catalog: unavailable")

type document struct {
	Products []Product `json:"products" yaml:"products"`
}

// Store fetches the product document at most once per process. A successful load is cached,
// a failed one is retried on the next call.
type Store struct {
	source   string
	client   *http.Client
	validate *validator.Validate

	mu       sync.Mutex
	loaded   bool
	products []Product
	byID     map[string]Product
}

// Option customizes a Store.
type Option func(*Store)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		if c != nil {
			s.client = c
		}
	}
}

// NewStore returns a store reading from source, a filesystem path or an http(s) URL.
func NewStore(source string, opts ...Option) *Store {
	s := &Store{
		source:   strings.TrimSpace(source),
		client:   &http.Client{Timeout: 10 * time.Second},
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the catalog in document order.
func (s *Store) Load(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.products, nil
	}

	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	products, err := s.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	s.products, s.byID, s.loaded = products, byID, true
	observability.FromContext(ctx).Info("catalog loaded",
		zap.String("source", s.source),
		zap.Int("products", len(products)),
	)
	return s.products, nil
}

// Lookup resolves id against the catalog, loading it first if needed.
func (s *Store) Lookup(ctx context.Context, id string) (Product, bool) {
	if _, err := s.Load(ctx); err != nil {
		return Product{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	return p, ok
}

func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	if s.source == "" {
		return nil, errors.New("no source configured")
	}
	if !isURL(s.source) {
		return os.ReadFile(s.source)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch %s: status %d", s.source, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func (s *Store) decode(raw []byte) ([]Product, error) {
	var doc document
	switch strings.ToLower(path.Ext(sourcePath(s.source))) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	if doc.Products == nil {
		return nil, errors.New(`document has no "products" key`)
	}
	seen := make(map[string]struct{}, len(doc.Products))
	for i, p := range doc.Products {
		if err := s.validate.Struct(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return doc.Products, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// sourcePath strips any query so ".../products.yaml?v=2" still picks the yaml decoder.
func sourcePath(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		return source[:i]
	}
	return source
}
