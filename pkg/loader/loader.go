// Package loader reads a catalog from a local file or an http(s) URL and
// decodes it into a model.Catalog.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/metrics"
	"github.com/vanderheijden86/catalogview/pkg/model"
)

// CatalogEnvVar names the environment variable holding a catalog path or URL.
const CatalogEnvVar = "CV_CATALOG"

// PreferredCatalogPaths is the discovery order, relative to the working
// directory, when no source was given.
var PreferredCatalogPaths = []string{"catalog.json", filepath.Join("docs", "catalog.json")}

// DefaultTimeout bounds a URL fetch when the context carries no deadline.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes caps the size of a catalog payload (64MB).
const DefaultMaxBytes = 64 << 20

// ErrInvalidFormat is model.ErrInvalidFormat, re-exported so callers of Load
// need not import model to test for it.
var ErrInvalidFormat = model.ErrInvalidFormat

// ErrNoCatalog is returned by Resolve when discovery finds nothing.
var ErrNoCatalog = errors.New("no catalog found")

// StatusError reports a non-2xx response from a catalog URL.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

// Options tunes Load. The zero value is usable.
type Options struct {
	// Client is used for URL sources; nil means http.DefaultClient.
	Client *http.Client
	// Timeout applies to URL sources when ctx has no deadline.
	Timeout time.Duration
	// MaxBytes caps the payload; 0 means DefaultMaxBytes.
	MaxBytes int64
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve picks the catalog source: explicit first, then CV_CATALOG, then
// the first existing entry of PreferredCatalogPaths under dir (cwd when
// empty).
func Resolve(explicit, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(CatalogEnvVar); env != "" {
		return env, nil
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	return FindCatalogPath(dir)
}

// FindCatalogPath returns the first non-empty catalog file under dir.
func FindCatalogPath(dir string) (string, error) {
	for _, rel := range PreferredCatalogPaths {
		path := filepath.Join(dir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (tried %s)", ErrNoCatalog, dir, strings.Join(PreferredCatalogPaths, ", "))
}

// Load reads and decodes the catalog at source with default options.
func Load(ctx context.Context, source string) (*model.Catalog, error) {
	return LoadWithOptions(ctx, source, Options{})
}

// LoadWithOptions reads and decodes the catalog at source. Decode failures
// wrap ErrInvalidFormat; HTTP failures return a *StatusError. There is no
// retry.
func LoadWithOptions(ctx context.Context, source string, opts Options) (*model.Catalog, error) {
	defer metrics.Timer(metrics.CatalogLoad)()
	start := time.Now()

	var (
		data []byte
		err  error
	)
	if IsURL(source) {
		data, err = fetch(ctx, source, opts)
	} else {
		data, err = readFile(source, opts)
	}
	if err != nil {
		return nil, err
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	debug.Log("loaded %d indicators, %d tags from %s in %v", cat.Len(), len(cat.Tags), source, time.Since(start))
	return cat, nil
}

// Parse decodes a catalog payload, tolerating a UTF-8 BOM.
func Parse(data []byte) (*model.Catalog, error) {
	defer metrics.Timer(metrics.CatalogDecode)()
	return model.Decode(stripBOM(data))
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) (*model.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func readFile(path string, opts Options) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return readLimited(f, path, opts.maxBytes())
}

func fetch(ctx context.Context, url string, opts Options) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return readLimited(resp.Body, url, opts.maxBytes())
}

func readLimited(r io.Reader, source string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("read %s: catalog exceeds %d bytes", source, limit)
	}
	return data, nil
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes > 0 {
		return o.MaxBytes
	}
	return DefaultMaxBytes
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
