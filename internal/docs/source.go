package docs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jcdickinson/dukedoc/internal/sink"
	"github.com/klauspost/compress/zstd"
)

// Source loads documentation pages by their site-relative ref, e.g.
// "com/example/Widget.html".
type Source interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	String() string
}

// FetchOptions configures HTTP sources.
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
	// CacheDir keeps zstd copies of fetched pages. Empty disables caching.
	CacheDir string
}

// NewSource returns an HTTPSource for http(s) roots and a DirSource otherwise.
func NewSource(root string, opts FetchOptions) Source {
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		return NewHTTPSource(root, opts)
	}
	return &DirSource{Root: root}
}

// DirSource reads pages from a local Javadoc tree. A page missing on disk
// is looked up again with a ".zst" suffix.
type DirSource struct {
	Root string
}

func (s *DirSource) String() string { return s.Root }

func (s *DirSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := sink.ValidatePath(ref); err != nil {
		return nil, fmt.Errorf("invalid page ref %q: %w", ref, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.Root, filepath.FromSlash(ref))
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	rc, zerr := openCompressed(path + ".zst")
	if zerr != nil {
		if errors.Is(zerr, os.ErrNotExist) {
			return nil, err
		}
		return nil, zerr
	}
	return rc, nil
}

// HTTPSource fetches pages below a base URL.
type HTTPSource struct {
	base      string
	userAgent string
	cacheDir  string
	client    *http.Client
}

func NewHTTPSource(base string, opts FetchOptions) *HTTPSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "dukedoc"
	}
	s := &HTTPSource{
		base:      strings.TrimSuffix(base, "/") + "/",
		userAgent: ua,
		client:    &http.Client{Timeout: timeout},
	}
	if opts.CacheDir != "" {
		sum := sha256.Sum256([]byte(s.base))
		s.cacheDir = filepath.Join(opts.CacheDir, hex.EncodeToString(sum[:8]))
	}
	return s
}

func (s *HTTPSource) String() string { return s.base }

func (s *HTTPSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := sink.ValidatePath(ref); err != nil {
		return nil, fmt.Errorf("invalid page ref %q: %w", ref, err)
	}

	if s.cacheDir != "" {
		if rc, err := openCompressed(s.cachePath(ref)); err == nil {
			return rc, nil
		}
	}

	data, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	if s.cacheDir != "" {
		if err := saveCompressed(s.cachePath(ref), data); err != nil {
			slog.WarnContext(ctx, "failed to cache page", "ref", ref, "error", err)
		}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *HTTPSource) fetch(ctx context.Context, ref string) ([]byte, error) {
	url := s.base + ref

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

func (s *HTTPSource) cachePath(ref string) string {
	return filepath.Join(s.cacheDir, filepath.FromSlash(ref)+".zst")
}

type zstdFile struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.f.Close()
}

func openCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	return &zstdFile{dec: dec, f: f}, nil
}

func saveCompressed(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating page cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".page-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		tmp.Close()
		return fmt.Errorf("writing compressed data: %w", err)
	}
	if err := errors.Join(w.Close(), tmp.Close()); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
