package docs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src Source, ref string) (string, error) {
	t.Helper()
	rc, err := src.Open(context.Background(), ref)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data), nil
}

func TestDirSourceCompressedFallback(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Plain.html"), []byte("plain"), 0644))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	packed := enc.EncodeAll([]byte("packed"), nil)
	require.NoError(t, enc.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Packed.html.zst"), packed, 0644))

	src := &DirSource{Root: root}

	got, err := readAll(t, src, "a/Plain.html")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	got, err = readAll(t, src, "a/Packed.html")
	require.NoError(t, err)
	assert.Equal(t, "packed", got)

	_, err = readAll(t, src, "a/Missing.html")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = readAll(t, src, "../escape.html")
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "dukedoc/test", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/api/a/B.html":
			io.WriteString(w, "<html>B</html>")
		default:
			http.Error(w, "no such page", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	src := NewSource(srv.URL+"/api", FetchOptions{
		Timeout:   5 * time.Second,
		UserAgent: "dukedoc/test",
		CacheDir:  cacheDir,
	})
	require.IsType(t, &HTTPSource{}, src)

	for range 2 {
		got, err := readAll(t, src, "a/B.html")
		require.NoError(t, err)
		assert.Equal(t, "<html>B</html>", got)
	}
	assert.Equal(t, int32(1), hits.Load(), "second open should come from the page cache")

	_, err := readAll(t, src, "a/Missing.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "no such page")
}

func TestHTTPSourceWithoutCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, "page")
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, FetchOptions{})
	for range 2 {
		_, err := readAll(t, src, "p/Q.html")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestNewSourcePicksDirectory(t *testing.T) {
	t.Parallel()

	src := NewSource("testdata", FetchOptions{})
	assert.IsType(t, &DirSource{}, src)
	assert.Equal(t, "testdata", src.String())
}
