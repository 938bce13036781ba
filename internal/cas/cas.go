// Package cas is a content-addressed store for rendered class documents.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Store keeps zstd-compressed blobs under dir/<hash[:2]>/<hash[2:]>.json.zst.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(hash string) (string, error) {
	if len(hash) != sha256.Size*2 {
		return "", fmt.Errorf("malformed hash %q", hash)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return "", fmt.Errorf("malformed hash %q", hash)
	}
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json.zst"), nil
}

// Write stores content and returns its SHA-256 hash.
// If the content already exists, this is a no-op.
func (s *Store) Write(content []byte) (string, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	p, err := s.path(hash)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating CAS directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	packed := enc.EncodeAll(content, nil)
	enc.Close()

	tmp, err := os.CreateTemp(dir, ".cas-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating CAS temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, werr := tmp.Write(packed)
	if err := errors.Join(werr, tmp.Close()); err != nil {
		return "", fmt.Errorf("writing CAS file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("writing CAS file: %w", err)
	}
	return hash, nil
}

// Read retrieves content by hash.
func (s *Store) Read(hash string) ([]byte, error) {
	p, err := s.path(hash)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("reading CAS file %s: %w", hash, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing CAS file %s: %w", hash, err)
	}
	return data, nil
}

// Clear removes every stored blob.
func (s *Store) Clear() error {
	return os.RemoveAll(s.dir)
}
