package cache

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	entryExt     = ".entry"
	entryVersion = "v1"
)

// FileCache stores one file per key in a flat directory. Each file starts
// with a header line "v1 <expiry unix nanos> <key>" followed by the raw
// value. An expiry of 0 never expires.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates a file-based cache in dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the value for key. Entries that are expired, malformed or
// written for a colliding key are removed and reported as a miss.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	storedKey, expires, data, ok := decodeEntry(raw)
	if !ok || storedKey != key || (expires > 0 && c.now().UnixNano() > expires) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores data under key. The file is replaced atomically so that
// concurrent readers never see a partial entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}

	tmp, err := os.CreateTemp(c.dir, "*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s %d %s\n", entryVersion, expires, key)
	w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Delete removes key. Deleting a missing key is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry and any leftover temporary file. It returns
// the number of entries removed.
func (c *FileCache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != entryExt && ext != ".tmp") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return removed, err
		}
		if ext == entryExt {
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, Hash([]byte(key))+entryExt)
}

func decodeEntry(raw []byte) (key string, expires int64, data []byte, ok bool) {
	header, data, found := bytes.Cut(raw, []byte("\n"))
	if !found {
		return "", 0, nil, false
	}
	fields := bytes.SplitN(header, []byte(" "), 3)
	if len(fields) != 3 || string(fields[0]) != entryVersion {
		return "", 0, nil, false
	}
	expires, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return "", 0, nil, false
	}
	return string(fields[2]), expires, data, true
}

var _ Cache = (*FileCache)(nil)
