package testsupport

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-renderchain/pkg/cache"
)

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// CountingFS wraps an fs.FS and counts Stat and Open calls, so tests can
// assert that cached lookups never touch the filesystem.
type CountingFS struct {
	FS    fs.FS
	stats atomic.Int64
	opens atomic.Int64
}

// NewCountingFS wraps files.
func NewCountingFS(files fs.FS) *CountingFS {
	return &CountingFS{FS: files}
}

func (c *CountingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.FS.Open(name)
}

func (c *CountingFS) Stat(name string) (fs.FileInfo, error) {
	c.stats.Add(1)
	return fs.Stat(c.FS, name)
}

// Stats returns how many Stat calls were made.
func (c *CountingFS) Stats() int { return int(c.stats.Load()) }

// Opens returns how many Open calls were made.
func (c *CountingFS) Opens() int { return int(c.opens.Load()) }

// RecordingCache is a map backed cache.Cache that records traffic.
type RecordingCache struct {
	mu      sync.Mutex
	entries map[string]any
	gets    int
	hits    int
	sets    []string
}

var (
	_ cache.Cache   = (*RecordingCache)(nil)
	_ cache.Flusher = (*RecordingCache)(nil)
)

// NewRecordingCache returns an empty recording cache.
func NewRecordingCache() *RecordingCache {
	return &RecordingCache{entries: map[string]any{}}
}

func (c *RecordingCache) Get(_ context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	value, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *RecordingCache) Set(_ context.Context, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets = append(c.sets, key)
}

func (c *RecordingCache) Flush(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]any{}
	return nil
}

// Len returns the number of stored entries.
func (c *RecordingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits returns how many Get calls found an entry.
func (c *RecordingCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Sets returns the keys written so far, in order.
func (c *RecordingCache) Sets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sets...)
}

// Values returns a copy of the stored entries.
func (c *RecordingCache) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
