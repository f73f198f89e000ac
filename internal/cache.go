package internal

import (
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gnolang/bracecheck/internal/brace"
)

const (
	cacheFileName   = "brace_cache.gob"
	defaultCacheAge = 24 * time.Hour
)

type verdictEntry struct {
	Digest    string
	Verdict   brace.Verdict
	ScannedAt time.Time
}

// Cache remembers the verdict of each checked file together with a digest
// of the content that produced it. Lookups take the content the caller has
// already read, so a hit never touches the file again.
//
// Entries are persisted with encoding/gob in the cache directory after every
// update.
type Cache struct {
	dir      string
	mu       sync.Mutex
	verdicts map[string]verdictEntry
	maxAge   time.Duration
}

func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:      dir,
		verdicts: make(map[string]verdictEntry),
		maxAge:   defaultCacheAge,
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, cacheFileName)
}

func (c *Cache) load() error {
	f, err := os.Open(c.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(&c.verdicts)
}

// flush writes the entries to disk. Callers hold c.mu.
func (c *Cache) flush() error {
	f, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(c.verdicts); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Set records verdict as the result of scanning content from filename.
func (c *Cache) Set(filename string, content []byte, verdict brace.Verdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.verdicts[filename] = verdictEntry{
		Digest:    digest(content),
		Verdict:   verdict,
		ScannedAt: time.Now(),
	}
	return c.flush()
}

// Get returns the verdict stored for filename if it was produced from the
// same content and has not expired. Stale entries are dropped.
func (c *Cache) Get(filename string, content []byte) (brace.Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.verdicts[filename]
	if !ok {
		return brace.Verdict{}, false
	}
	if time.Since(entry.ScannedAt) > c.maxAge || entry.Digest != digest(content) {
		delete(c.verdicts, filename)
		return brace.Verdict{}, false
	}
	return entry.Verdict, true
}

func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAge = d
}

// InvalidateAll drops every entry, in memory and on disk.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.verdicts = make(map[string]verdictEntry)
	return c.flush()
}

func digest(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
