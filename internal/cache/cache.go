package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/zeebo/blake3"
)

// Cache stores the import specifiers extracted from a file, keyed by path and
// scanner kind and validated against a content hash.
type Cache struct {
	fs      billy.Filesystem
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// Entry is one cached extraction result.
type Entry struct {
	Hash       string    `json:"hash"`
	Timestamp  time.Time `json:"timestamp"`
	Specifiers []string  `json:"specifiers"`
}

// New creates a cache under dir on fs. A disabled cache never hits and never writes.
func New(fs billy.Filesystem, dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		fs:      fs,
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Key builds the cache key for a file extracted by a given scanner.
func Key(file, scanner string) string {
	return scanner + "\x00" + file
}

// GetWithHash returns the cached specifiers for key when the stored content hash
// matches and the entry has not expired.
func (c *Cache) GetWithHash(key, hash string) ([]string, bool) {
	if !c.Enabled() {
		return nil, false
	}

	p := c.keyPath(key)
	data, err := util.ReadFile(c.fs, p)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Hash != hash {
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(entry.Timestamp) > c.ttl {
		_ = c.fs.Remove(p)
		return nil, false
	}

	if entry.Specifiers == nil {
		entry.Specifiers = []string{}
	}
	return entry.Specifiers, true
}

// SetWithHash stores specifiers for key along with the content hash they came from.
func (c *Cache) SetWithHash(key, hash string, specifiers []string) error {
	if !c.Enabled() {
		return nil
	}

	entry := Entry{
		Hash:       hash,
		Timestamp:  c.now(),
		Specifiers: specifiers,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return util.WriteFile(c.fs, c.keyPath(key), data, 0600)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	return util.RemoveAll(c.fs, c.dir)
}

// keyPath maps a key to an entry file; the key is hashed so any path is safe.
func (c *Cache) keyPath(key string) string {
	hash := blake3.Sum256([]byte(key))
	return path.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats counts entries and their total size.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.Enabled() {
		return stats, nil
	}

	err := util.Walk(c.fs, c.dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || path.Ext(p) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
