package transcripts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tubescribe/internal/fileutil"
	"tubescribe/internal/logging"
)

const (
	locksDir      = ".locks"
	lockRetry     = 250 * time.Millisecond
	transcriptExt = ".txt"
)

// Entry describes one stored transcript file.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Cache provides access to the transcript directory.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates a cache rooted at dir. The directory is created lazily on
// the first Store.
func New(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "transcripts"),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the artifact path for key.
func (c *Cache) Path(key Key) string {
	return filepath.Join(c.dir, key.FileName())
}

// Lookup returns the stored text for key. Missing and zero-byte artifacts
// are misses.
func (c *Cache) Lookup(key Key) (string, bool, error) {
	if err := key.Validate(); err != nil {
		return "", false, err
	}
	path := c.Path(key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("stat cached transcript: %w", err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		c.logger.Debug("ignoring empty cached transcript",
			logging.String("key", key.String()),
			logging.Path(path))
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read cached transcript: %w", err)
	}
	return string(data), true, nil
}

// Store replaces the artifact for key with text and returns its path.
func (c *Cache) Store(key Key, text string) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("refusing to cache empty transcript")
	}
	path := c.Path(key)
	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("persist transcript: %w", err)
	}
	c.logger.Debug("cached transcript",
		logging.String("key", key.String()),
		logging.Path(path),
		logging.Int("bytes", len(text)))
	return path, nil
}

// Remove deletes the artifact for key.
func (c *Cache) Remove(key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := os.Remove(c.Path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("transcript %q not found in cache", key.FileName())
		}
		return fmt.Errorf("remove transcript: %w", err)
	}
	return nil
}

// List returns stored transcripts sorted newest first.
func (c *Cache) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != transcriptExt {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    name,
			Path:    filepath.Join(c.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Read returns the content of a stored transcript by file name.
func (c *Cache) Read(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid transcript name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

// Clear removes every stored transcript and lock file, returning the
// number of transcripts removed.
func (c *Cache) Clear() (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name, err)
		}
		removed++
	}
	if err := os.RemoveAll(filepath.Join(c.dir, locksDir)); err != nil {
		return removed, fmt.Errorf("remove lock directory: %w", err)
	}
	c.logger.Debug("cleared transcript cache", logging.Int("removed", removed))
	return removed, nil
}

// Lock takes an exclusive file lock for key, waiting until it is free or
// ctx is done. The returned function releases it.
func (c *Cache) Lock(ctx context.Context, key Key) (func(), error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	dir := filepath.Join(c.dir, locksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, key.Digest()+".lock"))
	ok, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, errors.New("cache lock not acquired")
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release cache lock",
				logging.String(logging.FieldEventType, "transcripts_unlock_failed"),
				logging.String("key", key.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove stale lock files with cache clear"))
		}
	}, nil
}
