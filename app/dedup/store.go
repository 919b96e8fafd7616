package dedup

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const DefaultMaxAgeDays = 90

// Accepted timestamp layouts, tried in order. Naive timestamps are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// SeenStore is a persistent set of URL digests with TTL pruning at load.
//
// File format, one entry per line:
//
//	<sha256 hex> <RFC3339 timestamp>
type SeenStore struct {
	path       string
	maxAgeDays int
	entries    map[string]time.Time
	mu         sync.RWMutex
	now        func() time.Time
}

// NewSeenStore loads the store at path, dropping entries older than
// maxAgeDays. A missing file yields an empty store.
func NewSeenStore(path string, maxAgeDays int) (*SeenStore, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}

	s := &SeenStore{
		path:       path,
		maxAgeDays: maxAgeDays,
		entries:    make(map[string]time.Time),
		now:        func() time.Time { return time.Now().UTC() },
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Add records url as seen now. Memory only; call Save to persist.
func (s *SeenStore) Add(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hashURL(url)] = s.now()
}

func (s *SeenStore) IsSeen(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[hashURL(url)]
	return ok
}

func (s *SeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *SeenStore) Path() string {
	return s.path
}

// Save writes the store to a temp file in the target directory and renames
// it over the old file. On failure the temp file is removed and the old
// file is left as it was.
func (s *SeenStore) Save() (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seen_urls_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("Failed to remove temp file", "path", tmpPath, "error", rmErr)
			}
		}
	}()

	s.mu.RLock()
	hashes := make([]string, 0, len(s.entries))
	for h := range s.entries {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	w := bufio.NewWriter(tmp)
	for _, h := range hashes {
		if _, err = fmt.Fprintf(w, "%s %s\n", h, s.entries[h].UTC().Format(time.RFC3339Nano)); err != nil {
			s.mu.RUnlock()
			return fmt.Errorf("failed to write seen entry: %w", err)
		}
	}
	s.mu.RUnlock()

	if err = w.Flush(); err != nil {
		return fmt.Errorf("failed to flush seen file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync seen file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close seen file: %w", err)
	}
	if err = os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace seen file: %w", err)
	}

	slog.Debug("Seen store saved", "path", s.path, "entries", len(hashes))
	return nil
}

func (s *SeenStore) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open seen file: %w", err)
	}
	defer f.Close()

	cutoff := s.now().Add(-time.Duration(s.maxAgeDays) * 24 * time.Hour)
	expired, malformed := 0, 0

	// No line-length limit; an oversized record is just malformed.
	reader := bufio.NewReader(f)
	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read seen file: %w", readErr)
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			if readErr != nil {
				break
			}
			continue
		}

		switch hash, ts, ok := parseRecord(line); {
		case !ok:
			malformed++
		case ts.Before(cutoff):
			expired++
		default:
			s.entries[hash] = ts
		}

		if readErr != nil {
			break
		}
	}

	slog.Debug("Seen store loaded", "path", s.path, "entries", len(s.entries), "expired", expired, "malformed", malformed)
	return nil
}

func parseRecord(line string) (string, time.Time, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", time.Time{}, false
	}
	ts, ok := parseTimestamp(fields[1])
	if !ok {
		return "", time.Time{}, false
	}
	return fields[0], ts, true
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
