package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"twscache/internal/model"
)

// Store persists one series file per SeriesKey under a base directory.
// Save merges with whatever is already on disk: duplicate timestamps keep the
// newest write, rows end up in ascending timestamp order. I/O failures always
// surface; a silently empty cache would read as a false miss and a silently
// corrupt one as a false hit.
type Store struct {
	dir   string
	codec Codec
}

// New creates a Store rooted at dir using codec for serialization.
func New(dir string, codec Codec) *Store {
	return &Store{dir: dir, codec: codec}
}

// Dir returns the store's base directory.
func (s *Store) Dir() string { return s.dir }

// Extension returns the file extension of the configured codec.
func (s *Store) Extension() string { return s.codec.Extension() }

// Path returns the on-disk location for key.
func (s *Store) Path(key model.SeriesKey) string {
	return key.Path(s.dir, s.codec.Extension())
}

// Load reads the series for key. A missing file is not an error and yields an
// empty series; an unreadable or corrupt file is. Rows without a usable
// timestamp are dropped with a warning.
func (s *Store) Load(key model.SeriesKey) ([]model.Bar, error) {
	path := s.Path(key)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no cached series", "series", key.String(), "path", path)
		return nil, nil
	}
	bars, err := s.codec.Read(path)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", path, err)
	}
	kept := bars[:0]
	dropped := 0
	for _, b := range bars {
		if b.Timestamp <= 0 {
			dropped++
			continue
		}
		kept = append(kept, b)
	}
	if dropped > 0 {
		slog.Warn("dropped rows without usable timestamp", "series", key.String(), "dropped", dropped)
	}
	slog.Debug("series loaded", "series", key.String(), "rows", len(kept))
	return kept, nil
}

// Save merges newRows into the stored series for key and returns the full
// merged series. On any failure the on-disk state is left unmodified and the
// error is returned.
func (s *Store) Save(key model.SeriesKey, newRows []model.Bar) ([]model.Bar, error) {
	existing, err := s.Load(key)
	if err != nil {
		return nil, err
	}

	merged := Merge(existing, newRows)

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := s.codec.Write(tmp, merged); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("store: rename %s: %w", path, err)
	}
	slog.Info("series saved", "series", key.String(), "rows", len(merged), "new", len(newRows), "path", path)
	return merged, nil
}

// Merge combines existing and incoming rows: on a timestamp collision the
// incoming (or later) occurrence wins, and the result is sorted ascending.
func Merge(existing, incoming []model.Bar) []model.Bar {
	byTS := make(map[int64]model.Bar, len(existing)+len(incoming))
	order := make([]int64, 0, len(existing)+len(incoming))
	for _, b := range existing {
		if _, seen := byTS[b.Timestamp]; !seen {
			order = append(order, b.Timestamp)
		}
		byTS[b.Timestamp] = b
	}
	for _, b := range incoming {
		if _, seen := byTS[b.Timestamp]; !seen {
			order = append(order, b.Timestamp)
		}
		byTS[b.Timestamp] = b
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	merged := make([]model.Bar, 0, len(order))
	for _, ts := range order {
		merged = append(merged, byTS[ts])
	}
	return merged
}
