// Package store owns the persisted state of the stats engine: the JSON-array
// playback history file and the Badger-backed song catalog.
package store

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

// Default retention and sanity bounds for recorded events.
const (
	DefaultRetention        = 90 * 24 * time.Hour
	DefaultMaxEventDuration = 4 * time.Hour
)

// HistoryOptions tunes a HistoryStore. Zero values fall back to defaults.
type HistoryOptions struct {
	// Retention is the age horizon; events whose end is older than
	// now-Retention are pruned on the next append.
	Retention time.Duration

	// MaxEventDuration caps a single event's duration.
	MaxEventDuration time.Duration
}

func (o *HistoryOptions) setDefaults() {
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.MaxEventDuration <= 0 {
		o.MaxEventDuration = DefaultMaxEventDuration
	}
}

// HistoryStore is the append-only playback event log, backed by a single
// file holding one JSON array. The file is rewritten wholesale on every
// mutation; event volume stays small because the retention window bounds it.
//
// Every read-modify-write runs under one mutex per store instance. Reads
// copy the decoded events out under the lock so aggregation can run
// lock-free on the snapshot.
type HistoryStore struct {
	path   string
	opts   HistoryOptions
	logger *slog.Logger

	mu sync.Mutex
}

// NewHistoryStore creates a store persisting to path. The file is created
// lazily on first append.
func NewHistoryStore(path string, logger *slog.Logger, opts HistoryOptions) *HistoryStore {
	opts.setDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HistoryStore{
		path:   path,
		opts:   opts,
		logger: logger,
	}
}

// Path returns the location of the backing file.
func (s *HistoryStore) Path() string { return s.path }

// Append validates, clamps and persists one event, pruning expired history
// in the same write. Events with a blank song ID or non-positive duration
// are dropped silently - ingestion is a best-effort telemetry path.
func (s *HistoryStore) Append(event *domain.PlaybackEvent) error {
	if event == nil || event.SongID == "" || event.DurationMs <= 0 {
		s.logger.Debug("dropping invalid playback event",
			"song_id", songIDOrEmpty(event),
		)
		return nil
	}

	clamped := *event
	if clamped.Timestamp < 0 {
		clamped.Timestamp = 0
	}
	if limit := s.opts.MaxEventDuration.Milliseconds(); clamped.DurationMs > limit {
		clamped.DurationMs = limit
	}
	if clamped.StartTimestamp == nil {
		start := clamped.Timestamp - clamped.DurationMs
		if start < 0 {
			start = 0
		}
		clamped.StartTimestamp = &start
	}
	if clamped.EndTimestamp == nil {
		end := clamped.Timestamp
		clamped.EndTimestamp = &end
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.readLocked()
	if err != nil {
		// Unreadable or corrupt history self-heals on this write.
		s.logger.Warn("resetting playback history", "error", err)
		events = nil
	}

	if cutoff := clamped.Timestamp - s.opts.Retention.Milliseconds(); cutoff > 0 {
		kept := events[:0]
		for i := range events {
			if events[i].EndMillis() >= cutoff {
				kept = append(kept, events[i])
			}
		}
		events = kept
	}

	events = append(events, clamped)
	return s.writeLocked(events)
}

// ReadAll returns a snapshot of all persisted events. A missing file yields
// an empty slice; unreadable or malformed content yields a sentinel error
// for the caller to convert to a default.
func (s *HistoryStore) ReadAll() ([]domain.PlaybackEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Clear deletes the backing file. Subsequent reads return empty history.
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ErrWriteFailed.WithCause(err)
	}
	return nil
}

// Len reports the number of persisted events, zero on any read failure.
func (s *HistoryStore) Len() int {
	events, err := s.ReadAll()
	if err != nil {
		return 0
	}
	return len(events)
}

func (s *HistoryStore) readLocked() ([]domain.PlaybackEvent, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrUnreadable.WithCause(err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var events []domain.PlaybackEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, ErrCorrupt.WithCause(err)
	}
	return events, nil
}

func (s *HistoryStore) writeLocked(events []domain.PlaybackEvent) error {
	if events == nil {
		events = []domain.PlaybackEvent{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return ErrWriteFailed.WithCause(err)
	}

	// Rewrite through a temp file so a crash never leaves a torn array.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return ErrWriteFailed.WithCause(err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return ErrWriteFailed.WithCause(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return ErrWriteFailed.WithCause(err)
	}
	return nil
}

func songIDOrEmpty(event *domain.PlaybackEvent) string {
	if event == nil {
		return ""
	}
	return event.SongID
}
