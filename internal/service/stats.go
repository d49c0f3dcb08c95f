// Package service exposes the playback statistics engine as a facade over
// the stores, the aggregation code and the update broadcaster.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
	"github.com/chromahub/rhythm-stats/internal/id"
	"github.com/chromahub/rhythm-stats/internal/notify"
	"github.com/chromahub/rhythm-stats/internal/stats"
	"github.com/chromahub/rhythm-stats/internal/store"
	"github.com/chromahub/rhythm-stats/internal/validation"
)

// ErrUnknownRange is returned when a summary is requested for a time
// range the engine does not know.
var ErrUnknownRange = errors.New("unknown time range")

// StatsService records playback and builds statistics summaries.
type StatsService struct {
	history     *store.HistoryStore
	catalog     *store.Catalog
	broadcaster *notify.Broadcaster
	validator   *validation.Validator
	logger      *slog.Logger

	location   *time.Location
	sessionGap time.Duration

	// now is swappable for tests.
	now func() time.Time

	mu        sync.Mutex
	lastRange domain.TimeRange
}

// Options configures a StatsService.
type Options struct {
	Location   *time.Location
	SessionGap time.Duration
}

// NewStatsService creates the stats facade. Catalog may be nil; metadata
// then falls back to what the playback events carry.
func NewStatsService(
	history *store.HistoryStore,
	catalog *store.Catalog,
	broadcaster *notify.Broadcaster,
	validator *validation.Validator,
	logger *slog.Logger,
	opts Options,
) *StatsService {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	gap := opts.SessionGap
	if gap <= 0 {
		gap = stats.DefaultSessionGap
	}
	return &StatsService{
		history:     history,
		catalog:     catalog,
		broadcaster: broadcaster,
		validator:   validator,
		logger:      logger,
		location:    loc,
		sessionGap:  gap,
		now:         time.Now,
		lastRange:   domain.RangeWeek,
	}
}

// RecordRequest carries a playback report from a client.
type RecordRequest struct {
	Song       domain.Song `json:"song" validate:"required"`
	DurationMs int64       `json:"durationMs" validate:"gt=0"`
	Timestamp  int64       `json:"timestamp" validate:"gte=0"`
}

// RecordPlayback validates and persists one playback report, updating the
// song catalog along the way. A zero Timestamp means "now".
func (s *StatsService) RecordPlayback(ctx context.Context, req RecordRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if req.Song.ID == "" {
		// Ingestion is best-effort telemetry; reports without a song
		// identity are dropped, not failed.
		s.logger.Debug("dropping playback report without song id",
			slog.String("song_title", req.Song.Title))
		return nil
	}
	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = s.now().UnixMilli()
	}

	if s.catalog != nil {
		if err := s.catalog.PutSong(ctx, &req.Song); err != nil {
			// History is the source of truth; a catalog miss only costs
			// metadata fallback quality.
			s.logger.Warn("failed to update song catalog",
				slog.String("song_id", req.Song.ID),
				slog.String("error", err.Error()))
		}
	}

	eventID, err := id.New(id.KindEvent)
	if err != nil {
		return err
	}
	event := &domain.PlaybackEvent{
		ID:         eventID,
		SongID:     req.Song.ID,
		Timestamp:  timestamp,
		DurationMs: req.DurationMs,
		SongTitle:  req.Song.Title,
		ArtistName: req.Song.Artist,
		AlbumName:  req.Song.Album,
		Genre:      req.Song.Genre,
	}
	if err := s.history.Append(event); err != nil {
		return err
	}

	s.logger.Debug("playback recorded",
		slog.String("event_id", eventID),
		slog.String("song_id", req.Song.ID),
		slog.Int64("duration_ms", req.DurationMs))
	return nil
}

// SimpleRecordRequest carries a playback report as raw metadata fields,
// for callers that do not hold a catalog Song. Album and Genre may be
// empty.
type SimpleRecordRequest struct {
	SongID     string `json:"songId"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Genre      string `json:"genre,omitempty"`
	DurationMs int64  `json:"durationMs" validate:"gt=0"`
	Timestamp  int64  `json:"timestamp" validate:"gte=0"`
}

// RecordSimplePlayback persists one playback report without touching the
// song catalog. A blank SongID drops the report silently; a zero
// Timestamp means "now".
func (s *StatsService) RecordSimplePlayback(ctx context.Context, req SimpleRecordRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if req.SongID == "" {
		s.logger.Debug("dropping playback report without song id",
			slog.String("song_title", req.Title))
		return nil
	}

	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = s.now().UnixMilli()
	}

	eventID, err := id.New(id.KindEvent)
	if err != nil {
		return err
	}
	event := &domain.PlaybackEvent{
		ID:         eventID,
		SongID:     req.SongID,
		Timestamp:  timestamp,
		DurationMs: req.DurationMs,
		SongTitle:  req.Title,
		ArtistName: req.Artist,
		AlbumName:  req.Album,
		Genre:      req.Genre,
	}
	if err := s.history.Append(event); err != nil {
		return err
	}

	s.logger.Debug("playback recorded",
		slog.String("event_id", eventID),
		slog.String("song_id", req.SongID))
	return nil
}

// Summary builds the statistics summary for a range from the current
// history and publishes it as the latest. Unreadable or corrupt history
// degrades to an empty summary rather than failing.
func (s *StatsService) Summary(ctx context.Context, r domain.TimeRange) (*domain.StatsSummary, error) {
	return s.summarize(ctx, r, nil)
}

// SummaryWithSongs builds the summary resolving metadata against the given
// song list instead of the catalog.
func (s *StatsService) SummaryWithSongs(ctx context.Context, r domain.TimeRange, songs []domain.Song) (*domain.StatsSummary, error) {
	return s.summarize(ctx, r, songs)
}

func (s *StatsService) summarize(ctx context.Context, r domain.TimeRange, songs []domain.Song) (*domain.StatsSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.Valid() {
		return nil, ErrUnknownRange
	}

	events, err := s.history.ReadAll()
	if err != nil {
		if errors.Is(err, store.ErrUnreadable) || errors.Is(err, store.ErrCorrupt) {
			s.logger.Warn("history unavailable, serving empty summary",
				slog.String("range", string(r)),
				slog.String("error", err.Error()))
			events = nil
		} else {
			return nil, err
		}
	}

	if songs == nil && s.catalog != nil {
		songs, err = s.catalog.ListSongs(ctx)
		if err != nil {
			s.logger.Warn("song catalog unavailable, using event metadata",
				slog.String("error", err.Error()))
			songs = nil
		}
	}

	summary := stats.BuildSummary(stats.BuildParams{
		Range:      r,
		Events:     events,
		Songs:      songs,
		NowMillis:  s.now().UnixMilli(),
		Location:   s.location,
		SessionGap: s.sessionGap,
	})

	s.mu.Lock()
	s.lastRange = r
	s.mu.Unlock()

	s.broadcaster.Publish(summary)

	s.logger.Debug("summary built",
		slog.String("range", string(r)),
		slog.Int64("total_duration_ms", summary.TotalDurationMs),
		slog.Int("total_plays", summary.TotalPlayCount),
		slog.Int("unique_songs", summary.UniqueSongs))
	return summary, nil
}

// RefreshSummary rebuilds the most recently requested range in the
// background and publishes the result to subscribers.
func (s *StatsService) RefreshSummary(ctx context.Context) {
	s.mu.Lock()
	r := s.lastRange
	s.mu.Unlock()

	go func() {
		if _, err := s.Summary(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("background summary refresh failed",
				slog.String("range", string(r)),
				slog.String("error", err.Error()))
		}
	}()
}

// AllEvents returns every retained playback event, for export.
func (s *StatsService) AllEvents(ctx context.Context) ([]domain.PlaybackEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.history.ReadAll()
}

// ClearHistory deletes all playback history and forgets published
// summaries.
func (s *StatsService) ClearHistory(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.history.Clear(); err != nil {
		return err
	}
	s.broadcaster.Clear()
	s.logger.Info("playback history cleared")
	return nil
}

// HistoryPath exposes the history file location for the watcher.
func (s *StatsService) HistoryPath() string {
	return s.history.Path()
}
