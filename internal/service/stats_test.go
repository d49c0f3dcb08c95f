package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chromahub/rhythm-stats/internal/domain"
	"github.com/chromahub/rhythm-stats/internal/notify"
	"github.com/chromahub/rhythm-stats/internal/store"
	"github.com/chromahub/rhythm-stats/internal/validation"
)

// Fixed reference time: Sunday June 15 2025, noon UTC.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type testHarness struct {
	svc         *StatsService
	history     *store.HistoryStore
	broadcaster *notify.Broadcaster
}

func newTestService(t *testing.T) *testHarness {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	history := store.NewHistoryStore(
		filepath.Join(t.TempDir(), "playback_history.json"),
		logger, store.HistoryOptions{})
	broadcaster := notify.NewBroadcaster(logger)
	t.Cleanup(broadcaster.Close)

	svc := NewStatsService(history, nil, broadcaster, validation.New(), logger, Options{
		Location: time.UTC,
	})
	svc.now = func() time.Time { return testNow }

	return &testHarness{svc: svc, history: history, broadcaster: broadcaster}
}

func record(t *testing.T, h *testHarness, song domain.Song, clock string, durationMs int64) {
	t.Helper()
	end, err := time.ParseInLocation("2006-01-02 15:04", clock, time.UTC)
	require.NoError(t, err)

	err = h.svc.RecordPlayback(context.Background(), RecordRequest{
		Song:       song,
		DurationMs: durationMs,
		Timestamp:  end.UnixMilli(),
	})
	require.NoError(t, err)
}

func TestRecordPlayback_PersistsEvent(t *testing.T) {
	h := newTestService(t)

	record(t, h, domain.Song{ID: "s1", Title: "Dreams", Artist: "Fleetwood Mac", Genre: "Rock"},
		"2025-06-15 11:01", 60000)

	events, err := h.svc.AllEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, "s1", events[0].SongID)
	assert.Equal(t, "Dreams", events[0].SongTitle)
	assert.Equal(t, "Fleetwood Mac", events[0].ArtistName)
	assert.Equal(t, int64(60000), events[0].DurationMs)
}

func TestRecordPlayback_DropsBlankSongID(t *testing.T) {
	h := newTestService(t)

	err := h.svc.RecordPlayback(context.Background(), RecordRequest{
		Song:       domain.Song{Title: "No ID"},
		DurationMs: 60000,
		Timestamp:  testNow.UnixMilli(),
	})
	require.NoError(t, err)
	assert.Zero(t, h.history.Len())
}

func TestRecordSimplePlayback_PersistsEvent(t *testing.T) {
	h := newTestService(t)

	err := h.svc.RecordSimplePlayback(context.Background(), SimpleRecordRequest{
		SongID:     "s1",
		Title:      "Dreams",
		Artist:     "Fleetwood Mac",
		Album:      "Rumours",
		Genre:      "Rock",
		DurationMs: 60000,
		Timestamp:  testNow.UnixMilli(),
	})
	require.NoError(t, err)

	events, err := h.svc.AllEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s1", events[0].SongID)
	assert.Equal(t, "Dreams", events[0].SongTitle)
	assert.Equal(t, "Rumours", events[0].AlbumName)
	assert.Equal(t, testNow.UnixMilli(), events[0].Timestamp)
}

func TestRecordSimplePlayback_ZeroTimestampMeansNow(t *testing.T) {
	h := newTestService(t)

	err := h.svc.RecordSimplePlayback(context.Background(), SimpleRecordRequest{
		SongID:     "s1",
		Title:      "T",
		DurationMs: 60000,
	})
	require.NoError(t, err)

	events, err := h.svc.AllEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, testNow.UnixMilli(), events[0].Timestamp)
}

func TestRecordSimplePlayback_DropsBlankSongID(t *testing.T) {
	h := newTestService(t)

	err := h.svc.RecordSimplePlayback(context.Background(), SimpleRecordRequest{
		Title:      "No ID",
		DurationMs: 60000,
		Timestamp:  testNow.UnixMilli(),
	})
	require.NoError(t, err)
	assert.Zero(t, h.history.Len())
}

func TestRecordPlayback_ZeroTimestampMeansNow(t *testing.T) {
	h := newTestService(t)

	err := h.svc.RecordPlayback(context.Background(), RecordRequest{
		Song:       domain.Song{ID: "s1", Title: "T"},
		DurationMs: 60000,
	})
	require.NoError(t, err)

	events, err := h.svc.AllEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, testNow.UnixMilli(), events[0].Timestamp)
}

func TestRecordPlayback_RejectsInvalid(t *testing.T) {
	h := newTestService(t)

	err := h.svc.RecordPlayback(context.Background(), RecordRequest{
		Song:       domain.Song{ID: "s1", Title: "T"},
		DurationMs: 0,
	})
	require.Error(t, err)

	var vErr *validation.Error
	assert.ErrorAs(t, err, &vErr)
	assert.Zero(t, h.history.Len())
}

func TestSummary_EndToEnd(t *testing.T) {
	h := newTestService(t)
	songA := domain.Song{ID: "sA", Title: "Midnight City", Artist: "M83", Genre: "Electronic"}
	songB := domain.Song{ID: "sB", Title: "Dreams", Artist: "Fleetwood Mac", Genre: "Rock"}

	record(t, h, songA, "2025-06-15 10:01", 60000)
	record(t, h, songA, "2025-06-15 10:31", 60000)
	record(t, h, songB, "2025-06-15 11:01", 60000)

	summary, err := h.svc.Summary(context.Background(), domain.RangeToday)
	require.NoError(t, err)

	assert.Equal(t, int64(180000), summary.TotalDurationMs)
	assert.Equal(t, 3, summary.TotalPlayCount)
	assert.Equal(t, 2, summary.UniqueSongs)
	assert.Equal(t, 2, summary.UniqueArtists)
	assert.Equal(t, 1, summary.TotalSessions)

	require.NotEmpty(t, summary.TopSongs)
	assert.Equal(t, "Midnight City", summary.TopSongs[0].Title)
	assert.Equal(t, 2, summary.TopSongs[0].PlayCount)

	// The summary was published as the latest for its range.
	latest := h.broadcaster.Latest(domain.RangeToday)
	require.NotNil(t, latest)
	assert.Equal(t, summary.TotalDurationMs, latest.TotalDurationMs)
}

func TestSummary_UnknownRange(t *testing.T) {
	h := newTestService(t)

	_, err := h.svc.Summary(context.Background(), domain.TimeRange("fortnight"))
	assert.ErrorIs(t, err, ErrUnknownRange)
}

func TestSummary_EmptyHistory(t *testing.T) {
	h := newTestService(t)

	summary, err := h.svc.Summary(context.Background(), domain.RangeAllTime)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalDurationMs)
	assert.Zero(t, summary.TotalPlayCount)
	assert.Empty(t, summary.TopSongs)
	assert.Nil(t, summary.PeakHour)
}

func TestSummaryWithSongs_ExplicitListWins(t *testing.T) {
	h := newTestService(t)

	record(t, h, domain.Song{ID: "s1", Title: "Demo Cut"}, "2025-06-15 10:01", 60000)

	summary, err := h.svc.SummaryWithSongs(context.Background(), domain.RangeToday,
		[]domain.Song{{ID: "s1", Title: "Remastered", Artist: "The Board"}})
	require.NoError(t, err)

	require.NotEmpty(t, summary.TopSongs)
	assert.Equal(t, "Remastered", summary.TopSongs[0].Title)
	assert.Equal(t, "The Board", summary.TopSongs[0].Artist)
}

func TestSummary_RangeFiltering(t *testing.T) {
	h := newTestService(t)
	song := domain.Song{ID: "s1", Title: "T"}

	record(t, h, song, "2025-06-15 10:01", 60000) // today
	record(t, h, song, "2025-06-12 10:01", 60000) // this week
	record(t, h, song, "2025-04-20 10:01", 60000) // all-time only

	today, err := h.svc.Summary(context.Background(), domain.RangeToday)
	require.NoError(t, err)
	assert.Equal(t, 1, today.TotalPlayCount)

	week, err := h.svc.Summary(context.Background(), domain.RangeWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, week.TotalPlayCount)

	all, err := h.svc.Summary(context.Background(), domain.RangeAllTime)
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalPlayCount)
}

func TestClearHistory(t *testing.T) {
	h := newTestService(t)

	record(t, h, domain.Song{ID: "s1", Title: "T"}, "2025-06-15 10:01", 60000)
	_, err := h.svc.Summary(context.Background(), domain.RangeToday)
	require.NoError(t, err)
	require.NotNil(t, h.broadcaster.Latest(domain.RangeToday))

	require.NoError(t, h.svc.ClearHistory(context.Background()))

	events, err := h.svc.AllEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Nil(t, h.broadcaster.Latest(domain.RangeToday))

	summary, err := h.svc.Summary(context.Background(), domain.RangeToday)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalPlayCount)
}

func TestSummary_CanceledContext(t *testing.T) {
	h := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.svc.Summary(ctx, domain.RangeToday)
	assert.ErrorIs(t, err, context.Canceled)
}
