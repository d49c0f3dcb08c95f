package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

// Fixed reference time: Sunday June 15 2025, noon UTC.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func at(t *testing.T, clock string) int64 {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", clock, time.UTC)
	require.NoError(t, err)
	return ts.UnixMilli()
}

func evMeta(songID, title, artist, album, genreTag string, startMillis, endMillis int64) domain.PlaybackEvent {
	e := ev(songID, startMillis, endMillis)
	e.SongTitle = title
	e.ArtistName = artist
	e.AlbumName = album
	e.Genre = genreTag
	return e
}

func buildToday(t *testing.T, events []domain.PlaybackEvent) *domain.StatsSummary {
	t.Helper()
	return BuildSummary(BuildParams{
		Range:     domain.RangeToday,
		Events:    events,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})
}

func TestBuildSummary_EndToEnd(t *testing.T) {
	events := []domain.PlaybackEvent{
		evMeta("sA", "Midnight City", "M83", "Hurry Up", "Electronic",
			at(t, "2025-06-15 10:00"), at(t, "2025-06-15 10:01")),
		evMeta("sA", "Midnight City", "M83", "Hurry Up", "Electronic",
			at(t, "2025-06-15 10:30"), at(t, "2025-06-15 10:31")),
		evMeta("sB", "Dreams", "Fleetwood Mac", "Rumours", "Rock",
			at(t, "2025-06-15 11:00"), at(t, "2025-06-15 11:01")),
	}

	summary := buildToday(t, events)

	assert.Equal(t, domain.RangeToday, summary.Range)
	require.NotNil(t, summary.StartTimestamp)
	assert.Equal(t, at(t, "2025-06-15 00:00"), *summary.StartTimestamp)
	assert.Equal(t, testNow.UnixMilli(), summary.EndTimestamp)

	assert.Equal(t, int64(180000), summary.TotalDurationMs)
	assert.Equal(t, 3, summary.TotalPlayCount)
	assert.Equal(t, 2, summary.UniqueSongs)
	assert.Equal(t, 2, summary.UniqueArtists)
	assert.Equal(t, int64(180000), summary.AverageDailyDurationMs)

	require.NotEmpty(t, summary.TopSongs)
	assert.Equal(t, "sA", summary.TopSongs[0].SongID)
	assert.Equal(t, "Midnight City", summary.TopSongs[0].Title)
	assert.Equal(t, int64(120000), summary.TopSongs[0].TotalDurationMs)
	assert.Equal(t, 2, summary.TopSongs[0].PlayCount)

	require.Len(t, summary.TopGenres, 2)
	assert.Equal(t, "Electronic", summary.TopGenres[0].Genre)
	assert.InDelta(t, 2.0/3.0, summary.TopGenres[0].Percentage, 1e-9)
	assert.InDelta(t, 1.0/3.0, summary.TopGenres[1].Percentage, 1e-9)

	assert.Equal(t, 1, summary.ActiveDays)
	assert.Equal(t, 1, summary.LongestStreakDays)

	// 29-minute gaps keep all three plays in one session.
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, int64(180000), summary.AverageSessionDurationMs)
	assert.Equal(t, int64(180000), summary.LongestSessionDurationMs)
	assert.InDelta(t, 1.0, summary.AverageSessionsPerDay, 1e-9)

	require.NotNil(t, summary.PeakDayOfWeek)
	assert.Equal(t, "Sunday", *summary.PeakDayOfWeek)
	assert.Equal(t, int64(180000), summary.PeakDayDurationMs)
	require.NotNil(t, summary.PeakHour)
	assert.Equal(t, 10, *summary.PeakHour)

	require.Len(t, summary.Timeline, 24)
	assert.Equal(t, "10:00", summary.Timeline[10].Label)
	assert.Equal(t, int64(120000), summary.Timeline[10].TotalDurationMs)
	assert.Equal(t, 2, summary.Timeline[10].PlayCount)
	assert.Equal(t, int64(60000), summary.Timeline[11].TotalDurationMs)

	require.Len(t, summary.DailyDistribution, 24)
	assert.Equal(t, int64(120000), summary.DailyDistribution[10].TotalDurationMs)
}

func TestBuildSummary_OverlapDoesNotDoubleCount(t *testing.T) {
	// Two songs playing over the same wall-clock minute count once toward
	// the total but twice toward plays.
	events := []domain.PlaybackEvent{
		ev("sA", 0, 60000),
		ev("sB", 30000, 90000),
	}

	summary := BuildSummary(BuildParams{
		Range:     domain.RangeAllTime,
		Events:    events,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})

	assert.Equal(t, int64(90000), summary.TotalDurationMs)
	assert.Equal(t, 2, summary.TotalPlayCount)
	assert.Equal(t, 2, summary.UniqueSongs)
	assert.Nil(t, summary.StartTimestamp)
}

func TestBuildSummary_ClipsAtRangeBoundary(t *testing.T) {
	// Week window opens at midnight June 9; an event straddling that
	// boundary only counts the inside part.
	events := []domain.PlaybackEvent{
		ev("sA", at(t, "2025-06-08 23:00"), at(t, "2025-06-09 01:00")),
	}

	summary := BuildSummary(BuildParams{
		Range:     domain.RangeWeek,
		Events:    events,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})

	assert.Equal(t, int64(60*60*1000), summary.TotalDurationMs)
	assert.Equal(t, 1, summary.TotalPlayCount)
}

func TestBuildSummary_DropsEventsOutsideRange(t *testing.T) {
	events := []domain.PlaybackEvent{
		ev("sA", at(t, "2025-06-01 10:00"), at(t, "2025-06-01 11:00")),
	}

	summary := buildToday(t, events)

	assert.Zero(t, summary.TotalDurationMs)
	assert.Zero(t, summary.TotalPlayCount)
	assert.Zero(t, summary.UniqueSongs)
}

func TestBuildSummary_EmptyHistory(t *testing.T) {
	summary := buildToday(t, nil)

	assert.Zero(t, summary.TotalDurationMs)
	assert.Zero(t, summary.TotalPlayCount)
	assert.Empty(t, summary.TopSongs)
	assert.Empty(t, summary.TopArtists)
	assert.Empty(t, summary.TopAlbums)
	assert.Empty(t, summary.TopGenres)
	assert.Nil(t, summary.PeakDayOfWeek)
	assert.Nil(t, summary.PeakHour)
	assert.Zero(t, summary.ActiveDays)
	assert.Zero(t, summary.TotalSessions)
	assert.Len(t, summary.Timeline, 24)
	assert.Len(t, summary.DailyDistribution, 24)
}

func TestBuildSummary_TopListsCapAtFive(t *testing.T) {
	var events []domain.PlaybackEvent
	base := at(t, "2025-06-15 08:00")
	for i := 0; i < 7; i++ {
		start := base + int64(i)*10*60*1000
		e := evMeta(
			fmt.Sprintf("s%d", i),
			fmt.Sprintf("Song %d", i),
			fmt.Sprintf("Artist %d", i),
			fmt.Sprintf("Album %d", i),
			fmt.Sprintf("Genre %d", i),
			start, start+int64(i+1)*1000,
		)
		events = append(events, e)
	}

	summary := buildToday(t, events)

	assert.Len(t, summary.TopSongs, 5)
	assert.Len(t, summary.TopArtists, 5)
	assert.Len(t, summary.TopAlbums, 5)
	assert.Len(t, summary.TopGenres, 5)
	assert.Equal(t, 7, summary.UniqueSongs)
	assert.Equal(t, 7, summary.UniqueArtists)

	// Longest listen first.
	assert.Equal(t, "s6", summary.TopSongs[0].SongID)
	assert.Equal(t, int64(7000), summary.TopSongs[0].TotalDurationMs)
}

func TestBuildSummary_GenreAliasesGroupTogether(t *testing.T) {
	events := []domain.PlaybackEvent{
		evMeta("sA", "One", "A", "", "Rap",
			at(t, "2025-06-15 09:00"), at(t, "2025-06-15 09:01")),
		evMeta("sB", "Two", "B", "", "Hip Hop",
			at(t, "2025-06-15 10:00"), at(t, "2025-06-15 10:01")),
	}

	summary := buildToday(t, events)

	require.Len(t, summary.TopGenres, 1)
	assert.Equal(t, "Hip Hop", summary.TopGenres[0].Genre)
	assert.Equal(t, 2, summary.TopGenres[0].PlayCount)
	assert.InDelta(t, 1.0, summary.TopGenres[0].Percentage, 1e-9)
}

func TestBuildSummary_CatalogOverridesEventMetadata(t *testing.T) {
	events := []domain.PlaybackEvent{
		evMeta("sA", "Old Title", "Old Artist", "", "",
			at(t, "2025-06-15 09:00"), at(t, "2025-06-15 09:01")),
	}
	songs := []domain.Song{
		{ID: "sA", Title: "New Title", Artist: "New Artist", Genre: "Jazz"},
	}

	summary := BuildSummary(BuildParams{
		Range:     domain.RangeToday,
		Events:    events,
		Songs:     songs,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})

	require.NotEmpty(t, summary.TopSongs)
	assert.Equal(t, "New Title", summary.TopSongs[0].Title)
	assert.Equal(t, "New Artist", summary.TopSongs[0].Artist)
	require.NotEmpty(t, summary.TopGenres)
	assert.Equal(t, "Jazz", summary.TopGenres[0].Genre)
}

func TestBuildSummary_MissingMetadataFallsBackToUnknown(t *testing.T) {
	events := []domain.PlaybackEvent{
		ev("sA", at(t, "2025-06-15 09:00"), at(t, "2025-06-15 09:01")),
	}

	summary := buildToday(t, events)

	require.NotEmpty(t, summary.TopSongs)
	assert.Equal(t, UnknownTitle, summary.TopSongs[0].Title)
	assert.Equal(t, UnknownArtist, summary.TopSongs[0].Artist)
	require.NotEmpty(t, summary.TopAlbums)
	assert.Equal(t, UnknownAlbum, summary.TopAlbums[0].Album)
	require.NotEmpty(t, summary.TopGenres)
	assert.Equal(t, UnknownGenre, summary.TopGenres[0].Genre)
}

func TestBuildSummary_WeekTimelineOldestFirst(t *testing.T) {
	events := []domain.PlaybackEvent{
		ev("sA", at(t, "2025-06-09 10:00"), at(t, "2025-06-09 10:30")),
		ev("sA", at(t, "2025-06-15 10:00"), at(t, "2025-06-15 10:15")),
	}

	summary := BuildSummary(BuildParams{
		Range:     domain.RangeWeek,
		Events:    events,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})

	require.Len(t, summary.Timeline, 7)
	// June 9 2025 is a Monday, June 15 a Sunday.
	assert.Equal(t, "Mon", summary.Timeline[0].Label)
	assert.Equal(t, int64(30*60*1000), summary.Timeline[0].TotalDurationMs)
	assert.Equal(t, "Sun", summary.Timeline[6].Label)
	assert.Equal(t, int64(15*60*1000), summary.Timeline[6].TotalDurationMs)
}

func TestBuildSummary_MonthTimelineWeekBuckets(t *testing.T) {
	events := []domain.PlaybackEvent{
		ev("sA", at(t, "2025-06-03 10:00"), at(t, "2025-06-03 11:00")),
		ev("sA", at(t, "2025-06-10 10:00"), at(t, "2025-06-10 10:30")),
	}

	summary := BuildSummary(BuildParams{
		Range:     domain.RangeMonth,
		Events:    events,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})

	require.Len(t, summary.Timeline, 2)
	assert.Equal(t, "Week 1", summary.Timeline[0].Label)
	assert.Equal(t, int64(60*60*1000), summary.Timeline[0].TotalDurationMs)
	assert.Equal(t, "Week 2", summary.Timeline[1].Label)
}

func TestBuildSummary_StreakAcrossDays(t *testing.T) {
	events := []domain.PlaybackEvent{
		ev("sA", at(t, "2025-06-12 10:00"), at(t, "2025-06-12 10:30")),
		ev("sA", at(t, "2025-06-13 10:00"), at(t, "2025-06-13 10:30")),
		ev("sA", at(t, "2025-06-14 10:00"), at(t, "2025-06-14 10:30")),
		ev("sA", at(t, "2025-06-09 10:00"), at(t, "2025-06-09 10:30")),
	}

	summary := BuildSummary(BuildParams{
		Range:     domain.RangeWeek,
		Events:    events,
		NowMillis: testNow.UnixMilli(),
		Location:  time.UTC,
	})

	assert.Equal(t, 4, summary.ActiveDays)
	assert.Equal(t, 3, summary.LongestStreakDays)
}
