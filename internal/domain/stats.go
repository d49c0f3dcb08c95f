package domain

import "time"

// TimeRange represents a query time window for statistics.
type TimeRange string

// TimeRange constants for summary queries.
const (
	RangeToday   TimeRange = "today"
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeAllTime TimeRange = "all"
)

// Valid returns true if the range is a recognized value.
func (r TimeRange) Valid() bool {
	switch r {
	case RangeToday, RangeWeek, RangeMonth, RangeAllTime:
		return true
	default:
		return false
	}
}

// Label returns the display label for the range.
func (r TimeRange) Label() string {
	switch r {
	case RangeToday:
		return "Today"
	case RangeWeek:
		return "This Week"
	case RangeMonth:
		return "This Month"
	case RangeAllTime:
		return "All Time"
	default:
		return string(r)
	}
}

// DaysBack returns the number of calendar days the range reaches back,
// or 0 for the unbounded all-time range.
func (r TimeRange) DaysBack() int {
	switch r {
	case RangeToday:
		return 1
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	default:
		return 0
	}
}

// Bounds resolves the range against now into epoch-millisecond bounds.
// The start is nil for the unbounded all-time range; bounded ranges start at
// midnight (in loc) of today minus DaysBack-1 days. The end is always now.
func (r TimeRange) Bounds(nowMillis int64, loc *time.Location) (start *int64, end int64) {
	end = nowMillis
	if r == RangeAllTime || !r.Valid() {
		return nil, end
	}

	now := time.UnixMilli(nowMillis).In(loc)
	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if back := r.DaysBack() - 1; back > 0 {
		dayStart = dayStart.AddDate(0, 0, -back)
	}

	s := dayStart.UnixMilli()
	return &s, end
}

// SongStats summarizes playback of a single song.
type SongStats struct {
	SongID          string `json:"songId"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	TotalDurationMs int64  `json:"totalDurationMs"`
	PlayCount       int    `json:"playCount"`
}

// ArtistStats summarizes playback across all of an artist's songs.
type ArtistStats struct {
	Artist          string `json:"artist"`
	TotalDurationMs int64  `json:"totalDurationMs"`
	PlayCount       int    `json:"playCount"`
	UniqueSongs     int    `json:"uniqueSongs"`
}

// AlbumStats summarizes playback across one album.
type AlbumStats struct {
	Album           string `json:"album"`
	TotalDurationMs int64  `json:"totalDurationMs"`
	PlayCount       int    `json:"playCount"`
	UniqueSongs     int    `json:"uniqueSongs"`
}

// GenreStats summarizes playback of one genre. Percentage is the genre's
// share of total plays in the range, in [0, 1].
type GenreStats struct {
	Genre           string  `json:"genre"`
	TotalDurationMs int64   `json:"totalDurationMs"`
	PlayCount       int     `json:"playCount"`
	Percentage      float64 `json:"percentage"`
}

// TimelineEntry is one chart bucket. Granularity depends on the range:
// hour-of-day for today, day-of-week for week, week-of-month otherwise.
type TimelineEntry struct {
	Label           string `json:"label"`
	TotalDurationMs int64  `json:"totalDurationMs"`
	PlayCount       int    `json:"playCount"`
}

// HourBucket is one hour-of-day slot of the daily listening distribution.
type HourBucket struct {
	StartHour       int   `json:"startHour"`
	EndHour         int   `json:"endHour"`
	TotalDurationMs int64 `json:"totalDurationMs"`
}

// StatsSummary is the immutable output of a summary computation.
// Peak fields are nil when the range holds no listening at all.
type StatsSummary struct {
	Range          TimeRange `json:"range"`
	StartTimestamp *int64    `json:"startTimestamp,omitempty"`
	EndTimestamp   int64     `json:"endTimestamp"`

	TotalDurationMs        int64 `json:"totalDurationMs"`
	TotalPlayCount         int   `json:"totalPlayCount"`
	UniqueSongs            int   `json:"uniqueSongs"`
	UniqueArtists          int   `json:"uniqueArtists"`
	AverageDailyDurationMs int64 `json:"averageDailyDurationMs"`

	TopSongs   []SongStats   `json:"topSongs"`
	TopArtists []ArtistStats `json:"topArtists"`
	TopAlbums  []AlbumStats  `json:"topAlbums"`
	TopGenres  []GenreStats  `json:"topGenres"`

	Timeline []TimelineEntry `json:"timeline"`

	ActiveDays        int `json:"activeDays"`
	LongestStreakDays int `json:"longestStreakDays"`

	TotalSessions            int     `json:"totalSessions"`
	AverageSessionDurationMs int64   `json:"averageSessionDurationMs"`
	LongestSessionDurationMs int64   `json:"longestSessionDurationMs"`
	AverageSessionsPerDay    float64 `json:"averageSessionsPerDay"`

	PeakDayOfWeek     *string      `json:"peakDayOfWeek,omitempty"`
	PeakDayDurationMs int64        `json:"peakDayDurationMs"`
	PeakHour          *int         `json:"peakHour,omitempty"`
	DailyDistribution []HourBucket `json:"dailyDistribution"`
}
