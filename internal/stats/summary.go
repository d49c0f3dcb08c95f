package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

// topN caps every top list in a summary.
const topN = 5

// BuildParams carries one summary computation's inputs. Events and Songs are
// snapshots owned by the caller; BuildSummary never mutates them.
type BuildParams struct {
	Range      domain.TimeRange
	Events     []domain.PlaybackEvent
	Songs      []domain.Song
	NowMillis  int64
	Location   *time.Location
	SessionGap time.Duration
}

// BuildSummary computes the full statistics summary for a time range.
// It never fails: zero events produce a summary with zero aggregates, empty
// top lists and nil peak fields.
func BuildSummary(p BuildParams) *domain.StatsSummary {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	startBound, endBound := p.Range.Bounds(p.NowMillis, loc)

	filtered := clipToRange(p.Events, startBound, endBound)

	// Merge per song first (accurate play counts), then across songs
	// (total listening time without double counting).
	segmentsBySong := make(map[string][]domain.Segment)
	eventsBySong := make(map[string][]domain.PlaybackEvent)
	for _, e := range filtered {
		eventsBySong[e.SongID] = append(eventsBySong[e.SongID], e)
	}
	var allSpans []domain.Span
	totalPlays := 0
	for songID, events := range eventsBySong {
		segments := MergeEvents(events)
		segmentsBySong[songID] = segments
		totalPlays += len(segments)
		for _, seg := range segments {
			allSpans = append(allSpans, domain.Span{
				StartMillis: seg.StartMillis,
				EndMillis:   seg.EndMillis,
			})
		}
	}
	mergedSpans := MergeSpans(allSpans)

	effectiveStart, effectiveEnd := effectiveBounds(mergedSpans, startBound, endBound, p.NowMillis)

	var totalDuration int64
	for _, span := range mergedSpans {
		totalDuration += span.DurationMs()
	}

	daySpan := int64(1)
	if startBound != nil {
		daySpan = max(1, daysBetween(effectiveStart, effectiveEnd, loc)+1)
	}

	resolver := NewResolver(p.Songs, filtered)

	summary := &domain.StatsSummary{
		Range:                  p.Range,
		StartTimestamp:         startBound,
		EndTimestamp:           endBound,
		TotalDurationMs:        totalDuration,
		TotalPlayCount:         totalPlays,
		UniqueSongs:            len(segmentsBySong),
		AverageDailyDurationMs: totalDuration / daySpan,
		Timeline:               buildTimeline(p.Range, mergedSpans, loc, p.NowMillis),
		DailyDistribution:      HourDistribution(mergedSpans, loc),
	}

	summary.TopSongs = topSongs(segmentsBySong, resolver)
	summary.TopArtists, summary.UniqueArtists = topArtists(segmentsBySong, resolver)
	summary.TopAlbums = topAlbums(segmentsBySong, resolver)
	summary.TopGenres = topGenres(segmentsBySong, resolver)

	daySlices := SliceAllByDay(mergedSpans, loc)
	summary.ActiveDays = ActiveDays(daySlices)
	summary.LongestStreakDays = LongestStreak(daySlices)

	sessions := DetectSessions(mergedSpans, p.SessionGap)
	summary.TotalSessions = len(sessions)
	var sessionTotal, sessionLongest int64
	for _, s := range sessions {
		sessionTotal += s.TotalDurationMs
		if s.TotalDurationMs > sessionLongest {
			sessionLongest = s.TotalDurationMs
		}
	}
	if len(sessions) > 0 {
		summary.AverageSessionDurationMs = sessionTotal / int64(len(sessions))
	}
	summary.LongestSessionDurationMs = sessionLongest
	summary.AverageSessionsPerDay = float64(len(sessions)) / float64(daySpan)

	if day, dur, ok := PeakDayOfWeek(daySlices); ok {
		label := day.String()
		summary.PeakDayOfWeek = &label
		summary.PeakDayDurationMs = dur
	}
	if hour, ok := PeakHour(summary.DailyDistribution); ok {
		summary.PeakHour = &hour
	}

	return summary
}

// clipToRange drops events outside the bounds and clips straddlers to the
// boundary, discarding degenerate leftovers.
func clipToRange(events []domain.PlaybackEvent, startBound *int64, endBound int64) []domain.PlaybackEvent {
	lower := int64(math.MinInt64)
	if startBound != nil {
		lower = *startBound
	}

	filtered := make([]domain.PlaybackEvent, 0, len(events))
	for i := range events {
		start, end := events[i].StartMillis(), events[i].EndMillis()
		if end < lower || start > endBound {
			continue
		}
		clipped := events[i].WithBounds(max(start, lower), min(end, endBound))
		if clipped.DurationMs <= 0 {
			continue
		}
		filtered = append(filtered, clipped)
	}
	return filtered
}

func effectiveBounds(spans []domain.Span, startBound *int64, endBound, nowMillis int64) (start, end int64) {
	if startBound != nil {
		start = *startBound
	} else if len(spans) > 0 {
		start = spans[0].StartMillis
	} else {
		start = nowMillis
	}

	end = endBound
	if len(spans) > 0 {
		end = spans[len(spans)-1].EndMillis
	}
	return start, end
}

// daysBetween counts calendar days from the day containing a to the day
// containing b, in loc.
func daysBetween(aMillis, bMillis int64, loc *time.Location) int64 {
	ay, am, ad := time.UnixMilli(aMillis).In(loc).Date()
	by, bm, bd := time.UnixMilli(bMillis).In(loc).Date()
	a := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	b := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int64(b.Sub(a).Hours() / 24)
}

func topSongs(segmentsBySong map[string][]domain.Segment, resolver *Resolver) []domain.SongStats {
	result := make([]domain.SongStats, 0, len(segmentsBySong))
	for songID, segments := range segmentsBySong {
		var total int64
		for _, seg := range segments {
			total += seg.DurationMs()
		}
		result = append(result, domain.SongStats{
			SongID:          songID,
			Title:           resolver.Title(songID),
			Artist:          resolver.Artist(songID),
			TotalDurationMs: total,
			PlayCount:       len(segments),
		})
	}

	slices.SortFunc(result, func(a, b domain.SongStats) int {
		if a.TotalDurationMs != b.TotalDurationMs {
			if b.TotalDurationMs > a.TotalDurationMs {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.SongID, b.SongID)
	})
	return truncate(result)
}

func topArtists(segmentsBySong map[string][]domain.Segment, resolver *Resolver) ([]domain.ArtistStats, int) {
	type group struct {
		durationMs int64
		plays      int
		songs      int
	}
	groups := make(map[string]*group)
	for songID, segments := range segmentsBySong {
		artist := resolver.Artist(songID)
		g := groups[artist]
		if g == nil {
			g = &group{}
			groups[artist] = g
		}
		for _, seg := range segments {
			g.durationMs += seg.DurationMs()
		}
		g.plays += len(segments)
		g.songs++
	}

	result := make([]domain.ArtistStats, 0, len(groups))
	for artist, g := range groups {
		result = append(result, domain.ArtistStats{
			Artist:          artist,
			TotalDurationMs: g.durationMs,
			PlayCount:       g.plays,
			UniqueSongs:     g.songs,
		})
	}
	slices.SortFunc(result, func(a, b domain.ArtistStats) int {
		if a.TotalDurationMs != b.TotalDurationMs {
			if b.TotalDurationMs > a.TotalDurationMs {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Artist, b.Artist)
	})
	return truncate(result), len(groups)
}

func topAlbums(segmentsBySong map[string][]domain.Segment, resolver *Resolver) []domain.AlbumStats {
	type group struct {
		durationMs int64
		plays      int
		songs      int
	}
	groups := make(map[string]*group)
	for songID, segments := range segmentsBySong {
		album := resolver.Album(songID)
		g := groups[album]
		if g == nil {
			g = &group{}
			groups[album] = g
		}
		for _, seg := range segments {
			g.durationMs += seg.DurationMs()
		}
		g.plays += len(segments)
		g.songs++
	}

	result := make([]domain.AlbumStats, 0, len(groups))
	for album, g := range groups {
		result = append(result, domain.AlbumStats{
			Album:           album,
			TotalDurationMs: g.durationMs,
			PlayCount:       g.plays,
			UniqueSongs:     g.songs,
		})
	}
	slices.SortFunc(result, func(a, b domain.AlbumStats) int {
		if a.TotalDurationMs != b.TotalDurationMs {
			if b.TotalDurationMs > a.TotalDurationMs {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Album, b.Album)
	})
	return truncate(result)
}

func topGenres(segmentsBySong map[string][]domain.Segment, resolver *Resolver) []domain.GenreStats {
	type group struct {
		durationMs int64
		plays      int
	}
	groups := make(map[string]*group)
	totalPlays := 0
	for songID, segments := range segmentsBySong {
		key := resolver.GenreKey(songID)
		g := groups[key]
		if g == nil {
			g = &group{}
			groups[key] = g
		}
		for _, seg := range segments {
			g.durationMs += seg.DurationMs()
		}
		g.plays += len(segments)
		totalPlays += len(segments)
	}
	if totalPlays < 1 {
		totalPlays = 1
	}

	result := make([]domain.GenreStats, 0, len(groups))
	for key, g := range groups {
		result = append(result, domain.GenreStats{
			Genre:           GenreLabel(key),
			TotalDurationMs: g.durationMs,
			PlayCount:       g.plays,
			Percentage:      float64(g.plays) / float64(totalPlays),
		})
	}
	slices.SortFunc(result, func(a, b domain.GenreStats) int {
		if a.TotalDurationMs != b.TotalDurationMs {
			if b.TotalDurationMs > a.TotalDurationMs {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
	return truncate(result)
}

// buildTimeline produces the chart series for the range: hour buckets for
// today, one bucket per day for the week (oldest first), week-of-month
// buckets for month and all-time.
func buildTimeline(r domain.TimeRange, spans []domain.Span, loc *time.Location, nowMillis int64) []domain.TimelineEntry {
	now := time.UnixMilli(nowMillis).In(loc)
	year, month, day := now.Date()

	switch r {
	case domain.RangeToday:
		entries := make([]domain.TimelineEntry, 0, 24)
		for hour := 0; hour < 24; hour++ {
			bucketStart := time.Date(year, month, day, hour, 0, 0, 0, loc).UnixMilli()
			bucketEnd := time.Date(year, month, day, hour+1, 0, 0, 0, loc).UnixMilli()
			dur, plays := bucketOverlap(spans, bucketStart, bucketEnd)
			entries = append(entries, domain.TimelineEntry{
				Label:           fmt.Sprintf("%02d:00", hour),
				TotalDurationMs: dur,
				PlayCount:       plays,
			})
		}
		return entries

	case domain.RangeWeek:
		entries := make([]domain.TimelineEntry, 0, 7)
		for daysAgo := 6; daysAgo >= 0; daysAgo-- {
			date := time.Date(year, month, day, 0, 0, 0, 0, loc).AddDate(0, 0, -daysAgo)
			bucketStart := date.UnixMilli()
			bucketEnd := date.AddDate(0, 0, 1).UnixMilli()
			dur, plays := bucketOverlap(spans, bucketStart, bucketEnd)
			entries = append(entries, domain.TimelineEntry{
				Label:           date.Format("Mon"),
				TotalDurationMs: dur,
				PlayCount:       plays,
			})
		}
		return entries

	default:
		type group struct {
			durationMs int64
			plays      int
		}
		groups := make(map[string]*group)
		for _, slice := range SliceAllByDay(spans, loc) {
			week := (slice.Date.Day()-1)/7 + 1
			label := fmt.Sprintf("Week %d", week)
			g := groups[label]
			if g == nil {
				g = &group{}
				groups[label] = g
			}
			g.durationMs += slice.DurationMs
			g.plays++
		}

		entries := make([]domain.TimelineEntry, 0, len(groups))
		for label, g := range groups {
			entries = append(entries, domain.TimelineEntry{
				Label:           label,
				TotalDurationMs: g.durationMs,
				PlayCount:       g.plays,
			})
		}
		slices.SortFunc(entries, func(a, b domain.TimelineEntry) int {
			return cmp.Compare(a.Label, b.Label)
		})
		return entries
	}
}

// bucketOverlap sums span overlap with [bucketStart, bucketEnd) and counts
// spans touching the bucket.
func bucketOverlap(spans []domain.Span, bucketStart, bucketEnd int64) (durationMs int64, plays int) {
	for _, span := range spans {
		overlapStart := max(span.StartMillis, bucketStart)
		overlapEnd := min(span.EndMillis, bucketEnd)
		if d := overlapEnd - overlapStart; d > 0 {
			durationMs += d
		}
		if span.StartMillis < bucketEnd && span.EndMillis > bucketStart {
			plays++
		}
	}
	return durationMs, plays
}

func truncate[T any](s []T) []T {
	if len(s) > topN {
		return s[:topN]
	}
	return s
}

