// Package stats implements the pure aggregation engine: interval merging,
// session detection, calendar slicing and summary assembly. Every function
// here is deterministic over already-copied data and holds no locks.
package stats

import (
	"slices"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

// MergeEvents collapses one song's events into maximal contiguous segments.
// Events are taken in start order; an event whose start is at or before the
// running end extends the current segment (touching counts as contiguous, so
// two back-to-back plays with zero gap become one segment and one play).
//
// The input is not mutated. Empty input yields no segments.
func MergeEvents(events []domain.PlaybackEvent) []domain.Segment {
	if len(events) == 0 {
		return nil
	}

	sorted := slices.Clone(events)
	slices.SortFunc(sorted, func(a, b domain.PlaybackEvent) int {
		switch sa, sb := a.StartMillis(), b.StartMillis(); {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})

	songID := sorted[0].SongID
	segments := make([]domain.Segment, 0, len(sorted))
	currentStart := sorted[0].StartMillis()
	currentEnd := sorted[0].EndMillis()

	for _, event := range sorted[1:] {
		start, end := event.StartMillis(), event.EndMillis()
		if start <= currentEnd {
			currentEnd = max(currentEnd, end)
			continue
		}
		segments = append(segments, domain.Segment{
			SongID:      songID,
			StartMillis: currentStart,
			EndMillis:   currentEnd,
		})
		currentStart, currentEnd = start, end
	}
	segments = append(segments, domain.Segment{
		SongID:      songID,
		StartMillis: currentStart,
		EndMillis:   currentEnd,
	})

	return segments
}

// MergeSpans collapses spans across all songs into maximal contiguous runs,
// the double-count-free total-listening view. Same merge rule as
// MergeEvents: overlapping or touching spans coalesce.
func MergeSpans(spans []domain.Span) []domain.Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b domain.Span) int {
		switch {
		case a.StartMillis < b.StartMillis:
			return -1
		case a.StartMillis > b.StartMillis:
			return 1
		default:
			return 0
		}
	})

	merged := make([]domain.Span, 0, len(sorted))
	current := sorted[0]

	for _, span := range sorted[1:] {
		if span.StartMillis <= current.EndMillis {
			current.EndMillis = max(current.EndMillis, span.EndMillis)
			continue
		}
		merged = append(merged, current)
		current = span
	}
	merged = append(merged, current)

	return merged
}
