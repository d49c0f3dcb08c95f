package stats

import (
	"slices"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

// DefaultSessionGap is the inactivity threshold separating two listening
// sessions.
const DefaultSessionGap = 30 * time.Minute

// DetectSessions groups merged spans into listening sessions. Spans are
// walked in start order; a span whose gap from the running session end is
// within the threshold joins the session, anything later opens a new one.
// The first span always seeds the first session.
//
// A session's SongCount increments once per contributing span.
func DetectSessions(spans []domain.Span, gap time.Duration) []domain.ListeningSession {
	if len(spans) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = DefaultSessionGap
	}
	gapMs := gap.Milliseconds()

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

	var sessions []domain.ListeningSession
	current := domain.ListeningSession{
		StartMillis:     sorted[0].StartMillis,
		EndMillis:       sorted[0].EndMillis,
		TotalDurationMs: sorted[0].DurationMs(),
		SongCount:       1,
	}

	for _, span := range sorted[1:] {
		if span.StartMillis-current.EndMillis > gapMs {
			sessions = append(sessions, current)
			current = domain.ListeningSession{
				StartMillis:     span.StartMillis,
				EndMillis:       span.EndMillis,
				TotalDurationMs: span.DurationMs(),
				SongCount:       1,
			}
			continue
		}
		current.EndMillis = max(current.EndMillis, span.EndMillis)
		current.TotalDurationMs += span.DurationMs()
		current.SongCount++
	}
	sessions = append(sessions, current)

	return sessions
}
