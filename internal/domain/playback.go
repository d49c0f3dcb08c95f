package domain

import "time"

// PlaybackEvent is the atomic, immutable record of one listened track
// segment. Events are append-only - every statistic derives from them.
//
// StartTimestamp and EndTimestamp are optional on the wire; when absent they
// derive from Timestamp and DurationMs. All times are epoch milliseconds.
type PlaybackEvent struct {
	ID     string `json:"id,omitempty"`
	SongID string `json:"songId"`

	Timestamp  int64 `json:"timestamp"`
	DurationMs int64 `json:"durationMs"`

	StartTimestamp *int64 `json:"startTimestamp,omitempty"`
	EndTimestamp   *int64 `json:"endTimestamp,omitempty"`

	// Denormalized display fields, used as fallback when the song is no
	// longer resolvable in the live catalog.
	SongTitle  string `json:"songTitle,omitempty"`
	ArtistName string `json:"artistName,omitempty"`
	AlbumName  string `json:"albumName,omitempty"`
	Genre      string `json:"genre,omitempty"`
}

// StartMillis returns the event start, deriving it from the end timestamp
// and duration when not recorded explicitly. Never negative.
func (e *PlaybackEvent) StartMillis() int64 {
	if e.StartTimestamp != nil {
		return *e.StartTimestamp
	}
	start := e.Timestamp - e.DurationMs
	if start < 0 {
		start = 0
	}
	return start
}

// EndMillis returns the event end, falling back to the record timestamp.
func (e *PlaybackEvent) EndMillis() int64 {
	if e.EndTimestamp != nil {
		return *e.EndTimestamp
	}
	return e.Timestamp
}

// WithBounds returns a copy of the event clipped to the given bounds.
// The duration is recomputed from the clipped interval.
func (e PlaybackEvent) WithBounds(startMillis, endMillis int64) PlaybackEvent {
	e.StartTimestamp = &startMillis
	e.EndTimestamp = &endMillis
	e.Timestamp = endMillis
	e.DurationMs = endMillis - startMillis
	if e.DurationMs < 0 {
		e.DurationMs = 0
	}
	return e
}

// Segment is a maximal run of overlapping or adjacent events for one song:
// one continuous listen, possibly assembled from several raw events
// (pause/resume). Rebuilt on every summary computation, never persisted.
type Segment struct {
	SongID      string
	StartMillis int64
	EndMillis   int64
}

// DurationMs returns the segment length, floored at zero.
func (s Segment) DurationMs() int64 {
	if d := s.EndMillis - s.StartMillis; d > 0 {
		return d
	}
	return 0
}

// Span is a maximal run of overlapping or adjacent segments regardless of
// song. Spans are the double-count-free view of listening time: simultaneous
// plays across songs collapse into one span.
type Span struct {
	StartMillis int64
	EndMillis   int64
}

// DurationMs returns the span length, floored at zero.
func (s Span) DurationMs() int64 {
	if d := s.EndMillis - s.StartMillis; d > 0 {
		return d
	}
	return 0
}

// ListeningSession groups spans whose spacing stays below the inactivity gap
// threshold. SongCount counts contributing spans, an approximation of tracks
// in the session rather than a distinct-song count.
type ListeningSession struct {
	StartMillis     int64
	EndMillis       int64
	TotalDurationMs int64
	SongCount       int
}

// DaySlice is a span's duration contribution restricted to one calendar day.
// Date is midnight of that day in the reference time zone.
type DaySlice struct {
	Date       time.Time
	DurationMs int64
}
