package stats

import (
	"slices"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

const dateKeyFormat = "2006-01-02"

// SliceByDay splits a span into per-calendar-day slices in the given zone.
// Each slice carries midnight of its day and the duration falling inside it;
// the final slice is clipped to the span end.
func SliceByDay(span domain.Span, loc *time.Location) []domain.DaySlice {
	var daySlices []domain.DaySlice

	current := span.StartMillis
	for current < span.EndMillis {
		year, month, day := time.UnixMilli(current).In(loc).Date()
		midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
		dayEnd := midnight.AddDate(0, 0, 1).UnixMilli()

		sliceEnd := min(dayEnd, span.EndMillis)
		if dur := sliceEnd - current; dur > 0 {
			daySlices = append(daySlices, domain.DaySlice{
				Date:       midnight,
				DurationMs: dur,
			})
		}
		current = sliceEnd
	}

	return daySlices
}

// SliceAllByDay slices every span and concatenates the results.
func SliceAllByDay(spans []domain.Span, loc *time.Location) []domain.DaySlice {
	var all []domain.DaySlice
	for _, span := range spans {
		all = append(all, SliceByDay(span, loc)...)
	}
	return all
}

// ActiveDays counts distinct calendar dates carrying any listening.
func ActiveDays(daySlices []domain.DaySlice) int {
	seen := make(map[string]struct{}, len(daySlices))
	for _, s := range daySlices {
		seen[s.Date.Format(dateKeyFormat)] = struct{}{}
	}
	return len(seen)
}

// LongestStreak returns the length of the longest run of consecutive
// calendar dates among the slices' days. Zero for no slices.
func LongestStreak(daySlices []domain.DaySlice) int {
	if len(daySlices) == 0 {
		return 0
	}

	byKey := make(map[string]time.Time, len(daySlices))
	for _, s := range daySlices {
		byKey[s.Date.Format(dateKeyFormat)] = s.Date
	}
	days := make([]time.Time, 0, len(byKey))
	for _, d := range byKey {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// PeakDayOfWeek returns the weekday with the largest summed duration and
// that duration. ok is false when there are no slices.
func PeakDayOfWeek(daySlices []domain.DaySlice) (day time.Weekday, durationMs int64, ok bool) {
	totals := make(map[time.Weekday]int64)
	for _, s := range daySlices {
		totals[s.Date.Weekday()] += s.DurationMs
	}
	if len(totals) == 0 {
		return 0, 0, false
	}

	// Walk weekdays in fixed order so ties break deterministically.
	first := true
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		total, present := totals[wd]
		if !present {
			continue
		}
		if first || total > durationMs {
			day, durationMs = wd, total
			first = false
		}
	}
	return day, durationMs, true
}

// HourDistribution accumulates span durations into 24 fixed hour-of-day
// buckets, splitting spans at hour boundaries in the given zone. The result
// always has 24 entries, hours 0 through 23 in order.
func HourDistribution(spans []domain.Span, loc *time.Location) []domain.HourBucket {
	var totals [24]int64

	for _, span := range spans {
		current := span.StartMillis
		for current < span.EndMillis {
			t := time.UnixMilli(current).In(loc)
			hourStart := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
			hourEnd := min(hourStart.Add(time.Hour).UnixMilli(), span.EndMillis)

			totals[t.Hour()] += hourEnd - current
			current = hourEnd
		}
	}

	buckets := make([]domain.HourBucket, 24)
	for hour := range buckets {
		buckets[hour] = domain.HourBucket{
			StartHour:       hour,
			EndHour:         (hour + 1) % 24,
			TotalDurationMs: totals[hour],
		}
	}
	return buckets
}

// PeakHour returns the hour bucket with the largest duration. ok is false
// when every bucket is empty.
func PeakHour(buckets []domain.HourBucket) (hour int, ok bool) {
	var best int64
	for _, b := range buckets {
		if b.TotalDurationMs > best {
			best = b.TotalDurationMs
			hour = b.StartHour
			ok = true
		}
	}
	return hour, ok
}
