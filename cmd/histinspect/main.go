// Package main provides a tool to inspect the history file and print
// per-range summaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
	"github.com/chromahub/rhythm-stats/internal/stats"
	"github.com/chromahub/rhythm-stats/internal/store"
)

var verbose = flag.Bool("v", false, "Print every retained event")

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/RhythmStats/data")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hs := store.NewHistoryStore(filepath.Join(dataPath, "playback_history.json"), logger, store.HistoryOptions{})

	events, err := hs.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}

	fmt.Println("=== History Inspection ===")
	fmt.Printf("Events: %d\n", len(events))
	fmt.Println()

	if *verbose {
		for _, e := range events {
			fmt.Printf("%s  %-24s %8dms  %s - %s\n",
				time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05"),
				e.SongID, e.DurationMs, e.ArtistName, e.SongTitle)
		}
		fmt.Println()
	}

	var songs []domain.Song
	catalog, err := store.OpenCatalog(filepath.Join(dataPath, "catalog"), logger)
	if err == nil {
		defer catalog.Close()
		songs, err = catalog.ListSongs(context.Background())
		if err != nil {
			fmt.Printf("catalog read failed: %v\n", err)
		}
	}

	now := time.Now().UnixMilli()
	for _, r := range []domain.TimeRange{
		domain.RangeToday,
		domain.RangeWeek,
		domain.RangeMonth,
		domain.RangeAllTime,
	} {
		summary := stats.BuildSummary(stats.BuildParams{
			Range:     r,
			Events:    events,
			Songs:     songs,
			NowMillis: now,
			Location:  time.Local,
		})

		fmt.Printf("--- %s ---\n", r.Label())
		fmt.Printf("  listened: %s over %d plays (%d songs, %d artists)\n",
			time.Duration(summary.TotalDurationMs)*time.Millisecond,
			summary.TotalPlayCount, summary.UniqueSongs, summary.UniqueArtists)
		fmt.Printf("  active days: %d  longest streak: %d\n",
			summary.ActiveDays, summary.LongestStreakDays)
		fmt.Printf("  sessions: %d (avg %s)\n",
			summary.TotalSessions,
			time.Duration(summary.AverageSessionDurationMs)*time.Millisecond)
		for i, s := range summary.TopSongs {
			fmt.Printf("  #%d %s - %s (%s)\n", i+1, s.Artist, s.Title,
				time.Duration(s.TotalDurationMs)*time.Millisecond)
		}
		fmt.Println()
	}
}
