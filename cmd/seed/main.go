// Package main provides a tool to seed the history file with test
// playback data.
//
// It writes a realistic spread of events over the past weeks so stats,
// streaks and sessions have something to chew on.
//
// Usage:
//
//	DATA_PATH=~/RhythmStats/data go run ./cmd/seed
//	DATA_PATH=~/RhythmStats/data go run ./cmd/seed -days 30 -events 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/chromahub/rhythm-stats/internal/domain"
	"github.com/chromahub/rhythm-stats/internal/id"
	"github.com/chromahub/rhythm-stats/internal/store"
)

var (
	days   = flag.Int("days", 21, "How many days back to spread events over")
	events = flag.Int("events", 120, "How many events to generate")
)

var sampleSongs = []domain.Song{
	{Title: "Midnight City", Artist: "M83", Album: "Hurry Up, We're Dreaming", Genre: "Electronic"},
	{Title: "Weird Fishes", Artist: "Radiohead", Album: "In Rainbows", Genre: "Alternative"},
	{Title: "Redbone", Artist: "Childish Gambino", Album: "Awaken, My Love!", Genre: "Funk"},
	{Title: "Nuvole Bianche", Artist: "Ludovico Einaudi", Album: "Una Mattina", Genre: "Classical"},
	{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue", Genre: "Jazz"},
	{Title: "Dreams", Artist: "Fleetwood Mac", Album: "Rumours", Genre: "Rock"},
	{Title: "Good Days", Artist: "SZA", Album: "Good Days", Genre: "R&B"},
	{Title: "Harness Your Hopes", Artist: "Pavement", Album: "Brighten the Corners", Genre: "Indie Rock"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/RhythmStats/data")
	}

	historyPath := filepath.Join(dataPath, "playback_history.json")
	fmt.Printf("Seeding history at: %s\n", historyPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	hs := store.NewHistoryStore(historyPath, logger, store.HistoryOptions{})

	// Give song IDs to the samples
	songs := make([]domain.Song, len(sampleSongs))
	copy(songs, sampleSongs)
	for i := range songs {
		songs[i].ID = id.MustNew(id.KindSong)
	}

	// Also store them in the catalog so metadata fallback has a source
	catalog, err := store.OpenCatalog(filepath.Join(dataPath, "catalog"), logger)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalog.Close()

	ctx := context.Background()
	for i := range songs {
		if err := catalog.PutSong(ctx, &songs[i]); err != nil {
			log.Fatalf("Failed to store song: %v", err)
		}
	}

	now := time.Now()
	written := 0
	for i := 0; i < *events; i++ {
		song := songs[rand.Intn(len(songs))]

		// Bias toward evening hours
		daysAgo := rand.Intn(*days)
		hour := 8 + rand.Intn(15)
		minute := rand.Intn(60)
		end := now.AddDate(0, 0, -daysAgo)
		end = time.Date(end.Year(), end.Month(), end.Day(), hour, minute, 0, 0, time.Local)

		durationMs := int64(60+rand.Intn(300)) * 1000

		event := &domain.PlaybackEvent{
			ID:         id.MustNew(id.KindEvent),
			SongID:     song.ID,
			Timestamp:  end.UnixMilli(),
			DurationMs: durationMs,
			SongTitle:  song.Title,
			ArtistName: song.Artist,
			AlbumName:  song.Album,
			Genre:      song.Genre,
		}
		if err := hs.Append(event); err != nil {
			log.Fatalf("Failed to append event: %v", err)
		}
		written++
	}

	fmt.Printf("Wrote %d events across %d songs\n", written, len(songs))
}
