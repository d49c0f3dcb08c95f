package stats

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chromahub/rhythm-stats/internal/domain"
	"github.com/chromahub/rhythm-stats/internal/genre"
)

// Fallback labels for songs that resolve nowhere.
const (
	UnknownTitle  = "Unknown"
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
	UnknownGenre  = "Unknown"
)

var genreTitleCaser = cases.Title(language.English)

// lookup is one arm of a metadata fallback chain: it yields a value for a
// song ID, or false to pass to the next arm.
type lookup func(songID string) (string, bool)

// Resolver resolves display metadata for a song through an ordered fallback
// chain: live catalog entry, then the denormalized fields of the song's own
// events, then a fixed unknown label. Lookups are pure over the snapshot the
// resolver was built from.
type Resolver struct {
	songs  map[string]domain.Song
	events map[string]domain.PlaybackEvent
}

// NewResolver builds a resolver over a catalog snapshot and the (filtered)
// events of the summary window. For each song the first event seen supplies
// the denormalized fallback, matching insertion order of the history log.
func NewResolver(songs []domain.Song, events []domain.PlaybackEvent) *Resolver {
	r := &Resolver{
		songs:  make(map[string]domain.Song, len(songs)),
		events: make(map[string]domain.PlaybackEvent, len(events)),
	}
	for _, s := range songs {
		r.songs[s.ID] = s
	}
	for _, e := range events {
		if _, ok := r.events[e.SongID]; !ok {
			r.events[e.SongID] = e
		}
	}
	return r
}

// Title resolves the display title for a song.
func (r *Resolver) Title(songID string) string {
	return resolve(songID, UnknownTitle,
		r.fromCatalog(func(s domain.Song) string { return s.Title }),
		r.fromEvent(func(e domain.PlaybackEvent) string { return e.SongTitle }),
	)
}

// Artist resolves the display artist for a song.
func (r *Resolver) Artist(songID string) string {
	return resolve(songID, UnknownArtist,
		r.fromCatalog(func(s domain.Song) string { return s.Artist }),
		r.fromEvent(func(e domain.PlaybackEvent) string { return e.ArtistName }),
	)
}

// Album resolves the display album for a song.
func (r *Resolver) Album(songID string) string {
	return resolve(songID, UnknownAlbum,
		r.fromCatalog(func(s domain.Song) string { return s.Album }),
		r.fromEvent(func(e domain.PlaybackEvent) string { return e.AlbumName }),
	)
}

// GenreKey resolves the grouping key for a song's genre. Keys are
// canonical slugs so "Rap", "hip hop" and "Hip-Hop" land in one bucket.
func (r *Resolver) GenreKey(songID string) string {
	raw := resolve(songID, UnknownGenre,
		r.fromCatalog(func(s domain.Song) string { return s.Genre }),
		r.fromEvent(func(e domain.PlaybackEvent) string { return e.Genre }),
	)
	return genre.Canonical(raw)
}

// genreDisplayOverrides covers slugs the title caser cannot render well.
var genreDisplayOverrides = map[string]string{
	"rnb": "R&B",
	"edm": "EDM",
	"idm": "IDM",
}

// GenreLabel converts a grouping key back to a display label.
func GenreLabel(key string) string {
	if label, ok := genreDisplayOverrides[key]; ok {
		return label
	}
	return genreTitleCaser.String(strings.ReplaceAll(key, "-", " "))
}

func (r *Resolver) fromCatalog(field func(domain.Song) string) lookup {
	return func(songID string) (string, bool) {
		song, ok := r.songs[songID]
		if !ok {
			return "", false
		}
		v := strings.TrimSpace(field(song))
		return v, v != ""
	}
}

func (r *Resolver) fromEvent(field func(domain.PlaybackEvent) string) lookup {
	return func(songID string) (string, bool) {
		event, ok := r.events[songID]
		if !ok {
			return "", false
		}
		v := strings.TrimSpace(field(event))
		return v, v != ""
	}
}

// resolve evaluates the chain left to right, stopping at the first
// non-empty result.
func resolve(songID, fallback string, chain ...lookup) string {
	for _, fn := range chain {
		if v, ok := fn(songID); ok {
			return v
		}
	}
	return fallback
}
