package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/chromahub/rhythm-stats/internal/domain"
)

const songPrefix = "song:"

// Catalog is the live song metadata store, backed by a Badger database.
// Summary computation consults it first when resolving display metadata;
// events keep denormalized copies for songs that have left the catalog.
type Catalog struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenCatalog opens (or creates) the catalog database at path.
func OpenCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Badger's own logging is too chatty
	opts.SyncWrites = true // survive crashes without replaying anything

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	logger.Info("song catalog opened", "path", path)
	return &Catalog{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// PutSong creates or replaces a catalog entry.
func (c *Catalog) PutSong(ctx context.Context, song *domain.Song) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if song == nil || song.ID == "" {
		return fmt.Errorf("song id is required")
	}

	data, err := json.Marshal(song)
	if err != nil {
		return fmt.Errorf("marshal song: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(songPrefix+song.ID), data)
	})
}

// GetSong retrieves a catalog entry by ID.
func (c *Catalog) GetSong(ctx context.Context, songID string) (*domain.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var song domain.Song
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(songPrefix + songID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSongNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &song)
		})
	})
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// DeleteSong removes a catalog entry. Deleting an absent song is a no-op.
func (c *Catalog) DeleteSong(ctx context.Context, songID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(songPrefix + songID))
	})
}

// ListSongs returns every catalog entry. Corrupt values are skipped rather
// than failing the scan.
func (c *Catalog) ListSongs(ctx context.Context) ([]domain.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var songs []domain.Song
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(songPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			var song domain.Song
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &song)
			})
			if err != nil {
				c.logger.Warn("skipping corrupt catalog entry",
					"key", string(it.Item().Key()),
					"error", err,
				)
				continue
			}
			songs = append(songs, song)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return songs, nil
}
