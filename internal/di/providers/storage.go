package providers

import (
	"fmt"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/chromahub/rhythm-stats/internal/config"
	"github.com/chromahub/rhythm-stats/internal/logger"
	"github.com/chromahub/rhythm-stats/internal/store"
)

// ProvideHistoryStore provides the playback history file store.
func ProvideHistoryStore(i do.Injector) (*store.HistoryStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	hs := store.NewHistoryStore(cfg.HistoryPath(), log.Logger, store.HistoryOptions{
		Retention:        time.Duration(cfg.Stats.RetentionDays) * 24 * time.Hour,
		MaxEventDuration: cfg.Stats.MaxEventDuration,
	})

	log.Info("History store initialized", "path", cfg.HistoryPath())
	return hs, nil
}

// CatalogHandle wraps the song catalog with shutdown capability.
type CatalogHandle struct {
	*store.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideCatalog provides the song catalog database.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	catalog, err := store.OpenCatalog(cfg.CatalogPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Song catalog initialized", "path", cfg.CatalogPath())
	return &CatalogHandle{Catalog: catalog}, nil
}
