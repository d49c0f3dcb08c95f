package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/chromahub/rhythm-stats/internal/config"
	"github.com/chromahub/rhythm-stats/internal/logger"
	"github.com/chromahub/rhythm-stats/internal/notify"
	"github.com/chromahub/rhythm-stats/internal/service"
	"github.com/chromahub/rhythm-stats/internal/store"
	"github.com/chromahub/rhythm-stats/internal/validation"
	"github.com/chromahub/rhythm-stats/internal/watcher"
)

// BroadcasterHandle wraps the broadcaster with shutdown capability.
type BroadcasterHandle struct {
	*notify.Broadcaster
}

// Shutdown implements do.Shutdownable.
func (h *BroadcasterHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideBroadcaster provides the summary update broadcaster.
func ProvideBroadcaster(i do.Injector) (*BroadcasterHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return &BroadcasterHandle{Broadcaster: notify.NewBroadcaster(log.Logger)}, nil
}

// ProvideStatsService provides the playback statistics facade.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	history := do.MustInvoke[*store.HistoryStore](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	broadcasterHandle := do.MustInvoke[*BroadcasterHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return service.NewStatsService(
		history,
		catalogHandle.Catalog,
		broadcasterHandle.Broadcaster,
		validator,
		log.Logger,
		service.Options{
			Location:   loc,
			SessionGap: cfg.Stats.SessionGap,
		},
	), nil
}

// WatcherHandle wraps the history watcher with its context for lifecycle
// management.
type WatcherHandle struct {
	*watcher.HistoryWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	if h.HistoryWatcher == nil {
		return nil
	}
	h.cancel()
	return h.Close()
}

// ProvideHistoryWatcher provides the history file watcher. Disabled via
// config, it returns an empty handle.
func ProvideHistoryWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	svc := do.MustInvoke[*service.StatsService](i)

	if !cfg.Data.WatchHistory {
		log.Info("History watcher disabled")
		return &WatcherHandle{}, nil
	}

	w, err := watcher.NewHistoryWatcher(svc.HistoryPath(), func(ctx context.Context) {
		svc.RefreshSummary(ctx)
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		return nil, err
	}

	return &WatcherHandle{HistoryWatcher: w, cancel: cancel}, nil
}
