// Package notify delivers summary updates to in-process subscribers.
package notify

import (
	"log/slog"
	"sync"

	"github.com/chromahub/rhythm-stats/internal/domain"
	"github.com/chromahub/rhythm-stats/internal/id"
)

// subscriberBuffer is the per-subscriber channel capacity. Sends never
// block; a slow subscriber drops updates instead of stalling publishers.
const subscriberBuffer = 8

// Subscriber receives summary updates for one consumer.
type Subscriber struct {
	ID      string
	Updates chan *domain.StatsSummary
}

// Broadcaster fans summary updates out to subscribers and retains the
// latest published summary per range so new subscribers can catch up.
type Broadcaster struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	latest      map[domain.TimeRange]*domain.StatsSummary
	closed      bool
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		logger:      logger,
		subscribers: make(map[string]*Subscriber),
		latest:      make(map[domain.TimeRange]*domain.StatsSummary),
	}
}

// Subscribe registers a new subscriber. The caller must Unsubscribe when
// done or the subscriber leaks.
func (b *Broadcaster) Subscribe() (*Subscriber, error) {
	subID, err := id.New(id.KindSubscriber)
	if err != nil {
		return nil, err
	}

	sub := &Subscriber{
		ID:      subID,
		Updates: make(chan *domain.StatsSummary, subscriberBuffer),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.Updates)
		return sub, nil
	}
	b.subscribers[sub.ID] = sub
	total := len(b.subscribers)
	b.mu.Unlock()

	b.logger.Debug("subscriber registered",
		slog.String("subscriber_id", subID),
		slog.Int("total_subscribers", total))
	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	sub, ok := b.subscribers[subID]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subscribers, subID)
	total := len(b.subscribers)
	b.mu.Unlock()

	close(sub.Updates)

	b.logger.Debug("subscriber removed",
		slog.String("subscriber_id", subID),
		slog.Int("total_subscribers", total))
}

// Publish records the summary as the latest for its range and delivers it
// to every subscriber. Slow subscribers are skipped, not waited on.
func (b *Broadcaster) Publish(summary *domain.StatsSummary) {
	if summary == nil {
		return
	}

	var delivered, dropped int

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.latest[summary.Range] = summary
	for _, sub := range b.subscribers {
		select {
		case sub.Updates <- summary:
			delivered++
		default:
			dropped++
			b.logger.Warn("dropped update for slow subscriber",
				slog.String("subscriber_id", sub.ID),
				slog.String("range", string(summary.Range)))
		}
	}
	b.mu.Unlock()

	b.logger.Debug("summary published",
		slog.String("range", string(summary.Range)),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

// Latest returns the most recently published summary for the range, or
// nil if none has been published since startup or the last Clear.
func (b *Broadcaster) Latest(r domain.TimeRange) *domain.StatsSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest[r]
}

// Clear forgets all retained summaries. Subscribers stay registered.
func (b *Broadcaster) Clear() {
	b.mu.Lock()
	b.latest = make(map[domain.TimeRange]*domain.StatsSummary)
	b.mu.Unlock()
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close removes all subscribers and rejects future publishes.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub.Updates)
	}
	b.subscribers = make(map[string]*Subscriber)

	b.logger.Debug("broadcaster closed")
}
