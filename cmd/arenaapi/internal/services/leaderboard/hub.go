package leaderboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSubscriberBuffer is the per-subscriber event queue length.
const DefaultSubscriberBuffer = 8

// Event tells subscribers that the leaderboard changed and should be re-read.
type Event struct {
	Type   string    `json:"type"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Notifier is implemented by Hub and consumed by services that change counters.
type Notifier interface {
	Notify(reason string)
}

// Subscription receives events until it is closed, dropped for falling
// behind, or the hub stops. C is closed in all three cases.
type Subscription struct {
	C <-chan Event

	ch   chan Event
	hub  *Hub
	once sync.Once
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans out leaderboard events to subscribers. A subscriber whose queue is
// full when an event arrives is dropped rather than waited on.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	stopped bool
	buffer  int
	logger  *zap.Logger
	now     func() time.Time
}

// NewHub creates a hub. A non-positive buffer uses DefaultSubscriberBuffer.
func NewHub(logger *zap.Logger, buffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger.Named("leaderboard.hub"),
		now:    time.Now,
	}
}

// Run blocks until ctx is cancelled and then closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for sub := range h.subs {
		h.closeLocked(sub)
	}
	h.logger.Debug("hub stopped")
}

// Subscribe registers a new subscriber. After the hub stopped the returned
// subscription is already closed.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Notify delivers a change event to every subscriber without blocking.
func (h *Hub) Notify(reason string) {
	ev := Event{Type: "leaderboard.changed", Reason: reason, At: h.now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping slow leaderboard subscriber")
			h.closeLocked(sub)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeLocked(sub)
}

func (h *Hub) closeLocked(sub *Subscription) {
	delete(h.subs, sub)
	sub.once.Do(func() { close(sub.ch) })
}
