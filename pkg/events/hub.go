package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const defaultBuffer = 16

// Subscription is one consumer of an EventHub. C is closed when the
// subscription ends, either by Unsubscribe or by closing the hub.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	dropped atomic.Uint64
}

// Dropped returns how many events this subscriber missed because its buffer
// was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// EventHub fans published events out to every subscriber. A slow subscriber
// loses events instead of blocking publishers.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

type Option func(*EventHub)

// WithBuffer sets the per-subscriber queue length.
func WithBuffer(n int) Option {
	return func(h *EventHub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func NewEventHub(opts ...Option) *EventHub {
	h := &EventHub{
		subs:   make(map[*Subscription]struct{}),
		buffer: defaultBuffer,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription is already closed.
func (h *EventHub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	s := &Subscription{C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

func (h *EventHub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Publish is a no-op on a nil or closed hub.
func (h *EventHub) Publish(name string, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", name).Warn("failed to marshal event payload")
		return
	}
	msg := Event{Name: name, Data: b}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.ch <- msg:
		default:
			n := s.dropped.Add(1)
			logrus.WithFields(logrus.Fields{
				"event":   name,
				"dropped": n,
			}).Debug("subscriber queue full, event dropped")
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later subscriptions start closed and
// published events go nowhere. Close is idempotent.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
	logrus.Debug("event hub closed")
}
