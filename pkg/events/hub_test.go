package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	h.Publish(TripletUpdated, TripletEvent{Red: 1, Green: 2, Blue: 3})

	select {
	case ev := <-sub.C:
		if ev.Name != TripletUpdated {
			t.Fatalf("event name = %s", ev.Name)
		}
		p, err := DecodeAs[TripletEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs failed: %v", err)
		}
		if p.Red != 1 || p.Green != 2 || p.Blue != 3 {
			t.Fatalf("payload = %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishOnNilHub(t *testing.T) {
	var h *EventHub
	h.Publish(LUTReset, struct{}{})
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewEventHub()
	sub := h.Subscribe()
	if h.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d", h.Subscribers())
	}
	h.Unsubscribe(sub)
	if _, ok := <-sub.C; ok {
		t.Fatal("channel should be closed")
	}
	if h.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d", h.Subscribers())
	}
	// second unsubscribe must not panic
	h.Unsubscribe(sub)
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantCap int
	}{
		{name: "default buffer", wantCap: defaultBuffer},
		{name: "custom buffer", opts: []Option{WithBuffer(4)}, wantCap: 4},
		{name: "non-positive buffer keeps default", opts: []Option{WithBuffer(0)}, wantCap: defaultBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEventHub(tt.opts...)
			sub := h.Subscribe()
			defer h.Unsubscribe(sub)

			const published = 100
			for i := 0; i < published; i++ {
				h.Publish(LUTReset, struct{}{})
			}
			if len(sub.C) != tt.wantCap || cap(sub.C) != tt.wantCap {
				t.Fatalf("buffered %d/%d events, want %d", len(sub.C), cap(sub.C), tt.wantCap)
			}
			if got := sub.Dropped(); got != uint64(published-tt.wantCap) {
				t.Fatalf("Dropped() = %d, want %d", got, published-tt.wantCap)
			}
		})
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	h := NewEventHub()
	a, b := h.Subscribe(), h.Subscribe()

	h.Close()
	for _, sub := range []*Subscription{a, b} {
		if _, ok := <-sub.C; ok {
			t.Fatal("subscription still open after Close")
		}
	}
	if h.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d", h.Subscribers())
	}

	late := h.Subscribe()
	if _, ok := <-late.C; ok {
		t.Fatal("subscription on a closed hub should start closed")
	}
	h.Publish(LUTReset, struct{}{})
	h.Unsubscribe(a)
	h.Close()
}

func TestConcurrentPublishAndClose(t *testing.T) {
	h := NewEventHub(WithBuffer(1))
	wg := &sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := h.Subscribe()
			for j := 0; j < 50; j++ {
				h.Publish(LUTUpdated, LUTUpdatedEvent{Index: j})
			}
			h.Unsubscribe(sub)
		}()
	}
	h.Close()
	wg.Wait()
}
