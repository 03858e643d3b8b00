// Package panel provides the display capability driven by the kcal gateway.
//
// Software keeps the gain triplet in memory and, on every refresh, hands the
// current working LUT together with the triplet to a Sink, which talks to
// the actual display.
package panel

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/kcal/pkg/kcal"
	"github.com/charlie0129/kcal/pkg/lut"
)

// DefaultGain is the triplet a panel starts with.
const DefaultGain = 255

// Frame is everything a sink needs to program the display.
type Frame struct {
	LUT   lut.Table
	Red   int
	Green int
	Blue  int
}

// Sink receives frames on refresh.
type Sink interface {
	Name() string
	Apply(f Frame) error
	Close() error
}

// LUTSource returns the table to program at refresh time.
type LUTSource func() lut.Table

var _ kcal.Panel = &Software{}

// Software implements kcal.Panel on top of a Sink.
type Software struct {
	mu      *sync.RWMutex
	r, g, b int

	// refreshMu serializes sink writes.
	refreshMu *sync.Mutex
	source    LUTSource
	sink      Sink
}

// NewSoftware returns a panel with the default triplet.
func NewSoftware(source LUTSource, sink Sink) *Software {
	if source == nil {
		source = lut.Linear
	}
	if sink == nil {
		sink = NewLogSink()
	}

	return &Software{
		mu:        &sync.RWMutex{},
		r:         DefaultGain,
		g:         DefaultGain,
		b:         DefaultGain,
		refreshMu: &sync.Mutex{},
		source:    source,
		sink:      sink,
	}
}

// SetTriplet stores the triplet. It takes effect on the next Refresh.
func (p *Software) SetTriplet(r, g, b int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.r, p.g, p.b = r, g, b
	return nil
}

// Triplet returns the stored triplet.
func (p *Software) Triplet() (int, int, int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.r, p.g, p.b, nil
}

// Refresh pushes the current LUT and triplet to the sink. It returns
// kcal.StatusIOError if the sink fails.
func (p *Software) Refresh() int {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	r, g, b, _ := p.Triplet()
	f := Frame{
		LUT:   p.source(),
		Red:   r,
		Green: g,
		Blue:  b,
	}

	if err := p.sink.Apply(f); err != nil {
		logrus.WithFields(logrus.Fields{
			"sink":  p.sink.Name(),
			"red":   r,
			"green": g,
			"blue":  b,
		}).Errorf("failed to apply frame: %v", err)
		return kcal.StatusIOError
	}

	return kcal.StatusOK
}

// Close closes the sink.
func (p *Software) Close() error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	return p.sink.Close()
}
