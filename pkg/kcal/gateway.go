// Package kcal implements the panel calibration request protocol.
//
// A Gateway validates text-line requests against the LUT store and the panel
// capability. Range and checksum failures are dropped silently: the write is
// consumed in full and the outcome can only be observed through the matching
// status read. Only empty or malformed payloads, a rejected apply command and
// a failed display refresh are reported to the writer.
package kcal

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/kcal/pkg/events"
	"github.com/charlie0129/kcal/pkg/lut"
)

const (
	// CommandApply is the only command accepted by Apply.
	CommandApply = 1

	StatusTextOK = "OK"
	StatusTextNG = "NG"
)

// Panel is the display capability set supplied by the host.
type Panel interface {
	SetTriplet(r, g, b int) error
	Triplet() (r, g, b int, err error)
	// Refresh pushes the current calibration to the display and returns
	// zero on success.
	Refresh() int
}

// Version identifies the protocol revision reported by the version query.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// DefaultVersion is reported when no version is configured.
var DefaultVersion = Version{Major: 1, Minor: 0}

// Gateway owns the calibration state of one panel.
type Gateway struct {
	panel   Panel
	store   *lut.Store
	hub     *events.EventHub
	version Version

	// dirty is set by an accepted LUT edit and consumed by LUTStatus.
	dirty atomic.Bool

	statusMu        *sync.Mutex
	lastApplyStatus int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithEventHub publishes state changes to h.
func WithEventHub(h *events.EventHub) Option {
	return func(g *Gateway) { g.hub = h }
}

// WithVersion overrides DefaultVersion.
func WithVersion(v Version) Option {
	return func(g *Gateway) { g.version = v }
}

// WithStore uses s instead of a fresh identity store.
func WithStore(s *lut.Store) Option {
	return func(g *Gateway) { g.store = s }
}

// New returns a Gateway driving p.
func New(p Panel, opts ...Option) *Gateway {
	if p == nil {
		panic("kcal: nil panel")
	}

	g := &Gateway{
		panel:           p,
		version:         DefaultVersion,
		statusMu:        &sync.Mutex{},
		lastApplyStatus: StatusOK,
	}
	for _, o := range opts {
		o(g)
	}
	if g.store == nil {
		g.store = lut.NewStore()
	}

	return g
}

// EditLUT handles a "<lut> <channel> <index> <key>" line. The edit is applied
// only if every field is in range and key matches LUTKey. The returned count
// is the full length of line whenever the line could be parsed, whether or
// not the edit was accepted.
func (g *Gateway) EditLUT(line string) (int, error) {
	v, err := scanInts(line, 4, 64)
	if err != nil {
		return 0, err
	}
	value, channel, index, key := v[0], v[1], v[2], v[3]

	fields := logrus.Fields{
		"lut":     value,
		"channel": channel,
		"index":   index,
		"key":     key,
	}

	if value < 0 || value > lut.MaxValue ||
		index < 0 || index > lut.Size-1 ||
		channel < 0 || channel > int64(lut.Blue) {
		logrus.WithFields(fields).Debug("lut edit out of range, ignored")
		return len(line), nil
	}

	if key != LUTKey(value, channel, index) {
		logrus.WithFields(fields).Debug("lut edit checksum mismatch, ignored")
		return len(line), nil
	}

	ch := lut.Channel(channel)
	g.store.UpdateEntry(uint(value), ch, uint8(index))
	g.dirty.Store(true)

	logrus.WithFields(fields).Info("lut entry updated")
	g.hub.Publish(events.LUTUpdated, events.LUTUpdatedEvent{
		Index:   int(index),
		Channel: ch.String(),
		Value:   int(value),
		Entry:   g.store.Entry(uint8(index)),
		Ts:      time.Now().Unix(),
	})

	return len(line), nil
}

// LUTStatus reports StatusTextOK once for every accepted edit since the last
// call and StatusTextNG otherwise.
func (g *Gateway) LUTStatus() string {
	if g.dirty.Swap(false) {
		return StatusTextOK
	}
	return StatusTextNG
}

// ResetLUT handles a "<flag>" line. A nonzero flag restores the identity
// table.
func (g *Gateway) ResetLUT(line string) (int, error) {
	v, err := scanInts(line, 1, 64)
	if err != nil {
		return 0, err
	}

	if v[0] != 0 {
		g.store.Reset()
		logrus.Info("working lut reset")
		g.hub.Publish(events.LUTReset, struct {
			Ts int64 `json:"ts"`
		}{Ts: time.Now().Unix()})
	}

	return len(line), nil
}

// SetTriplet handles a "<r> <g> <b> <chksum_raw>" line. The triplet reaches
// the panel only if bits 15..8 of chksum_raw equal TripletChecksum(r, g, b).
func (g *Gateway) SetTriplet(line string) (int, error) {
	v, err := scanInts(line, 4, 32)
	if err != nil {
		return 0, err
	}
	r, gr, b, raw := v[0], v[1], v[2], v[3]

	fields := logrus.Fields{
		"red":      r,
		"green":    gr,
		"blue":     b,
		"checksum": raw,
	}

	if extractTripletChecksum(raw) != TripletChecksum(r, gr, b) {
		logrus.WithFields(fields).Debug("triplet checksum mismatch, ignored")
		return len(line), nil
	}

	if err := g.panel.SetTriplet(int(r), int(gr), int(b)); err != nil {
		// Triplet writes never report capability errors to the writer.
		logrus.WithFields(fields).Errorf("panel SetTriplet failed: %v", err)
		return len(line), nil
	}

	logrus.WithFields(fields).Info("triplet updated")
	g.hub.Publish(events.TripletUpdated, events.TripletEvent{
		Red:   int(r),
		Green: int(gr),
		Blue:  int(b),
		Ts:    time.Now().Unix(),
	})

	return len(line), nil
}

// Triplet returns the panel triplet as "<r> <g> <b>".
func (g *Gateway) Triplet() (string, error) {
	r, gr, b, err := g.panel.Triplet()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d", r, gr, b), nil
}

// Apply handles a "<cmd>" line. Any command other than CommandApply, and any
// empty or malformed line, is recorded as StatusRejected. Otherwise the panel
// is refreshed and its result code recorded.
func (g *Gateway) Apply(line string) (int, error) {
	v, err := scanInts(line, 1, 64)
	if err != nil {
		g.setApplyStatus(StatusRejected)
		return 0, err
	}

	if v[0] != CommandApply {
		g.setApplyStatus(StatusRejected)
		logrus.WithField("cmd", v[0]).Warn("apply command rejected")
		return 0, ErrRejected
	}

	code := g.panel.Refresh()
	g.setApplyStatus(code)

	g.hub.Publish(events.ApplyResult, events.ApplyResultEvent{
		Code: code,
		Ts:   time.Now().Unix(),
	})

	if code != StatusOK {
		logrus.WithField("code", code).Error("display refresh failed")
		return 0, &RefreshError{Code: code}
	}

	logrus.Info("calibration applied to display")
	return len(line), nil
}

// ApplyStatus reports StatusTextOK if the last apply request succeeded.
func (g *Gateway) ApplyStatus() string {
	if g.LastApplyStatus() != StatusOK {
		return StatusTextNG
	}
	return StatusTextOK
}

// LastApplyStatus returns the result code of the last apply request.
func (g *Gateway) LastApplyStatus() int {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	return g.lastApplyStatus
}

func (g *Gateway) setApplyStatus(code int) {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	g.lastApplyStatus = code
}

// Version returns the protocol version.
func (g *Gateway) Version() Version {
	return g.version
}

// Resume is the power-state hook run after the device wakes up. It refreshes
// the panel unconditionally and leaves the last apply status untouched.
func (g *Gateway) Resume() int {
	code := g.panel.Refresh()
	if code != StatusOK {
		logrus.WithField("code", code).Error("display refresh on resume failed")
	} else {
		logrus.Info("calibration re-applied on resume")
	}

	g.hub.Publish(events.Resumed, events.ApplyResultEvent{
		Code: code,
		Ts:   time.Now().Unix(),
	})

	return code
}

// WorkingLUT returns a copy of the working table. The panel pipeline calls
// it at refresh time.
func (g *Gateway) WorkingLUT() lut.Table {
	return g.store.Snapshot()
}
