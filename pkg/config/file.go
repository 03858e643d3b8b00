package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/kcal/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Sink:               ptr.To("log"),
		FBDevice:           ptr.To("/dev/fb0"),
		DumpPath:           ptr.To("/var/run/kcal-frame.json"),
		VersionMajor:       ptr.To(1),
		VersionMinor:       ptr.To(0),
		AllowNonRootAccess: ptr.To(false),
		ReapplySchedule:    ptr.To(""),
		ApplyOnStart:       ptr.To(true),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Sink               *string `json:"sink,omitempty"`
	FBDevice           *string `json:"fbDevice,omitempty"`
	DumpPath           *string `json:"dumpPath,omitempty"`
	VersionMajor       *int    `json:"versionMajor,omitempty"`
	VersionMinor       *int    `json:"versionMinor,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
	ReapplySchedule    *string `json:"reapplySchedule,omitempty"`
	ApplyOnStart       *bool   `json:"applyOnStart,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Sink:               ptr.To(c.Sink()),
		VersionMajor:       ptr.To(c.VersionMajor()),
		VersionMinor:       ptr.To(c.VersionMinor()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		ReapplySchedule:    ptr.To(c.ReapplySchedule()),
		ApplyOnStart:       ptr.To(c.ApplyOnStart()),
	}
	switch c.Sink() {
	case "fbdev":
		rawConfig.FBDevice = ptr.To(c.SinkTarget())
	case "json":
		rawConfig.DumpPath = ptr.To(c.SinkTarget())
	}

	return rawConfig, nil
}

// valueOr returns *v, or *def when v is nil.
func valueOr[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

// view runs fn on the raw config with the read lock held.
func view[T any](f *File, fn func(c *RawFileConfig) T) T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.c == nil {
		panic("config is nil")
	}
	return fn(f.c)
}

// update runs fn on the raw config with the write lock held.
func (f *File) update(fn func(c *RawFileConfig)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.c == nil {
		panic("config is nil")
	}
	fn(f.c)
}

func sinkTarget(c *RawFileConfig) string {
	switch valueOr(c.Sink, defaultFileConfig.Sink) {
	case "fbdev":
		return valueOr(c.FBDevice, defaultFileConfig.FBDevice)
	case "json":
		return valueOr(c.DumpPath, defaultFileConfig.DumpPath)
	default:
		return ""
	}
}

func (f *File) Sink() string {
	return view(f, func(c *RawFileConfig) string { return valueOr(c.Sink, defaultFileConfig.Sink) })
}

// SinkTarget is the device or file path of the selected sink, empty for the
// log sink.
func (f *File) SinkTarget() string {
	return view(f, sinkTarget)
}

func (f *File) VersionMajor() int {
	return view(f, func(c *RawFileConfig) int { return valueOr(c.VersionMajor, defaultFileConfig.VersionMajor) })
}

func (f *File) VersionMinor() int {
	return view(f, func(c *RawFileConfig) int { return valueOr(c.VersionMinor, defaultFileConfig.VersionMinor) })
}

func (f *File) AllowNonRootAccess() bool {
	return view(f, func(c *RawFileConfig) bool {
		return valueOr(c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
	})
}

func (f *File) ReapplySchedule() string {
	return view(f, func(c *RawFileConfig) string { return valueOr(c.ReapplySchedule, defaultFileConfig.ReapplySchedule) })
}

func (f *File) ApplyOnStart() bool {
	return view(f, func(c *RawFileConfig) bool { return valueOr(c.ApplyOnStart, defaultFileConfig.ApplyOnStart) })
}

func (f *File) SetSink(s string) {
	switch s {
	case "log", "json", "fbdev":
	default:
		panic("sink must be one of log, json, fbdev")
	}
	f.update(func(c *RawFileConfig) { c.Sink = &s })
}

func (f *File) SetFBDevice(s string) {
	f.update(func(c *RawFileConfig) { c.FBDevice = &s })
}

func (f *File) SetDumpPath(s string) {
	f.update(func(c *RawFileConfig) { c.DumpPath = &s })
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.update(func(c *RawFileConfig) { c.AllowNonRootAccess = &b })
}

func (f *File) SetReapplySchedule(s string) {
	f.update(func(c *RawFileConfig) { c.ReapplySchedule = &s })
}

func (f *File) SetApplyOnStart(b bool) {
	f.update(func(c *RawFileConfig) { c.ApplyOnStart = &b })
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

// LogrusFields reads every field under one lock, so a concurrent Load
// cannot produce a mix of old and new values.
func (f *File) LogrusFields() logrus.Fields {
	return view(f, func(c *RawFileConfig) logrus.Fields {
		return logrus.Fields{
			"sink":               valueOr(c.Sink, defaultFileConfig.Sink),
			"sinkTarget":         sinkTarget(c),
			"versionMajor":       valueOr(c.VersionMajor, defaultFileConfig.VersionMajor),
			"versionMinor":       valueOr(c.VersionMinor, defaultFileConfig.VersionMinor),
			"allowNonRootAccess": valueOr(c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess),
			"reapplySchedule":    valueOr(c.ReapplySchedule, defaultFileConfig.ReapplySchedule),
			"applyOnStart":       valueOr(c.ApplyOnStart, defaultFileConfig.ApplyOnStart),
		}
	})
}
