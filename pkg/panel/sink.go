package panel

import (
	"encoding/json"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sink names accepted by NewSink.
const (
	SinkLog   = "log"
	SinkJSON  = "json"
	SinkFBDev = "fbdev"
)

// NewSink builds the sink called name. target is the device for fbdev and
// the output file for json; it is ignored by log.
func NewSink(name, target string) (Sink, error) {
	switch name {
	case "", SinkLog:
		return NewLogSink(), nil
	case SinkJSON:
		s, err := NewJSONFileSink(target)
		if err != nil {
			return nil, err
		}
		return s, nil
	case SinkFBDev:
		d, err := OpenFBDev(target)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, pkgerrors.Errorf("unknown sink %q", name)
	}
}

// LogSink only logs what it would program.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (*LogSink) Name() string { return SinkLog }

func (*LogSink) Apply(f Frame) error {
	logrus.WithFields(logrus.Fields{
		"red":         f.Red,
		"green":       f.Green,
		"blue":        f.Blue,
		"lutLinear":   f.LUT.IsLinear(),
		"lutModified": len(f.LUT.Modified()),
	}).Info("frame applied")
	return nil
}

func (*LogSink) Close() error { return nil }

// JSONFileSink writes each frame to a file, replacing the previous one.
type JSONFileSink struct {
	path string
}

// JSONFrame is the on-disk layout written by JSONFileSink.
type JSONFrame struct {
	Red   int      `json:"red"`
	Green int      `json:"green"`
	Blue  int      `json:"blue"`
	LUT   []uint32 `json:"lut"`
	Ramp  Ramp     `json:"ramp"`
}

func NewJSONFileSink(path string) (*JSONFileSink, error) {
	if path == "" {
		return nil, pkgerrors.New("json sink needs an output path")
	}
	return &JSONFileSink{path: path}, nil
}

func (s *JSONFileSink) Name() string { return SinkJSON }

func (s *JSONFileSink) Apply(f Frame) error {
	out := JSONFrame{
		Red:   f.Red,
		Green: f.Green,
		Blue:  f.Blue,
		LUT:   f.LUT[:],
		Ramp:  Compose(f),
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode frame")
	}

	// Write to a temp file first so readers never see a partial frame.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".kcal-frame-*")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create temp file next to %s", s.path)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return pkgerrors.Wrapf(err, "failed to move frame to %s", s.path)
	}

	logrus.WithField("path", s.path).Debug("frame written")
	return nil
}

func (s *JSONFileSink) Close() error { return nil }
