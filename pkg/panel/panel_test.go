package panel

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charlie0129/kcal/pkg/kcal"
	"github.com/charlie0129/kcal/pkg/lut"
)

type recordSink struct {
	frames []Frame
	err    error
	closed bool
}

func (s *recordSink) Name() string { return "record" }

func (s *recordSink) Apply(f Frame) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordSink) Close() error {
	s.closed = true
	return nil
}

func TestSoftwareDefaults(t *testing.T) {
	p := NewSoftware(nil, nil)
	r, g, b, err := p.Triplet()
	if err != nil {
		t.Fatal(err)
	}
	if r != 255 || g != 255 || b != 255 {
		t.Fatalf("Triplet() = %d %d %d", r, g, b)
	}
	if code := p.Refresh(); code != kcal.StatusOK {
		t.Fatalf("Refresh() = %d", code)
	}
}

func TestSoftwareRefreshUsesCurrentLUT(t *testing.T) {
	store := lut.NewStore()
	sink := &recordSink{}
	p := NewSoftware(store.Snapshot, sink)

	if err := p.SetTriplet(10, 20, 30); err != nil {
		t.Fatal(err)
	}
	store.UpdateEntry(0, lut.Green, 77)

	if code := p.Refresh(); code != kcal.StatusOK {
		t.Fatalf("Refresh() = %d", code)
	}
	if len(sink.frames) != 1 {
		t.Fatalf("frames = %d", len(sink.frames))
	}
	f := sink.frames[0]
	if f.Red != 10 || f.Green != 20 || f.Blue != 30 {
		t.Fatalf("frame gain = %d %d %d", f.Red, f.Green, f.Blue)
	}
	if lut.UnpackChannel(f.LUT[77], lut.Green) != 0 {
		t.Fatalf("frame LUT[77] = %#08x", f.LUT[77])
	}
}

func TestSoftwareRefreshFailure(t *testing.T) {
	sink := &recordSink{err: errors.New("device gone")}
	p := NewSoftware(nil, sink)
	if code := p.Refresh(); code != kcal.StatusIOError {
		t.Fatalf("Refresh() = %d, want %d", code, kcal.StatusIOError)
	}
}

func TestSoftwareWithGateway(t *testing.T) {
	store := lut.NewStore()
	sink := &recordSink{}
	p := NewSoftware(store.Snapshot, sink)
	g := kcal.New(p, kcal.WithStore(store))

	if _, err := g.SetTriplet("10 20 30 49920"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.EditLUT("200 0 5 205"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Apply("1"); err != nil {
		t.Fatal(err)
	}
	if g.ApplyStatus() != kcal.StatusTextOK {
		t.Fatal("apply status should be OK")
	}
	f := sink.frames[len(sink.frames)-1]
	if lut.UnpackChannel(f.LUT[5], lut.Red) != 200 || f.Red != 10 {
		t.Fatalf("frame = %+v", f)
	}

	sink.err = errors.New("nope")
	if _, err := g.Apply("1"); err == nil {
		t.Fatal("expected refresh error")
	}
	if g.ApplyStatus() != kcal.StatusTextNG {
		t.Fatal("apply status should be NG")
	}
	if err := p.Close(); err != nil || !sink.closed {
		t.Fatal("Close did not close the sink")
	}
}

func TestCompose(t *testing.T) {
	f := Frame{LUT: lut.Linear(), Red: 255, Green: 0, Blue: 128}
	ramp := Compose(f)

	if ramp.Red[255] != 0xffff || ramp.Red[1] != 257 {
		t.Fatalf("red ramp = %d .. %d", ramp.Red[1], ramp.Red[255])
	}
	for i := range ramp.Green {
		if ramp.Green[i] != 0 {
			t.Fatalf("green[%d] = %d, want 0", i, ramp.Green[i])
		}
	}
	// 255 * 128 / 255 = 128
	if ramp.Blue[255] != 128*257 {
		t.Fatalf("blue[255] = %d", ramp.Blue[255])
	}
}

func TestComposeClampsGain(t *testing.T) {
	f := Frame{LUT: lut.Linear(), Red: 1000, Green: -4, Blue: 255}
	ramp := Compose(f)
	if ramp.Red[200] != 200*257 {
		t.Fatalf("red[200] = %d", ramp.Red[200])
	}
	if ramp.Green[200] != 0 {
		t.Fatalf("green[200] = %d", ramp.Green[200])
	}
}

func TestJSONFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.json")
	s, err := NewJSONFileSink(path)
	if err != nil {
		t.Fatal(err)
	}

	tbl := lut.Linear()
	tbl[1] = lut.PackChannels(9, 8, 7)
	if err := s.Apply(Frame{LUT: tbl, Red: 1, Green: 2, Blue: 3}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got JSONFrame
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.Red != 1 || got.Green != 2 || got.Blue != 3 {
		t.Fatalf("gain = %d %d %d", got.Red, got.Green, got.Blue)
	}
	if len(got.LUT) != lut.Size || got.LUT[1] != 0x00090807 {
		t.Fatalf("lut = %v", got.LUT[:2])
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".kcal-frame-*"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestNewSink(t *testing.T) {
	if s, err := NewSink("", ""); err != nil || s.Name() != SinkLog {
		t.Fatalf("NewSink(\"\") = %v, %v", s, err)
	}
	if _, err := NewSink(SinkJSON, ""); err == nil {
		t.Fatal("json sink without path should fail")
	}
	if _, err := NewSink("hdmi", ""); err == nil {
		t.Fatal("unknown sink should fail")
	}
	if _, err := NewSink(SinkFBDev, filepath.Join(t.TempDir(), "missing-fb")); err == nil {
		t.Fatal("fbdev sink on a missing device should fail")
	}
}
