package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "kcal.json"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	if f.Sink() != "log" {
		t.Errorf("Sink() = %s", f.Sink())
	}
	if f.SinkTarget() != "" {
		t.Errorf("SinkTarget() = %s", f.SinkTarget())
	}
	if f.VersionMajor() != 1 || f.VersionMinor() != 0 {
		t.Errorf("version = %d.%d", f.VersionMajor(), f.VersionMinor())
	}
	if f.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() should default to false")
	}
	if !f.ApplyOnStart() {
		t.Error("ApplyOnStart() should default to true")
	}
	if f.ReapplySchedule() != "" {
		t.Errorf("ReapplySchedule() = %q", f.ReapplySchedule())
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcal.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if f.Sink() != "log" {
		t.Errorf("Sink() = %s", f.Sink())
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcal.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcal.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}

	f.SetSink("fbdev")
	f.SetFBDevice("/dev/fb1")
	f.SetReapplySchedule("@every 10m")
	f.SetApplyOnStart(false)
	f.SetAllowNonRootAccess(true)
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if g.Sink() != "fbdev" || g.SinkTarget() != "/dev/fb1" {
		t.Errorf("sink = %s %s", g.Sink(), g.SinkTarget())
	}
	if g.ReapplySchedule() != "@every 10m" {
		t.Errorf("ReapplySchedule() = %q", g.ReapplySchedule())
	}
	if g.ApplyOnStart() {
		t.Error("ApplyOnStart() should be false")
	}
	if !g.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() should be true")
	}
}

func TestSinkTargetFollowsSink(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	f.SetSink("json")
	if f.SinkTarget() != "/var/run/kcal-frame.json" {
		t.Errorf("SinkTarget() = %s", f.SinkTarget())
	}
	f.SetDumpPath("/tmp/frame.json")
	if f.SinkTarget() != "/tmp/frame.json" {
		t.Errorf("SinkTarget() = %s", f.SinkTarget())
	}
}

func TestSetSinkRejectsUnknown(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	f.SetSink("hdmi")
}

func TestRawFileConfigRoundTrip(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	f.SetSink("json")
	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	g := NewFileFromConfig(raw, "")
	if g.Sink() != "json" || g.SinkTarget() != f.SinkTarget() {
		t.Errorf("round trip sink = %s %s", g.Sink(), g.SinkTarget())
	}
	if _, err := NewRawFileConfigFromConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestAccessorsPanicOnNilConfig(t *testing.T) {
	f := &File{mu: &sync.RWMutex{}}

	tests := []struct {
		name string
		call func()
	}{
		{"Sink", func() { f.Sink() }},
		{"SinkTarget", func() { f.SinkTarget() }},
		{"ReapplySchedule", func() { f.ReapplySchedule() }},
		{"LogrusFields", func() { f.LogrusFields() }},
		{"SetApplyOnStart", func() { f.SetApplyOnStart(true) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.call()
		})
	}
}

// Run with -race: every accessor must read f.c under the lock Load takes.
func TestAccessorsDuringReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kcal.json")
	if err := os.WriteFile(path, []byte(`{"sink":"json","dumpPath":"/tmp/a.json"}`), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}

	wg := &sync.WaitGroup{}
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := f.Load(); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if f.Sink() != "json" || f.SinkTarget() != "/tmp/a.json" {
					t.Errorf("sink = %s %s", f.Sink(), f.SinkTarget())
					return
				}
				_ = f.LogrusFields()
				f.SetReapplySchedule("@hourly")
			}
		}()
	}
	wg.Wait()
}
