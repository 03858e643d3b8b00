package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withTempPaths(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	oldUnit, oldHook := unitPath, sleepHookPath
	unitPath = filepath.Join(dir, "etc", unitName)
	sleepHookPath = filepath.Join(dir, "system-sleep", "kcal")
	t.Cleanup(func() {
		unitPath, sleepHookPath = oldUnit, oldHook
	})
}

func TestRender(t *testing.T) {
	unit := render(UnitTemplate, "/usr/local/bin/kcal")
	if !strings.Contains(unit, "ExecStart=/usr/local/bin/kcal daemon") {
		t.Fatalf("unit does not reference the executable:\n%s", unit)
	}
	hook := render(SleepHookTemplate, "/usr/local/bin/kcal")
	if strings.Contains(hook, exePlaceholder) || !strings.Contains(hook, "/usr/local/bin/kcal resume") {
		t.Fatalf("hook not rendered:\n%s", hook)
	}
}

func TestInstallAndRemoveFiles(t *testing.T) {
	withTempPaths(t)

	if err := installFiles("/opt/kcal"); err != nil {
		t.Fatalf("installFiles failed: %v", err)
	}

	info, err := os.Stat(sleepHookPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Fatalf("hook mode = %v", info.Mode().Perm())
	}
	b, err := os.ReadFile(unitPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "/opt/kcal daemon") {
		t.Fatalf("unit = %s", b)
	}

	// Installing twice overwrites.
	if err := installFiles("/opt/kcal2"); err != nil {
		t.Fatalf("second installFiles failed: %v", err)
	}

	if err := removeFiles(); err != nil {
		t.Fatalf("removeFiles failed: %v", err)
	}
	if _, err := os.Stat(unitPath); !os.IsNotExist(err) {
		t.Fatalf("unit still present: %v", err)
	}
	// Removing again is a no-op.
	if err := removeFiles(); err != nil {
		t.Fatalf("second removeFiles failed: %v", err)
	}
}
