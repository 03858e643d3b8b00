package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const unitName = "kcal.service"

var (
	unitPath      = "/etc/systemd/system/" + unitName
	sleepHookPath = "/usr/lib/systemd/system-sleep/kcal"
	systemctlPath = "/usr/bin/systemctl"
)

func render(tmpl, exePath string) string {
	return strings.ReplaceAll(tmpl, exePlaceholder, exePath)
}

func writeFile(path, content string, mode os.FileMode) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	// warn if the file already exists
	_, err = os.Stat(path)
	if err == nil {
		logrus.Warnf("%s already exists, overwriting", path)
	}

	err = os.WriteFile(path, []byte(content), mode)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, mode)
}

func systemctl(args ...string) error {
	out, err := exec.Command(systemctlPath, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Install writes the systemd unit and the resume hook for the current
// executable, then enables and starts the service.
func Install() error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}

	err = os.Chmod(exePath, 0755)
	if err != nil {
		return fmt.Errorf("failed to chmod the current executable to 0755: %w", err)
	}

	logrus.Infof("current executable path: %s", exePath)

	if err := installFiles(exePath); err != nil {
		return err
	}

	logrus.Infof("starting kcal")

	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	return systemctl("enable", "--now", unitName)
}

func installFiles(exePath string) error {
	logrus.Infof("writing systemd unit to %s", unitPath)
	if err := writeFile(unitPath, render(UnitTemplate, exePath), 0644); err != nil {
		return err
	}

	logrus.Infof("writing resume hook to %s", sleepHookPath)
	return writeFile(sleepHookPath, render(SleepHookTemplate, exePath), 0755)
}
