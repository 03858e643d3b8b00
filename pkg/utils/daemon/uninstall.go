package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
)

func Uninstall() error {
	logrus.Infof("stopping kcal")

	err := systemctl("disable", "--now", unitName)
	if err != nil {
		return fmt.Errorf("failed to stop %s: %w. Are you root?", unitName, err)
	}

	logrus.Infof("removing systemd unit and resume hook")

	if err := removeFiles(); err != nil {
		return err
	}

	return systemctl("daemon-reload")
}

func removeFiles() error {
	for _, p := range []string{unitPath, sleepHookPath} {
		// if the file doesn't exist, we don't need to remove it
		err := os.Remove(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w. Are you root?", p, err)
		}
	}
	return nil
}
