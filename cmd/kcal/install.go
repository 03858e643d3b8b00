package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/kcal/pkg/config"
	"github.com/charlie0129/kcal/pkg/panel"
	daemonutils "github.com/charlie0129/kcal/pkg/utils/daemon"
)

func init() {
	commandGroups = append(commandGroups, gInstallation)
}

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false
	sink := ""
	reapply := ""

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install kcal (system-wide)",
		GroupID: gInstallation,
		Long: `Install kcal daemon to systemd (system-wide).

This makes kcal run in the background and automatically start on boot. A
systemd-sleep hook is installed as well, so the calibration is re-applied
after every resume. You must run this command as root.

By default, only root user is allowed to access the kcal daemon. Use the
--allow-non-root-access flag to let non-root users change the calibration
without sudo.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the kcal daemon.")
			} else {
				logrus.Info("only root user is allowed to access the kcal daemon.")
			}

			switch sink {
			case "":
			case panel.SinkLog, panel.SinkJSON, panel.SinkFBDev:
				conf.SetSink(sink)
			default:
				return fmt.Errorf("unknown sink %q", sink)
			}

			if cmd.Flags().Changed("reapply-schedule") {
				conf.SetReapplySchedule(reapply)
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = daemonutils.Install()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("systemd will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run `kcal install' again.\n", exePath)

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access kcal daemon.")
	f.StringVar(&sink, "sink", "", "display backend: log, json or fbdev")
	f.StringVar(&reapply, "reapply-schedule", "", "cron expression for periodic re-apply, empty to disable")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	noResetDisplay := false

	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall kcal (system-wide)",
		GroupID: gInstallation,
		Long: `Uninstall kcal daemon from systemd (system-wide).

This restores the uncalibrated display, stops kcal and removes the systemd
unit and the resume hook.

You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !noResetDisplay {
				logrus.Infof("resetting display calibration")
				if err := resetDisplay(); err != nil {
					logrus.Warnf("failed to reset display calibration: %v", err)
				}
			}

			err := daemonutils.Uninstall()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			fmt.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `kcal' again. If you want a complete uninstall, you can remove both config file and kcal itself manually.\n", configPath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&noResetDisplay, "no-reset-display", false, "Do not restore the uncalibrated display before uninstalling.")

	return cmd
}

func resetDisplay() error {
	if _, err := apiClient.ResetLUT(); err != nil {
		return err
	}
	g := panel.DefaultGain
	if _, err := apiClient.SetTriplet(g, g, g); err != nil {
		return err
	}
	_, err := apiClient.Apply()
	return err
}
