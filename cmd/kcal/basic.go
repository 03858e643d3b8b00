package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/kcal/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
			if v, err := apiClient.GetVersion(); err == nil {
				cmd.Printf("protocol %s\n", v)
			} else {
				logrus.Debugf("failed to get daemon version: %v", err)
			}
		},
	}
}

func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apply",
		Short:   "Apply the calibration to the display",
		GroupID: gBasic,
		Long: `Apply the calibration to the display.

The working lookup table and the RGB gains are pushed to the panel. Edits made
with "kcal lut set" and "kcal rgb set" have no visible effect until applied.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := apiClient.Apply(); err != nil {
				return fmt.Errorf("failed to apply calibration: %v", err)
			}

			logrus.Infof("successfully applied calibration")

			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the last apply succeeded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := apiClient.ApplyStatus()
			if err != nil {
				return err
			}
			cmd.Printf("Last apply succeeded: %s\n", bool2Text(ok))
			return nil
		},
	})

	return cmd
}

func NewResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "resume",
		Short:   "Re-apply the calibration after a system resume",
		GroupID: gAdvanced,
		Long: `Re-apply the calibration after a system resume.

This does not change the last apply status. Hook it into your system sleep
scripts, or send SIGUSR1 to the daemon instead.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := apiClient.Resume(); err != nil {
				return err
			}

			logrus.Infof("successfully re-applied calibration")

			return nil
		},
	}
}
