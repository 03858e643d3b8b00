package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/kcal/pkg/lut"
)

func NewLUTCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lut",
		Short:   "Edit the per-channel lookup table",
		GroupID: gBasic,
		Long: `Edit the per-channel lookup table.

The table has 256 entries. Each entry maps an input level to an output level
for the red, green and blue channels independently.`,
	}

	cmd.AddCommand(
		newLUTSetCommand(),
		&cobra.Command{
			Use:   "status",
			Short: "Show whether an edit was accepted since the last check",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ok, err := apiClient.LUTStatus()
				if err != nil {
					return err
				}
				cmd.Printf("Edit accepted: %s\n", bool2Text(ok))
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the identity table",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.ResetLUT(); err != nil {
					return fmt.Errorf("failed to reset lut: %v", err)
				}
				logrus.Infof("successfully reset lut. Run \"kcal apply\" to update the display.")
				return nil
			},
		},
		newLUTShowCommand(),
	)

	return cmd
}

func newLUTSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set VALUE CHANNEL INDEX",
		Short: "Set one channel of one entry",
		Long: `Set one channel of one entry.

VALUE and INDEX are 0-255. CHANNEL is red, green or blue (or 0, 1, 2).`,
		Example: `  kcal lut set 200 red 5`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := lut.ParseChannel(args[1])
			if err != nil {
				return err
			}
			v, err := parseIntArgs([]string{args[0], args[2]}, "value", "index")
			if err != nil {
				return err
			}
			value, index := v[0], v[1]
			if err := checkByte("value", value); err != nil {
				return err
			}
			if err := checkByte("index", index); err != nil {
				return err
			}

			if _, err := apiClient.EditLUT(value, ch, index); err != nil {
				return fmt.Errorf("failed to edit lut: %v", err)
			}

			ok, err := apiClient.LUTStatus()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("daemon did not accept the edit")
			}

			logrus.Infof("successfully set %s[%d] to %d", ch, index, value)
			return nil
		},
	}
}

func newLUTShowCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show [INDEX]",
		Short: "Show the working table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v, err := parseIntArgs(args, "index")
				if err != nil {
					return err
				}
				if err := checkByte("index", v[0]); err != nil {
					return err
				}
				e, err := apiClient.GetLUTEntry(v[0])
				if err != nil {
					return err
				}
				printEntry(cmd, v[0], e)
				return nil
			}

			t, err := apiClient.GetLUT()
			if err != nil {
				return err
			}

			cmd.Printf("Linear: %s\n", bool2Text(t.Linear))
			indexes := t.Modified
			if all {
				indexes = make([]int, len(t.Entries))
				for i := range indexes {
					indexes[i] = i
				}
			}
			for _, i := range indexes {
				if i < 0 || i >= len(t.Entries) {
					continue
				}
				printEntry(cmd, i, t.Entries[i])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "show every entry, not only modified ones")

	return cmd
}

func printEntry(cmd *cobra.Command, index int, e uint32) {
	cmd.Printf("  %3d: %s %s %s\n", index,
		bold("r=%3d", lut.UnpackChannel(e, lut.Red)),
		bold("g=%3d", lut.UnpackChannel(e, lut.Green)),
		bold("b=%3d", lut.UnpackChannel(e, lut.Blue)),
	)
}
