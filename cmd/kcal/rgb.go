package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRGBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rgb",
		Short:   "Set or get the RGB gain triplet",
		GroupID: gBasic,
		Long: `Set or get the RGB gain triplet.

Each gain scales one channel of the panel output. 255 leaves the channel
unchanged.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "set R G B",
			Short:   "Set the gains",
			Example: `  kcal rgb set 255 240 230`,
			Args:    cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				v, err := parseIntArgs(args, "red", "green", "blue")
				if err != nil {
					return err
				}
				for i, name := range []string{"red", "green", "blue"} {
					if err := checkByte(name, v[i]); err != nil {
						return err
					}
				}

				if _, err := apiClient.SetTriplet(v[0], v[1], v[2]); err != nil {
					return fmt.Errorf("failed to set rgb: %v", err)
				}

				r, g, b, err := apiClient.GetTriplet()
				if err != nil {
					return err
				}
				if r != v[0] || g != v[1] || b != v[2] {
					return fmt.Errorf("daemon did not accept the triplet, current value is %d %d %d", r, g, b)
				}

				logrus.Infof("successfully set rgb to %d %d %d. Run \"kcal apply\" to update the display.", r, g, b)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get",
			Short: "Get the gains",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				r, g, b, err := apiClient.GetTriplet()
				if err != nil {
					return err
				}
				cmd.Printf("%d %d %d\n", r, g, b)
				return nil
			},
		},
	)

	return cmd
}
