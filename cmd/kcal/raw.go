package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rawEndpoints = []string{"lut-reset", "lut-edit", "triplet", "apply", "version"}

func NewRawCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "raw ENDPOINT [LINE...]",
		Short:   "Read or write a protocol endpoint directly",
		GroupID: gAdvanced,
		Long: fmt.Sprintf(`Read or write a protocol endpoint directly.

With only ENDPOINT the endpoint is read. Otherwise the remaining arguments are
joined with spaces and written as-is, without computing keys or checksums.

Endpoints: %s`, strings.Join(rawEndpoints, ", ")),
		Example: `  kcal raw lut-edit 200 0 5 205
  kcal raw apply`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/" + strings.TrimPrefix(args[0], "/")

			if len(args) == 1 {
				ret, err := apiClient.Get(path)
				if err != nil {
					return err
				}
				cmd.Print(ret)
				return nil
			}

			n, err := apiClient.WriteLine(path, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			cmd.Printf("%d\n", n)
			return nil
		},
	}
}
