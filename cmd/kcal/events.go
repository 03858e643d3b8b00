package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		Short:   "Stream calibration events from the daemon",
		GroupID: gAdvanced,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			for ev := range apiClient.SubscribeEvents(ctx) {
				cmd.Printf("%s %s\n", bold("%s", ev.Name), string(ev.Data))
			}

			if ctx.Err() == nil {
				logrus.Warn("event stream closed by daemon")
			}
			return nil
		},
	}
}
