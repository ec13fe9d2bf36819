package commands

import (
	"fmt"
	"time"

	httpadapter "capacity/internal/adapters/in/http"
	"capacity/internal/core/domain/model/broadcast"

	"github.com/spf13/cobra"
)

// token --channel driver:<id> [--channel shipment:<id>] [--ttl 1h]
func tokenCmd() *cobra.Command {
	var (
		channels []string
		ttl      time.Duration
	)

	command := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed token granting event channel subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			granted := make([]broadcast.ChannelID, 0, len(channels))
			for _, raw := range channels {
				channel, err := broadcast.ParseChannelID(raw)
				if err != nil {
					return err
				}
				granted = append(granted, channel)
			}

			token, err := httpadapter.NewChannelAuthorizer(cfg.ChannelTokenSecret).Issue(granted, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(command.OutOrStdout(), token)
			return err
		},
	}
	command.Flags().StringSliceVar(&channels, "channel", nil, "channel to grant, repeatable")
	command.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = command.MarkFlagRequired("channel")
	return command
}
