// Package commands holds the cobra entry points of the capacity service.
package commands

import (
	"log/slog"
	"os"

	"capacity/cmd"

	"github.com/spf13/cobra"
)

var (
	cfg    cmd.Config
	logger *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "capacity",
		Short:         "Delivery slot capacity and route coordination service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = cmd.LoadConfig()
			if err != nil {
				return err
			}
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
			slog.SetDefault(logger)
			return nil
		},
	}

	root.AddCommand(serveCmd(), migrateCmd(), tokenCmd())
	return root.Execute()
}
