package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raysh454/employeesapp/internal/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the employees web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load("employeesapp")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if addr != "" {
				cfg.Server.ListenAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApplication(ctx, cfg, logger)
			if err != nil {
				return err
			}
			headerColor.Fprintf(cmd.OutOrStdout(), "employeesapp listening on %s\n", cfg.Server.ListenAddr)
			return a.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.listen_addr")
	return cmd
}
