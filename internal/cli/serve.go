package cli

import (
	"os"
	"os/signal"
	"syscall"

	goerrors "github.com/go-errors/errors"
	"github.com/nodeiot/iotdb/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve agents and metrics over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := a.openDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			e := server.New(a.logger, db)
			if err := server.Run(ctx, a.logger, e, addr); err != nil {
				return goerrors.Wrap(err, 0)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides Server.Addr)")
	return cmd
}
