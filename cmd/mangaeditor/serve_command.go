package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mangaeditor/internal/api"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rowdb"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the row service until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			store, err := rowdb.Open(signalCtx, cfg)
			if err != nil {
				logger.Error("open row store", logging.Error(err))
				return err
			}
			defer store.Close()

			server, err := api.NewServer(cfg, store, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if err := server.Start(signalCtx); err != nil {
				return err
			}
			logger.Info("row service ready",
				logging.String("driver", store.Driver()),
				logging.String("store", store.Location()),
				logging.String("address", server.Addr()),
			)

			<-signalCtx.Done()
			server.Stop()
			logger.Info("row service shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind")
	return cmd
}
