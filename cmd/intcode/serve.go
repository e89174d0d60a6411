package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/colorfulnotion/intcode/bridge"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored programs over websockets at /run?program=<ref>",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Bridge.Listen
			}
			lib, err := a.openStore()
			if err != nil {
				return err
			}
			defer lib.Close()

			srv := &http.Server{
				Addr:              listen,
				Handler:           bridge.NewServer(lib, a.cfg.VM.ChannelCapacity, a.cfg.VM.Trace),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			log.Info(log.CLIMonitoring, "bridge listening", "addr", listen, "store", a.cfg.Store.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	return cmd
}
