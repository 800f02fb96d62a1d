package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "discspec/internal/adapter/http"
	"discspec/internal/infrastructure/logger"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and background worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			logger.Info.Printf("starting discspec on port %d, source=%s", a.cfg.Port, a.cfg.BaseURL)

			workerCtx, workerCancel := context.WithCancel(context.Background())
			defer workerCancel()
			go a.worker.Run(workerCtx)

			server := httpadapter.NewServer(a.jobSvc, a.worker, a.specs, a.bus)

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
				sig := <-sigChan
				logger.Info.Printf("received %s, shutting down", sig)

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer shutdownCancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error.Printf("http shutdown error: %v", err)
				}

				// Stop the worker after the server so in-flight requests
				// can still reach it.
				workerCancel()
			}()

			addr := fmt.Sprintf(":%d", a.cfg.Port)
			if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info.Printf("shutdown complete")
			return nil
		},
	}
}
