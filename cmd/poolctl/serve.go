package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the price math over HTTP",
		RunE:  runServe,
	}
	cmd.Flags().String("listen", "127.0.0.1:8080", "listen address")
	cmd.Flags().Duration("timeout", 5*time.Second, "per-request timeout")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	_, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	listen, _ := cmd.Flags().GetString("listen")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, stop := signalContext()
	defer stop()

	server := &http.Server{
		Addr:              listen,
		Handler:           api.NewServer(logger, timeout).Handler(),
		ReadHeaderTimeout: timeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server start", zap.String("listen", listen))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info("api server stop")
	return server.Shutdown(shutdownCtx)
}
