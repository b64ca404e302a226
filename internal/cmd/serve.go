package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/observability"
	"github.com/threadlens/threadlens/internal/server"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Endpoints:
  GET  /healthz    liveness probe
  GET  /version    build metadata
  POST /v1/scout   run a scout pipeline synchronously

SIGINT or SIGTERM triggers a graceful shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverLog := observability.NewServerLogger("threadlens", viper.GetString("logging.level"))
		defer serverLog.Sync() // nolint:errcheck // sync errors on stderr are benign

		pipe, err := buildPipeline(cmd.Context(), serverLog)
		if err != nil {
			return err
		}
		defer pipe.Close() // nolint:errcheck // best-effort cleanup

		srv := server.New(pipe.Cfg.Server, pipe.Scout, serverLog, versionInfo.Version)

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errChan:
			return err
		case sig := <-sigChan:
			serverLog.Info("shutdown signal received", zap.String("signal", sig.String()))
		}

		shutdownTimeout := pipe.Cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
