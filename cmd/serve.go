package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paylog/config"
	"paylog/storage"
	"paylog/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	servePort   int
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the worklog and payment HTTP API",
	Long: `Start the paylog HTTP server.

The API serves freelancers, worklogs with earned amounts, and payment batches.
An HTML endpoint reference is available at /docs and a liveness probe at
/healthz. Flags override the configuration file values.`,
	Example: `
  # Start on the configured port (default 8000)
  paylog serve

  # Start with explicit port and database path
  paylog serve --port 9090 --db ./paylog.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		dbPath := cfg.Database.Path
		if cmd.Flags().Changed("db") {
			dbPath = serveDBPath
		}

		logger, err := buildLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := fmt.Sprintf(":%d", port)
		server := &http.Server{
			Addr:    addr,
			Handler: web.NewServer(store, logger),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		logger.Info("listening",
			zap.String("addr", fmt.Sprintf("http://localhost:%d", port)),
			zap.String("db", dbPath),
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func buildLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(parsed)
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8000, "HTTP port for the API server")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "./paylog.db", "Path to local SQLite database")
}
