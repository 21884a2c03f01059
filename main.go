// backend/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

var (
	// Flags
	databaseURL string
	addr        string
	logLevel    string
	verbose     bool

	cfg    *Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portfolio-api",
	Short: "Portfolio content API",
	Long: `Serves the portfolio content (projects, experiences, skills, about
sections, stats, social links and contact messages) as a JSON API.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("database-url") {
			cfg.DatabaseURL = databaseURL
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		if cmd.Flags().Changed("log-level") {
			if err := cfg.setLogLevel(logLevel); err != nil {
				return err
			}
		}

		config := zap.NewProductionConfig()
		config.Level = cfg.LogLevel
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		appLog, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cfg, appLog)
		if err != nil {
			return err
		}
		appLog.Info("Schema is up to date")
		return closeDB(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [file.yaml]",
	Short: "Load portfolio content from a YAML file",
	Long: `Inserts every item of the file through the same validation the API
applies to create requests. The file is applied in one transaction: if any
item is rejected nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "listen address (overrides ADDR and PORT)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openDB(cfg, appLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(db); err != nil {
			appLog.Warn("Closing database", zap.Error(err))
		}
	}()

	srv, err := newServer(cfg, db, appLog)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("Golang backend running",
			zap.String("addr", cfg.Addr),
			zap.Strings("cors_origins", cfg.AllowedOrigins),
			zap.Duration("cache_ttl", cfg.CacheTTL))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
		appLog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Graceful shutdown failed", zap.Error(err))
	}
	srv.close()
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := readSeedFile(args[0])
	if err != nil {
		return err
	}

	db, err := openDB(cfg, appLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(db); err != nil {
			appLog.Warn("Closing database", zap.Error(err))
		}
	}()

	srv, err := newServer(cfg, db, appLog)
	if err != nil {
		return err
	}
	defer srv.close()

	counts, err := srv.seed(f)
	if err != nil {
		appLog.Error("Seed failed", zap.String("file", args[0]), zap.Error(err))
		return err
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		appLog.Info("Seeded", zap.String("resource", name), zap.Int("count", counts[name]))
	}
	return nil
}
