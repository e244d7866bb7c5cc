package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kanban/internal/config"
	"kanban/internal/logging"
	"kanban/internal/storage"
	"kanban/internal/storage/memory"
	"kanban/internal/storage/mongo"
	"kanban/internal/storage/sqlite"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "kanban",
	Short:         "Kanban board API server",
	Long:          `kanban serves the projects and tasks REST API of a kanban board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, logCloser, err = logging.Setup(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			File:   cfg.LogFile,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// Skips config loading so it works without an environment.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kanban %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects to the backend selected by the configuration.
func openStore(ctx context.Context) (storage.Gateway, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout+5*time.Second)
		defer cancel()
		s, err := mongo.Open(ctx, mongo.Options{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			ConnectTimeout: cfg.MongoConnectTimeout,
			MaxPoolSize:    cfg.MongoMaxPoolSize,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	}
}
