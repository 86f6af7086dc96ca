package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/constants"
	"github.com/kozaktomas/photolog/internal/config"
	"github.com/kozaktomas/photolog/internal/database/mariadb"
	"github.com/kozaktomas/photolog/internal/database/postgres"
	"github.com/kozaktomas/photolog/internal/describe"
	"github.com/kozaktomas/photolog/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the photolog HTTP API.

Projects are edited in memory. Saving projects needs a store: DATABASE_URL
selects PostgreSQL, MARIADB_DSN selects MariaDB. Without either the save and
stored project endpoints answer 503.

Photo descriptions are available when OPENAI_TOKEN, GEMINI_API_KEY or
OLLAMA_URL is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (defaults to WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (defaults to WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("describe-provider", "", "Description provider: openai, gemini or ollama")
	addLayoutFlags(serveCmd)
	addPolicyFlag(serveCmd)
}

// openStore connects the configured project store. It returns a close
// function, which is a no-op when no store is configured.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (func() error, error) {
	switch {
	case cfg.Database.URL != "":
		logger.Info("connecting to PostgreSQL")
		if err := postgres.Initialize(ctx, &cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return postgres.GetGlobalPool().Close, nil
	case cfg.MariaDB.DSN != "":
		logger.Info("connecting to MariaDB")
		pool, err := mariadb.Initialize(ctx, cfg.MariaDB.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		return pool.Close, nil
	default:
		logger.Warn("no project store configured, saving is disabled")
		return func() error { return nil }, nil
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	logger := loggerFrom(ctx)
	cfg := loadConfig(cmd)
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	exporter, err := newExporter(cmd, cfg)
	if err != nil {
		return err
	}
	images, err := cfg.NormalizeOptions()
	if err != nil {
		return err
	}

	closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()

	describer, err := describe.New(ctx, mustGetString(cmd, "describe-provider"), cfg)
	switch {
	case errors.Is(err, describe.ErrNoProvider):
		logger.Warn("photo descriptions disabled", "reason", err)
		describer = nil
	case err != nil:
		return err
	default:
		logger.Info("photo descriptions enabled", "model", describer.Name())
	}

	server := web.NewServer(cfg, web.Deps{
		Exporter:  exporter,
		Images:    images,
		Describer: describer,
		Logger:    logger,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "err", err)
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
