package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apihttp "github.com/lawglot/lawglot/internal/interfaces/http"

	"github.com/lawglot/lawglot/internal/application/translate"
	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/prometheus"
	"github.com/lawglot/lawglot/internal/infrastructure/snapshot"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the translation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cliCtx, err := getCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, logger := cliCtx.Config, cliCtx.Logger
	metrics := prometheus.NewMetrics("lawglot")

	store, closeStore, err := newStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	holder := loadIndex(cmd.Context(), store, logger)
	metrics.SetIndexRecords(holder.Len())

	// The jsonl backend can rebuild the index live when the collector
	// rewrites the snapshot files.
	if fileStore, ok := store.(*snapshot.FileStore); ok && cfg.Snapshot.Watch {
		watcher, werr := snapshot.WatchDir(fileStore.Dir(), 0, logger, func() {
			snap, lerr := fileStore.Load(context.Background())
			if lerr != nil {
				logger.Warn("snapshot reload failed, keeping previous index", logging.Err(lerr))
				return
			}
			holder.Swap(term.NewIndex(*snap))
			metrics.SetIndexRecords(holder.Len())
			logger.Info("cache index rebuilt", logging.Int("legal_terms", holder.Len()))
		})
		if werr != nil {
			logger.Warn("snapshot watching unavailable", logging.Err(werr))
		} else {
			defer watcher.Close()
		}
	}

	client, closeClient, err := newLawClient(cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	pipeline := newPipeline(cfg, holder, client, logger, translate.WithMetrics(metrics))

	handler := apihttp.NewHandler(pipeline, holder.Len, logger)
	router := apihttp.NewRouter(cfg.Server, handler, metrics.Handler(), logger)
	server := apihttp.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}
