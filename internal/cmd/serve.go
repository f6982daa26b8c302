package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TWRT/task-analyzer/internal/analyzer"
	"github.com/TWRT/task-analyzer/internal/api"
	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/repository"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis service",
	Long: `Run the HTTP analysis service.

Endpoints:
  POST /api/tasks/analyze/   score and rank {"tasks": [...]}
  GET  /api/tasks/suggest/   top 3 tasks for ?tasks=<JSON array>
  GET  /api/runs             recent analysis runs
  GET  /api/runs/{id}        one analysis run

Scoring weights come from server.weights_file when set and are reloaded
when that file or the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.WithComponent("server")

	db, err := repository.InitDB(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	weights := analyzer.NewWeightStore(loadWeights(cfg.Server.WeightsFile, log))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.Server.WeightsFile != "" {
		if err := analyzer.WatchWeights(ctx, cfg.Server.WeightsFile, weights, log); err != nil {
			log.Warn("weights file will not be reloaded", "error", err.Error())
		}
	}

	// a config edit may point at another weights file
	viper.OnConfigChange(func(e fsnotify.Event) {
		path := viper.GetString("server.weights_file")
		log.Info("config file changed", "file", e.Name, "weights_file", path)
		weights.Set(loadWeights(path, log))
	})
	if viper.ConfigFileUsed() != "" {
		viper.WatchConfig()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRouter(db, weights, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Analysis service listening on %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "Run log: %s\n", cfg.Server.DBPath)
	log.Info("server started", "addr", cfg.Server.Addr, "db_path", cfg.Server.DBPath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func loadWeights(path string, log *logging.Logger) analyzer.Weights {
	weights, err := analyzer.LoadWeights(path)
	if err != nil {
		log.Warn("using default weights", "path", path, "error", err.Error())
	}
	return weights
}
