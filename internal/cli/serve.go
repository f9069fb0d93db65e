package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/drip-labs/drip/internal/api"
	"github.com/drip-labs/drip/internal/daemon"
	"github.com/drip-labs/drip/internal/infra/accounts"
	"github.com/drip-labs/drip/internal/infra/sqlite"
	"github.com/drip-labs/drip/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the drip HTTP server",
	Long: `Start the API server, open the snapshot database, and launch the
background auto-collect sweeper (when enabled in config).`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	mgr := accounts.NewManager(db, cfg.Ledger.HistoryLimit)

	srv := api.NewServer(mgr)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	var sweeper *scheduler.Sweeper
	if cfg.Scheduler.Enabled {
		sweeper = scheduler.NewSweeper(mgr)
		if err := sweeper.Start(cfg.Scheduler.Spec); err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
		defer sweeper.Stop()
		log.Printf("auto-collect sweeper running (%s)", cfg.Scheduler.Spec)
	}

	httpSrv := &http.Server{
		Addr:    cfg.API.Addr(),
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("drip listening on http://%s", cfg.API.Addr())
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stop:
		log.Println("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
