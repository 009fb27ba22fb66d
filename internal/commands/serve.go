package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"elecprice/internal/httpapi"
	"elecprice/internal/journal"
	"elecprice/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refreshes prices on a schedule and serves them over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			ctx := cmd.Context()

			if err := scheduler.ValidateSpec(cfg.RefreshSchedule); err != nil {
				return err
			}
			coord, now, err := buildCoordinator(cfg)
			if err != nil {
				return err
			}
			rec, err := openRecorder(cfg)
			if err != nil {
				return err
			}
			defer rec.Close()

			var background sync.WaitGroup
			followCtx, stopFollow := context.WithCancel(ctx)
			background.Add(1)
			go func() {
				defer background.Done()
				journal.Follow(followCtx, coord.Store(), rec)
			}()

			sched := scheduler.New(ctx, coord, cfg.Region)
			if err := sched.Register(cfg.RefreshSchedule); err != nil {
				stopFollow()
				background.Wait()
				return err
			}
			background.Add(1)
			go func() {
				defer background.Done()
				sched.RunNow()
			}()
			sched.Start()

			srv := httpapi.NewServer(cfg.ListenAddr, coord, rec, cfg.Region, now)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			var serveErr error
			select {
			case <-ctx.Done():
				slog.Info("received shutdown signal")
			case serveErr = <-errCh:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("http shutdown", "error", err)
			}
			sched.Stop()
			stopFollow()
			background.Wait()

			return serveErr
		},
	}
}
