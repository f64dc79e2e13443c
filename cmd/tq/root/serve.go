package root

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"todoquest/internal/engine"
	"todoquest/internal/logging"
	"todoquest/internal/server"
	"todoquest/internal/ui"
)

func newServeCmd() *cobra.Command {
	var sweep time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			if err != nil {
				return err
			}
			handler, err := server.New(server.Config{
				Service:  svc,
				BasePath: cfg.Serve.BasePath,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			if sweep > 0 {
				// Runs before cleanup so no sweep is mid-transaction when the DB closes.
				defer startSweep(ctx, svc, logger, sweep)()
			}

			srv := &http.Server{
				Addr:              cfg.Serve.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "%s http://%s%s\n", ui.Good.Render(ui.IconBolt+" Serving"), cfg.Serve.Addr, cfg.Serve.BasePath)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (default 127.0.0.1:8787)")
	flags.String("base-path", "", "API base path (default /v1)")
	flags.DurationVar(&sweep, "sweep", time.Minute, "how often to fail overdue tasks (0 disables)")
	_ = viper.BindPFlag("serve.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("serve.base_path", flags.Lookup("base-path"))
	return cmd
}

// startSweep runs sweepOverdue in the background. The returned func stops it and
// waits for an in-flight FailOverdue to finish.
func startSweep(ctx context.Context, svc *engine.Service, logger *slog.Logger, every time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepOverdue(ctx, svc, logger, every)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func sweepOverdue(ctx context.Context, svc *engine.Service, logger *slog.Logger, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := svc.FailOverdue(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("overdue sweep failed", "err", err)
			}
		}
	}
}
