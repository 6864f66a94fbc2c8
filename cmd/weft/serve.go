package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
	httpAdapter "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP message server",
	Long: `Loads every program in the programs directory and accepts messages over HTTP.
Results are kept in memory, or in Redis when redis.addr is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("programs") {
			cfg.ProgramsDir, _ = cmd.Flags().GetString("programs")
		}
		watch, _ := cmd.Flags().GetBool("watch")
		metrics, _ := cmd.Flags().GetBool("metrics")

		if term.IsTerminal(int(os.Stderr.Fd())) {
			tui.PrintBanner(os.Stderr)
		}

		stack, err := cli.NewStack(cfg, logger, cli.StackOptions{
			Debug:   logger.Enabled(context.Background(), slog.LevelDebug),
			Metrics: metrics,
		})
		if err != nil {
			return err
		}
		stackClosed := false
		defer func() {
			if stackClosed {
				return
			}
			if err := stack.Close(context.Background()); err != nil {
				logger.Warn("failed to close engine stack", "err", err)
			}
		}()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if err := stack.Ping(ctx); err != nil {
			return fmt.Errorf("result store unreachable: %w", err)
		}
		if err := stack.Engine.LoadDir(cfg.ProgramsDir); err != nil {
			return err
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithResultStore(stack.Store),
			httpAdapter.WithWaitTimeout(cfg.WaitTimeout),
			httpAdapter.WithLogger(logger),
		}
		if stack.Registry != nil {
			opts = append(opts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(stack.Registry, promhttp.HandlerOpts{})))
		}
		handler, err := httpAdapter.NewHandler(stack.Engine, opts...)
		if err != nil {
			return err
		}

		if watch {
			go func() {
				if err := cli.WatchPrograms(ctx, cfg.ProgramsDir, stack.Engine, logger, nil); err != nil {
					logger.Error("watcher stopped", "err", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting weft server", "addr", srv.Addr, "programs", stack.Engine.Programs())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			stackClosed = true
			if err := stack.Close(shutdownCtx); err != nil {
				logger.Warn("worker pool did not drain", "err", err)
			}
			logger.Info("weft server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("programs", "programs", "Directory containing program files")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload program files when they change")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}
