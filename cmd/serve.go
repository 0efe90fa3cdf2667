package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/httpapi"
	"github.com/marcoskids/marcos/internal/sweep"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the scheduled recompute sweep when configured)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			rt.cfg.HTTPAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := rt.engine.RecordContentVersion(ctx); err != nil {
			return fmt.Errorf("record content version: %w", err)
		}

		sweepOpts := sweep.Options{Concurrency: rt.cfg.Sweep.Concurrency}
		sweeper := sweep.New(rt.store.Repos().Children, rt.engine, rt.log)

		if rt.cfg.Sweep.Cron != "" {
			sched := sweep.NewScheduler(sweeper, sweepOpts, rt.log)
			if err := sched.Start(rt.cfg.Sweep.Cron); err != nil {
				return err
			}
			defer sched.Stop()
		}

		srv := httpapi.NewServer(httpapi.RouterConfig{
			Logger:           rt.log,
			HealthHandler:    httpapi.NewHealthHandler(rt.store),
			ChildHandler:     httpapi.NewChildHandler(rt.engine),
			JourneyHandler:   httpapi.NewJourneyHandler(rt.engine),
			ProgressHandler:  httpapi.NewProgressHandler(rt.engine),
			StreamHandler:    httpapi.NewStreamHandler(rt.bus, rt.cfg.NotifyBuffer, rt.log),
			RecomputeHandler: httpapi.NewRecomputeHandler(sweeper, sweepOpts),
		})

		rt.log.Info("starting marcos",
			"version", version,
			"content_version", rt.cat.Version(),
			"db_dialect", rt.store.Dialect(),
		)
		return srv.Run(ctx, rt.cfg.HTTPAddr, rt.cfg.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MARCOS_HTTP_ADDR)")
}
