package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/paveg/plotdeck/internal/memory"
	"github.com/paveg/plotdeck/internal/monitoring"
	"github.com/paveg/plotdeck/internal/pipeline"
	"github.com/paveg/plotdeck/internal/server"
	"github.com/paveg/plotdeck/internal/upload"
	"github.com/paveg/plotdeck/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddress = addr
			}
			logger, err := g.logger(cmd, cfg)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := monitoring.NewMetrics(reg)
			mem := memory.NewTrackingAllocator(nil)
			metrics.TrackMemory(mem)
			collector := monitoring.NewMetricsCollector(cfg.MetricsEnabled, metrics)

			store, err := upload.NewStore(afero.NewOsFs(), cfg.UploadDir, cfg.MaxUploadSize)
			if err != nil {
				return err
			}

			srv, err := server.New(server.Options{
				Engine:         pipeline.NewEngine(engineOptions(cfg, collector, logger)),
				Store:          store,
				Collector:      collector,
				Metrics:        metrics,
				Logger:         logger,
				Allocator:      mem,
				PreviewColumns: cfg.PreviewColumns,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			level.Info(logger).Log(
				"msg", "starting plotdeck",
				"version", version.Version,
				"addr", cfg.ListenAddress,
				"upload_dir", cfg.UploadDir,
				"max_upload_size", cfg.MaxUploadSize.HumanReadable(),
			)
			return srv.ListenAndServe(ctx, cfg.ListenAddress, cfg.ReadHeaderTimeout, cfg.ShutdownTimeout)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address, overrides the config")
	return cmd
}

