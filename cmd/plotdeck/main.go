// Command plotdeck serves the upload-and-chart dashboard and resolves
// chart requests from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/paveg/plotdeck"
	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/config"
	"github.com/paveg/plotdeck/internal/logging"
	"github.com/paveg/plotdeck/internal/monitoring"
	"github.com/spf13/cobra"
)

// globals shared by every subcommand
type globals struct {
	configFile string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "plotdeck",
		Short: "Turn CSV and Excel files into charts",
		Long: `plotdeck loads a CSV, XLSX or XLS file, classifies its columns as
numeric or categorical and resolves chart requests against it. Run
"plotdeck serve" for the browser dashboard.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "Config file (json or yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override the configured log level")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Override the configured log format")

	root.AddCommand(
		newServeCmd(g),
		newChartCmd(g),
		newInspectCmd(),
		newConvertCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and applies flag overrides
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	return cfg, nil
}

func (g *globals) logger(cmd *cobra.Command, cfg config.Config) (log.Logger, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return logger, nil
}

// engineOptions maps the chart settings of cfg onto the engine
func engineOptions(cfg config.Config, collector *monitoring.MetricsCollector, logger log.Logger) plotdeck.Options {
	opts := plotdeck.DefaultOptions()
	opts.Chart.Bins = cfg.HistogramBins
	opts.Chart.TopCategories = cfg.MaxCategories
	if len(cfg.Palette) > 0 {
		opts.Chart.Palette = chart.Palette(cfg.Palette)
	}
	opts.CategoryLimit = cfg.CategoryValues
	opts.Collector = collector
	opts.Logger = logger
	return opts
}
