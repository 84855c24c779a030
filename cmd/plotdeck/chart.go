package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paveg/plotdeck"
	"github.com/paveg/plotdeck/internal/render"
	"github.com/spf13/cobra"
)

type chartFlags struct {
	chartType   string
	x, y        string
	category    string
	aggregation string
	filters     []string
	labels      []string
	png         string
	pretty      bool
}

func newChartCmd(g *globals) *cobra.Command {
	f := &chartFlags{}
	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Resolve a chart request and print its spec",
		Long: `chart resolves one request against FILE and prints the chart spec as
JSON. Filters are repeatable: --filter Sales=10..40 keeps a numeric range,
--filter City=A,B keeps the listed values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logger, err := g.logger(cmd, cfg)
			if err != nil {
				return err
			}

			req, err := f.request()
			if err != nil {
				return err
			}

			ds, err := plotdeck.ReadFile(args[0])
			if err != nil {
				return err
			}
			defer ds.Release()

			view := ds.WithCategorical(f.labels...)
			defer view.Release()

			spec, err := view.WithOptions(engineOptions(cfg, nil, logger)).Resolve(req)
			if err != nil {
				return err
			}

			if f.png != "" {
				if err := writePNG(f.png, spec); err != nil {
					return err
				}
			}
			return writeSpec(cmd.OutOrStdout(), spec, f.pretty)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.chartType, "type", "t", "bar", "Chart type")
	flags.StringVarP(&f.x, "x", "x", "", "X column")
	flags.StringVarP(&f.y, "y", "y", "", "Y column")
	flags.StringVar(&f.category, "category", "", "Category column for grouped chart types")
	flags.StringVar(&f.aggregation, "agg", "none", "Aggregation: none, average or total")
	flags.StringArrayVarP(&f.filters, "filter", "f", nil, "Column constraint, col=lo..hi or col=a,b")
	flags.StringSliceVar(&f.labels, "label", nil, "Numeric columns to treat as categorical")
	flags.StringVar(&f.png, "png", "", "Also render the chart to this PNG file")
	flags.BoolVar(&f.pretty, "pretty", false, "Indent the JSON output")
	_ = cmd.MarkFlagRequired("x")
	return cmd
}

func (f *chartFlags) request() (plotdeck.Request, error) {
	typ, err := plotdeck.ParseChartType(f.chartType)
	if err != nil {
		return plotdeck.Request{}, err
	}
	method, err := plotdeck.ParseMethod(f.aggregation)
	if err != nil {
		return plotdeck.Request{}, err
	}

	req := plotdeck.Request{
		Chart:       typ,
		X:           f.x,
		Y:           f.y,
		Category:    f.category,
		Aggregation: method,
	}
	if len(f.filters) > 0 {
		req.Filters = make(map[string]plotdeck.Constraint, len(f.filters))
		for _, raw := range f.filters {
			name, c, err := parseFilter(raw)
			if err != nil {
				return plotdeck.Request{}, err
			}
			req.Filters[name] = c
		}
	}
	return req, nil
}

// parseFilter reads "col=lo..hi" as a range and "col=a,b" as a value set
func parseFilter(raw string) (string, plotdeck.Constraint, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return "", plotdeck.Constraint{}, fmt.Errorf("invalid filter %q: want col=lo..hi or col=a,b", raw)
	}

	if lo, hi, isRange := strings.Cut(value, ".."); isRange {
		lower, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return "", plotdeck.Constraint{}, fmt.Errorf("invalid filter %q: bad lower bound: %w", raw, err)
		}
		upper, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return "", plotdeck.Constraint{}, fmt.Errorf("invalid filter %q: bad upper bound: %w", raw, err)
		}
		return name, plotdeck.Range(lower, upper), nil
	}

	var values []string
	if value != "" {
		values = strings.Split(value, ",")
	}
	return name, plotdeck.OneOf(values...), nil
}

func writeSpec(w io.Writer, spec *plotdeck.Spec, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(spec)
}

func writePNG(path string, spec *plotdeck.Spec) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.New().PNG(spec, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
