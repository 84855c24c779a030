package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/paveg/plotdeck"
	"github.com/spf13/cobra"
)

const inspectValues = 5

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the dataset profile of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			ds, err := plotdeck.ReadFile(args[0])
			if err != nil {
				return err
			}
			defer ds.Release()

			profile := ds.Profile()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", info.Name(), humanize.Bytes(uint64(info.Size())))
			fmt.Fprintf(out, "%s rows, %s columns\n\n",
				humanize.Comma(int64(profile.Rows)), humanize.Comma(int64(profile.Columns)))

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tKIND\tDISTINCT\tNULLS\tVALUES")
			for _, col := range profile.ColumnProfiles {
				values := col.DistinctValues
				suffix := ""
				if len(values) > inspectValues {
					values = values[:inspectValues]
					suffix = ", ..."
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%s\n",
					col.Name,
					col.Kind,
					humanize.Comma(int64(col.DistinctCount)),
					humanize.Comma(int64(col.Nulls)),
					strings.Join(values, ", "),
					suffix,
				)
			}
			return tw.Flush()
		},
	}
}
