package main

import (
	"os"

	"github.com/paveg/plotdeck"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Decode a CSV, XLSX or XLS file and write it as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := plotdeck.ReadFile(args[0])
			if err != nil {
				return err
			}
			defer ds.Release()

			if output == "" {
				return ds.WriteCSV(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := ds.WriteCSV(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}
