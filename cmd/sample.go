package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/export"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample lead CSV to fill in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")

		w, closeOut, err := openOutput(cmd.OutOrStdout(), output)
		if err != nil {
			return err
		}
		if err := export.WriteSample(w); err != nil {
			_ = closeOut()
			return err
		}
		if err := closeOut(); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample to %s\n", output) //nolint:errcheck
		}
		return nil
	},
}

func init() {
	sampleCmd.Flags().String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(sampleCmd)
}
