package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/scorer"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective scoring rules as YAML",
	Long: `Print the scoring rules in use: the built-in table, or the file named by
scoring.rules_file. The output is a valid rules file to start editing from.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := loadScorer()
		if err != nil {
			return err
		}
		data, err := scorer.MarshalRules(s.Rules())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
