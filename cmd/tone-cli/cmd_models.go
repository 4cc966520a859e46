package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Show the evaluation results of the tone models",
		RunE: func(cmd *cobra.Command, args []string) error {
			models := core.ModelPerformance()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tACCURACY\tPRECISION\tRECALL\tF1")
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\n", m.Name, m.Accuracy, m.Precision, m.Recall, m.F1Score)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")

	return cmd
}
