package main

import (
	"fmt"
	"strings"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/rewrite"
	"github.com/spf13/cobra"
)

func newRewriteCmd(a *app) *cobra.Command {
	var (
		tone   string
		plan   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [text...]",
		Short: "Rewrite a text toward a target tone",
		Long: fmt.Sprintf(`Rewrite a text toward a target tone.

Supported tones: %s.
With --plan only the rewrite directive is printed and no text is generated.`,
			strings.Join(rewrite.SupportedTones(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				out := cmd.OutOrStdout()

				text, err := readText(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}

				if plan {
					directive, err := s.service.PlanRewrite(cmd.Context(), text, tone)
					if err != nil {
						return err
					}
					if asJSON {
						return writeJSON(out, directive)
					}
					writeDirective(cmd, directive)
					return nil
				}

				result, err := s.service.Rewrite(cmd.Context(), text, tone)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, result)
				}
				fmt.Fprintln(out, result.RewrittenText)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tone, "tone", "t", "", "Target tone")
	cmd.Flags().BoolVar(&plan, "plan", false, "Only print the rewrite directive")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("tone")

	return cmd
}

func writeDirective(cmd *cobra.Command, d *core.RewriteDirective) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Current tone: %s\n", d.CurrentTone)
	fmt.Fprintf(out, "Target tone: %s\n", d.TargetTone)
	for _, shift := range d.Shifts {
		fmt.Fprintf(out, "  %-10s %.2f -> %.2f (%s %+.3f)\n",
			shift.Dimension, shift.Current, shift.Target, shift.Direction, shift.Delta)
	}
	if len(d.Instructions) > 0 {
		fmt.Fprintln(out, "Instructions:")
		for _, instruction := range d.Instructions {
			fmt.Fprintf(out, "  - %s\n", instruction)
		}
	}
}
