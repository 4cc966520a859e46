package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/email-tone-analyzer/internal/adapters/filter"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		emailFile string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Profile the tone of a text or an email",
		Long: `Profile the tone of a text.

With --email the input is parsed as an RFC 822 message ("-" reads it from stdin)
and the text parts of its body are analysed, falling back to the subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(s *session) error {
				out := cmd.OutOrStdout()

				if emailFile != "" {
					var r io.Reader = cmd.InOrStdin()
					if emailFile != "-" {
						f, err := os.Open(emailFile)
						if err != nil {
							return fmt.Errorf("failed to open email file: %w", err)
						}
						defer f.Close()
						r = f
					}

					email, err := filter.ParseEmail(r)
					if err != nil {
						return err
					}
					if asJSON {
						analysis, err := s.service.Analyze(cmd.Context(), analysisInput(email.Body, email.Subject))
						if err != nil {
							return err
						}
						return writeJSON(out, analysis)
					}
					_, err = s.cli.ProcessEmail(cmd.Context(), email)
					return err
				}

				text, err := readText(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}

				start := time.Now()
				analysis, err := s.service.Analyze(cmd.Context(), text)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, analysis)
				}
				filter.WriteAnalysis(out, analysis, time.Since(start))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&emailFile, "email", "e", "", "Analyze an RFC 822 email file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")

	return cmd
}

// analysisInput prefers the body and falls back to the subject for empty bodies
func analysisInput(body, subject string) string {
	if strings.TrimSpace(body) != "" {
		return body
	}
	return subject
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
