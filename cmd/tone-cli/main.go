package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/email-tone-analyzer/internal/adapters/filter"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/di"
	"github.com/mikey/email-tone-analyzer/internal/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand shares
type app struct {
	flags di.CLIFlags
}

// session is what a subcommand runs against once the container is built
type session struct {
	service *core.ToneService
	cli     *filter.CliFilter
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tone-cli",
		Short: "Analyze and rewrite the tone of emails",
		Long: `tone-cli profiles the tone of an email (tone label, sentiment, emotions,
politeness, formality and urgency) and rewrites it toward a target tone.

Text is taken from the arguments, or from stdin when none are given.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.ConfigFile, "config", "", "Path to config file")
	pf.StringVarP(&a.flags.Provider, "provider", "p", "", "Analysis provider (heuristic, huggingface, openai, gemini, bedrock)")
	pf.StringVar(&a.flags.RewriteProvider, "rewrite-provider", "", "Rewrite provider (huggingface, openai, gemini, bedrock)")
	pf.BoolVar(&a.flags.Fallback, "fallback", false, "Fall back to the heuristic analyzer when the remote provider fails")
	pf.Int64Var(&a.flags.Seed, "seed", 0, "Seed for the heuristic analyzer (0 uses the clock)")
	pf.IntVar(&a.flags.MaxBodySize, "max-body-size", 0, "Maximum text size sent to remote models")
	pf.StringVar(&a.flags.HuggingFaceAPIKey, "huggingface-api-key", "", "API key for Hugging Face")
	pf.StringVar(&a.flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	pf.StringVar(&a.flags.OpenAIModelName, "openai-model", "", "OpenAI model name")
	pf.StringVar(&a.flags.OpenAIBaseURL, "openai-base-url", "", "Base URL of an OpenAI compatible endpoint")
	pf.StringVar(&a.flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	pf.StringVar(&a.flags.GeminiModelName, "gemini-model", "", "Gemini model name")
	pf.StringVar(&a.flags.BedrockRegion, "bedrock-region", "", "AWS region for Bedrock")
	pf.StringVar(&a.flags.BedrockModelID, "bedrock-model", "", "Bedrock model ID")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&a.flags.JSONLog, "json-log", false, "Output logs in JSON format")

	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newRewriteCmd(a))
	rootCmd.AddCommand(newModelsCmd())

	return rootCmd
}

// run builds the container and hands the session to fn
func (a *app) run(cmd *cobra.Command, fn func(s *session) error) error {
	container, err := di.BuildCLIContainer(&a.flags, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(
		service *core.ToneService,
		cli *filter.CliFilter,
		providers *factory.ProviderFactory,
		logger *zap.Logger,
	) error {
		defer logger.Sync()
		defer providers.Close()

		return fn(&session{service: service, cli: cli, logger: logger})
	})
}

// readText joins the arguments, or reads all of in when there are none
func readText(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
