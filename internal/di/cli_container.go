package di

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-tone-analyzer/internal/adapters/filter"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/factory"
	"github.com/mikey/email-tone-analyzer/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Provider flags
	Provider        string
	RewriteProvider string
	Fallback        bool
	Seed            int64
	MaxBodySize     int

	// Remote model flags
	HuggingFaceAPIKey string
	OpenAIAPIKey      string
	OpenAIModelName   string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	GeminiModelName   string
	BedrockRegion     string
	BedrockModelID    string

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application.
// Reports are written to out.
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := LoadConfig(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}

		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideToneService(container); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory, flags *CLIFlags) *filter.CliFilter {
		return f.CreateCliFilter(out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	// One-shot runs never benefit from the cache
	cfg.Set("cache.enabled", false)

	setString := func(key, value string) {
		if value != "" {
			cfg.Set(key, value)
		}
	}

	setString("analysis.provider", flags.Provider)
	setString("rewrite.provider", flags.RewriteProvider)
	if flags.Fallback {
		cfg.Set("analysis.fallback_to_heuristic", true)
	}
	if flags.Seed != 0 {
		cfg.Set("heuristic.seed", flags.Seed)
	}
	if flags.MaxBodySize > 0 {
		for _, provider := range []string{"huggingface", "openai", "gemini", "bedrock"} {
			cfg.Set(provider+".max_body_size", flags.MaxBodySize)
		}
	}

	setString("huggingface.api_key", flags.HuggingFaceAPIKey)
	setString("openai.api_key", flags.OpenAIAPIKey)
	setString("openai.model_name", flags.OpenAIModelName)
	setString("openai.base_url", flags.OpenAIBaseURL)
	setString("gemini.api_key", flags.GeminiAPIKey)
	setString("gemini.model_name", flags.GeminiModelName)
	setString("bedrock.region", flags.BedrockRegion)
	setString("bedrock.model_id", flags.BedrockModelID)
}
