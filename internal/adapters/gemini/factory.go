package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Provider is what the factory hands out: an analyzer that can also rewrite
type Provider interface {
	core.AnalysisProvider
	core.Rewriter
}

// CreateProvider creates a new GeminiClient, or a stand-in reporting the missing key
func (f *Factory) CreateProvider(ctx context.Context) (Provider, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		f.logger.Warn("Gemini API key not configured; requests will fail")
		return core.NewUnconfiguredProvider(ProviderName, "Gemini API key not configured"), nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiCfg.ModelName)
	model.SetTemperature(geminiCfg.Temperature)
	model.SetTopP(geminiCfg.TopP)
	model.SetMaxOutputTokens(int32(geminiCfg.MaxTokens))

	return NewGeminiClient(
		client,
		model,
		geminiCfg.ModelName,
		f.logger,
		utils.NewTextProcessor(geminiCfg.MaxBodySize, f.logger),
	), nil
}
