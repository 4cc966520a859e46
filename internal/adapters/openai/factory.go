package openai

import (
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances
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

// CreateProvider creates a new OpenAIClient, or a stand-in reporting the missing key
func (f *Factory) CreateProvider() Provider {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		f.logger.Warn("OpenAI API key not configured; requests will fail")
		return core.NewUnconfiguredProvider(ProviderName, "OpenAI API key not configured")
	}

	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}

	return NewOpenAIClient(
		openai.NewClientWithConfig(clientCfg),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
		utils.NewTextProcessor(openaiCfg.MaxBodySize, f.logger),
	)
}
