package heuristic

import (
	"context"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"go.uber.org/zap"
)

// ProviderName is the name heuristic results are reported under
const ProviderName = "heuristic"

// Provider is an implementation of the AnalysisProvider interface that runs locally
type Provider struct {
	builder *Builder
	logger  *zap.Logger
}

// NewProvider creates a heuristic provider drawing jitter from rnd
func NewProvider(rnd core.RandomSource, logger *zap.Logger) *Provider {
	return &Provider{
		builder: NewBuilder(rnd),
		logger:  logger,
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return ProviderName
}

// Analyze profiles text with the keyword heuristics
func (p *Provider) Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis, err := p.builder.Build(text)
	if err != nil {
		return nil, err
	}
	analysis.ModelUsed = ProviderName

	p.logger.Debug("Heuristic analysis complete",
		zap.String("tone", analysis.Tone),
		zap.String("sentiment", string(analysis.Sentiment)))

	return analysis, nil
}
