package factory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mikey/email-tone-analyzer/internal/adapters/bedrock"
	"github.com/mikey/email-tone-analyzer/internal/adapters/gemini"
	"github.com/mikey/email-tone-analyzer/internal/adapters/huggingface"
	"github.com/mikey/email-tone-analyzer/internal/adapters/openai"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/heuristic"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"go.uber.org/zap"
)

// remoteProvider is a model backend that can both analyse and rewrite
type remoteProvider interface {
	core.AnalysisProvider
	core.Rewriter
}

// ProviderFactory creates analysis providers and rewriters based on configuration.
// Remote backends are created once and shared between analysis and rewriting.
type ProviderFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpClient *http.Client

	mu      sync.Mutex
	remotes map[string]remoteProvider
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *zap.Logger) *ProviderFactory {
	return &ProviderFactory{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{},
		remotes:    make(map[string]remoteProvider),
	}
}

// CreateAnalysisProvider creates the provider named by analysis.provider,
// wrapped with the heuristic fallback when analysis.fallback_to_heuristic is set
func (f *ProviderFactory) CreateAnalysisProvider(ctx context.Context) (core.AnalysisProvider, error) {
	analysisCfg := f.cfg.GetAnalysis()
	name := strings.ToLower(strings.TrimSpace(analysisCfg.Provider))

	if name == heuristic.ProviderName {
		return f.createHeuristic(), nil
	}

	primary, err := f.remote(ctx, name)
	if err != nil {
		return nil, err
	}

	if analysisCfg.FallbackToHeuristic {
		f.logger.Info("Heuristic fallback enabled", zap.String("primary", primary.Name()))
		return core.NewFallbackProvider(primary, f.createHeuristic(), f.logger), nil
	}

	return primary, nil
}

// CreateRewriter creates the text generator named by rewrite.provider
func (f *ProviderFactory) CreateRewriter(ctx context.Context) (core.Rewriter, error) {
	name := strings.ToLower(strings.TrimSpace(f.cfg.GetRewrite().Provider))
	if name == heuristic.ProviderName {
		return nil, fmt.Errorf("unsupported rewrite provider: %s cannot generate text", name)
	}
	return f.remote(ctx, name)
}

// Close releases the resources held by remote backends
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for name, p := range f.remotes {
		closer, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			f.logger.Error("Failed to close provider", zap.String("provider", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	f.remotes = make(map[string]remoteProvider)
	return firstErr
}

func (f *ProviderFactory) createHeuristic() core.AnalysisProvider {
	return heuristic.NewProvider(heuristic.NewRandomSource(f.cfg.GetHeuristic().Seed), f.logger)
}

func (f *ProviderFactory) remote(ctx context.Context, name string) (remoteProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.remotes[name]; ok {
		return p, nil
	}

	var (
		p   remoteProvider
		err error
	)
	switch name {
	case huggingface.ProviderName:
		p = f.createHuggingFace()
	case openai.ProviderName:
		p = openai.NewFactory(f.cfg, f.logger).CreateProvider()
	case gemini.ProviderName:
		p, err = gemini.NewFactory(f.cfg, f.logger).CreateProvider(ctx)
	case bedrock.ProviderName:
		p, err = bedrock.NewFactory(f.cfg, f.logger).CreateClient(ctx)
	default:
		return nil, fmt.Errorf("unsupported provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}

	f.logger.Info("Created model provider", zap.String("provider", name))
	f.remotes[name] = p
	return p, nil
}

func (f *ProviderFactory) createHuggingFace() *huggingface.Client {
	hfCfg := f.cfg.GetHuggingFace()
	if hfCfg.APIKey == "" {
		f.logger.Warn("Hugging Face API key not configured; requests will fail")
	}

	return huggingface.NewClient(
		hfCfg.APIKey,
		hfCfg.AnalyzeURL,
		hfCfg.RewriteURL,
		f.httpClient,
		utils.NewTextProcessor(hfCfg.MaxBodySize, f.logger),
		f.logger,
	)
}
