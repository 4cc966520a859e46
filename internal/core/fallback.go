package core

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// FallbackProvider answers from fallback whenever primary fails for a reason other than bad input
type FallbackProvider struct {
	primary  AnalysisProvider
	fallback AnalysisProvider
	logger   *zap.Logger
}

// NewFallbackProvider creates a provider that degrades from primary to fallback
func NewFallbackProvider(primary, fallback AnalysisProvider, logger *zap.Logger) *FallbackProvider {
	return &FallbackProvider{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Name returns the primary provider name
func (p *FallbackProvider) Name() string {
	return p.primary.Name()
}

// Analyze tries primary first, then fallback
func (p *FallbackProvider) Analyze(ctx context.Context, text string) (*ToneAnalysis, error) {
	result, err := p.primary.Analyze(ctx, text)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return nil, err
	}

	p.logger.Warn("Primary analysis provider failed, using fallback",
		zap.String("primary", p.primary.Name()),
		zap.String("fallback", p.fallback.Name()),
		zap.Error(err))

	result, fbErr := p.fallback.Analyze(ctx, text)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	if result != nil {
		result.fallback = true
		if result.ModelUsed == "" {
			result.ModelUsed = p.fallback.Name()
		}
	}
	return result, nil
}

// UnconfiguredProvider stands in for a remote provider whose credentials are missing.
// Every call fails with ErrConfiguration so the process keeps serving other requests.
type UnconfiguredProvider struct {
	name   string
	reason string
}

// NewUnconfiguredProvider creates a provider that always reports a configuration error
func NewUnconfiguredProvider(name, reason string) *UnconfiguredProvider {
	return &UnconfiguredProvider{name: name, reason: reason}
}

// Name returns the provider name
func (p *UnconfiguredProvider) Name() string {
	return p.name
}

// Analyze always fails
func (p *UnconfiguredProvider) Analyze(ctx context.Context, text string) (*ToneAnalysis, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	return nil, p.err()
}

// Rewrite always fails
func (p *UnconfiguredProvider) Rewrite(ctx context.Context, req *RewriteRequest) (string, error) {
	return "", p.err()
}

func (p *UnconfiguredProvider) err() error {
	return &ConfigurationError{Provider: p.name, Reason: p.reason}
}

// ConfigurationError carries which provider is misconfigured
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return e.Provider + ": " + e.Reason
}

// Unwrap makes errors.Is(err, ErrConfiguration) hold
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
