package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToneService is the core service for tone analysis and rewriting
type ToneService struct {
	analyzer     AnalysisProvider
	rewriter     Rewriter
	planner      RewritePlanner
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewToneService creates a new tone service
func NewToneService(
	analyzer AnalysisProvider,
	rewriter Rewriter,
	planner RewritePlanner,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *ToneService {
	return &ToneService{
		analyzer:     analyzer,
		rewriter:     rewriter,
		planner:      planner,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
	}
}

// ValidateText rejects empty and whitespace-only text
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text must not be empty", ErrInvalidInput)
	}
	return nil
}

// AnalyzerName returns the name of the configured analysis provider
func (s *ToneService) AnalyzerName() string {
	return s.analyzer.Name()
}

// RewriterName returns the name of the configured rewriter
func (s *ToneService) RewriterName() string {
	if s.rewriter == nil {
		return ""
	}
	return s.rewriter.Name()
}

// cacheKey derives the cache key for a text analysed by the current provider
func (s *ToneService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return s.analyzer.Name() + ":" + hex.EncodeToString(sum[:])
}

// Analyze returns the tone profile of text
func (s *ToneService) Analyze(ctx context.Context, text string) (*ToneAnalysis, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	key := ""
	if s.cacheEnabled {
		key = s.cacheKey(text)
		if entry, err := s.cache.Get(ctx, key); err == nil && entry.Analysis != nil {
			s.logger.Debug("Cache hit for analysis", zap.String("key", key))
			cached := entry.Analysis.Clone()
			cached.ProcessingID = uuid.NewString()
			cached.AnalyzedAt = time.Now()
			return cached, nil
		}
	}

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.logger.Error("Failed to analyze text",
			zap.String("provider", s.analyzer.Name()),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err))
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: provider %s returned no analysis", ErrUpstream, s.analyzer.Name())
	}

	result.Clamp()
	if result.ModelUsed == "" {
		result.ModelUsed = s.analyzer.Name()
	}
	if result.ProcessingID == "" {
		result.ProcessingID = uuid.NewString()
	}
	if result.AnalyzedAt.IsZero() {
		result.AnalyzedAt = time.Now()
	}

	s.logger.Debug("Analyzed text",
		zap.String("tone", result.Tone),
		zap.Float64("confidence", result.Confidence),
		zap.String("model", result.ModelUsed),
		zap.Duration("duration", time.Since(start)))

	// Fallback answers are never cached
	if s.cacheEnabled && !result.FromFallback() {
		entry := &CacheEntry{
			Key:       key,
			Analysis:  result.Clone(),
			LastSeen:  time.Now(),
			ExpiresAt: time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return result, nil
}

// PlanRewrite analyses text and computes the directive for reaching targetTone
func (s *ToneService) PlanRewrite(ctx context.Context, text, targetTone string) (*RewriteDirective, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	// Reject unknown tones before spending a remote analysis on them
	if err := s.planner.ValidateTone(targetTone); err != nil {
		return nil, err
	}

	analysis, err := s.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.planner.PlanRewrite(analysis, targetTone)
}

// Rewrite rewrites text toward targetTone
func (s *ToneService) Rewrite(ctx context.Context, text, targetTone string) (*RewriteResult, error) {
	directive, err := s.PlanRewrite(ctx, text, targetTone)
	if err != nil {
		return nil, err
	}
	if s.rewriter == nil {
		return nil, fmt.Errorf("%w: no rewriter configured", ErrConfiguration)
	}

	rewritten, err := s.rewriter.Rewrite(ctx, &RewriteRequest{
		Text:       text,
		TargetTone: directive.TargetTone,
		Directive:  directive,
	})
	if err != nil {
		s.logger.Error("Failed to rewrite text",
			zap.String("rewriter", s.rewriter.Name()),
			zap.String("tone", directive.TargetTone),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(rewritten) == "" {
		return nil, fmt.Errorf("%w: rewriter %s returned empty text", ErrUpstream, s.rewriter.Name())
	}

	return &RewriteResult{
		RewrittenText: rewritten,
		Directive:     directive,
		ModelUsed:     s.rewriter.Name(),
	}, nil
}
