package core

import (
	"context"
)

// AnalysisProvider defines the interface for anything that can profile the tone of a text
type AnalysisProvider interface {
	// Name identifies the provider in results and logs
	Name() string

	// Analyze returns the tone profile of text
	Analyze(ctx context.Context, text string) (*ToneAnalysis, error)
}

// Rewriter defines the interface for the text generator that performs rewrites
type Rewriter interface {
	// Name identifies the rewriter in results and logs
	Name() string

	// Rewrite returns text rewritten toward the requested tone
	Rewrite(ctx context.Context, req *RewriteRequest) (string, error)
}

// RewritePlanner decides how a text has to change to reach a target tone
type RewritePlanner interface {
	// ValidateTone reports whether targetTone can be planned for
	ValidateTone(targetTone string) error

	// PlanRewrite computes the directive for moving analysis toward targetTone
	PlanRewrite(analysis *ToneAnalysis, targetTone string) (*RewriteDirective, error)
}

// RandomSource supplies uniform values in [0,1)
type RandomSource interface {
	Float64() float64
}

// CacheRepository defines the interface for caching analysis results
type CacheRepository interface {
	// Get retrieves a cached entry
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
