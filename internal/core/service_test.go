package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name   string
	result *ToneAnalysis
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Analyze(ctx context.Context, text string) (*ToneAnalysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return nil, nil
	}
	result := *f.result
	return &result, nil
}

type fakeRewriter struct {
	output string
	err    error
	got    *RewriteRequest
}

func (f *fakeRewriter) Name() string { return "fake-rewriter" }

func (f *fakeRewriter) Rewrite(ctx context.Context, req *RewriteRequest) (string, error) {
	f.got = req
	return f.output, f.err
}

type fakePlanner struct{}

func (fakePlanner) ValidateTone(tone string) error {
	switch tone {
	case "":
		return fmt.Errorf("%w: empty tone", ErrInvalidInput)
	case "formal", "casual":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTone, tone)
	}
}

func (p fakePlanner) PlanRewrite(analysis *ToneAnalysis, tone string) (*RewriteDirective, error) {
	if err := p.ValidateTone(tone); err != nil {
		return nil, err
	}
	return &RewriteDirective{TargetTone: tone, CurrentTone: analysis.Tone}, nil
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*CacheEntry)}
}

func (c *mapCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (c *mapCache) Set(ctx context.Context, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Cleanup(ctx context.Context) error { return nil }

func newTestService(provider AnalysisProvider, rewriter Rewriter, cache CacheRepository, cacheEnabled bool) *ToneService {
	return NewToneService(provider, rewriter, fakePlanner{}, cache, zap.NewNop(), cacheEnabled, time.Hour)
}

func TestAnalyzeClampsAndStamps(t *testing.T) {
	provider := &fakeProvider{
		name: "remote",
		result: &ToneAnalysis{
			Tone:       "friendly",
			Confidence: 0.99,
			Politeness: 1.4,
			Urgency:    -0.2,
			Emotions:   EmotionVector{Joy: 1.1},
			AllTones:   []ToneScore{{Label: "friendly", Score: 1.2}},
		},
	}
	svc := newTestService(provider, nil, nil, false)

	got, err := svc.Analyze(context.Background(), "Hi there!")
	require.NoError(t, err)

	assert.Equal(t, MaxConfidence, got.Confidence)
	assert.Equal(t, 1.0, got.Politeness)
	assert.Equal(t, 0.0, got.Urgency)
	assert.Equal(t, 1.0, got.Emotions.Joy)
	assert.Equal(t, 1.0, got.AllTones[0].Score)
	assert.Equal(t, SentimentPositive, got.Sentiment)
	assert.Equal(t, "remote", got.ModelUsed)
	assert.NotEmpty(t, got.ProcessingID)
	assert.False(t, got.AnalyzedAt.IsZero())
}

func TestAnalyzeRejectsBlankText(t *testing.T) {
	provider := &fakeProvider{name: "remote"}
	svc := newTestService(provider, nil, nil, false)

	_, err := svc.Analyze(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, provider.calls)
}

func TestAnalyzeNilResultIsUpstreamError(t *testing.T) {
	svc := newTestService(&fakeProvider{name: "remote"}, nil, nil, false)

	_, err := svc.Analyze(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAnalyzePropagatesProviderError(t *testing.T) {
	cause := fmt.Errorf("%w: status 503", ErrUpstream)
	svc := newTestService(&fakeProvider{name: "remote", err: cause}, nil, nil, false)

	_, err := svc.Analyze(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "upstream", ErrorKind(err))
}

func TestAnalyzeUsesCache(t *testing.T) {
	provider := &fakeProvider{name: "remote", result: &ToneAnalysis{
		Tone:        "neutral",
		Confidence:  0.8,
		AllTones:    []ToneScore{{Label: "neutral", Score: 0.8}},
		OceanTraits: &OceanTraits{Openness: 0.4},
	}}
	svc := newTestService(provider, nil, newMapCache(), true)

	first, err := svc.Analyze(context.Background(), "same text")
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, first.Tone, second.Tone)
	assert.NotEqual(t, first.ProcessingID, second.ProcessingID)

	// Mutating a returned result must not poison the cache
	first.OceanTraits.Openness = 0.99
	first.AllTones[0].Score = 0
	second.Tone = "changed"
	second.OceanTraits.Openness = 0.01

	third, err := svc.Analyze(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, "neutral", third.Tone)
	assert.InDelta(t, 0.4, third.OceanTraits.Openness, 1e-9)
	assert.InDelta(t, 0.8, third.AllTones[0].Score, 1e-9)
	assert.NotSame(t, second.OceanTraits, third.OceanTraits)
	assert.NotEqual(t, second.ProcessingID, third.ProcessingID)

	_, err = svc.Analyze(context.Background(), "other text")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestAnalyzeDoesNotCacheFallbackResults(t *testing.T) {
	primary := &fakeProvider{name: "huggingface", err: fmt.Errorf("%w: status 503", ErrUpstream)}
	fallback := &fakeProvider{name: "heuristic", result: &ToneAnalysis{Tone: "neutral"}}
	svc := newTestService(NewFallbackProvider(primary, fallback, zap.NewNop()), nil, newMapCache(), true)

	degraded, err := svc.Analyze(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, "heuristic", degraded.ModelUsed)
	assert.True(t, degraded.FromFallback())

	// The remote recovers and must be asked again
	primary.err = nil
	primary.result = &ToneAnalysis{Tone: "formal", ModelUsed: "huggingface"}

	recovered, err := svc.Analyze(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, "formal", recovered.Tone)
	assert.Equal(t, "huggingface", recovered.ModelUsed)
	assert.False(t, recovered.FromFallback())
	assert.Equal(t, 2, primary.calls)

	cached, err := svc.Analyze(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, "formal", cached.Tone)
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestAnalyzeCacheDisabledWithoutRepository(t *testing.T) {
	provider := &fakeProvider{name: "remote", result: &ToneAnalysis{Tone: "neutral"}}
	svc := newTestService(provider, nil, nil, true)

	for i := 0; i < 3; i++ {
		_, err := svc.Analyze(context.Background(), "text")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, provider.calls)
}

func TestPlanRewriteValidatesToneBeforeAnalysis(t *testing.T) {
	provider := &fakeProvider{name: "remote", result: &ToneAnalysis{Tone: "neutral"}}
	svc := newTestService(provider, nil, nil, false)

	_, err := svc.PlanRewrite(context.Background(), "hello", "sarcastic")
	assert.ErrorIs(t, err, ErrUnsupportedTone)
	_, err = svc.PlanRewrite(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PlanRewrite(context.Background(), "", "formal")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, provider.calls)

	directive, err := svc.PlanRewrite(context.Background(), "hello", "formal")
	require.NoError(t, err)
	assert.Equal(t, "formal", directive.TargetTone)
	assert.Equal(t, "neutral", directive.CurrentTone)
}

func TestRewrite(t *testing.T) {
	rewriter := &fakeRewriter{output: "Dear team, kindly review."}
	provider := &fakeProvider{name: "remote", result: &ToneAnalysis{Tone: "urgent"}}
	svc := newTestService(provider, rewriter, nil, false)

	got, err := svc.Rewrite(context.Background(), "review this NOW", "formal")
	require.NoError(t, err)

	assert.Equal(t, "Dear team, kindly review.", got.RewrittenText)
	assert.Equal(t, "fake-rewriter", got.ModelUsed)
	require.NotNil(t, rewriter.got)
	assert.Equal(t, "review this NOW", rewriter.got.Text)
	assert.Equal(t, "formal", rewriter.got.TargetTone)
	assert.Equal(t, "urgent", rewriter.got.Directive.CurrentTone)
}

func TestRewriteFailures(t *testing.T) {
	provider := &fakeProvider{name: "remote", result: &ToneAnalysis{Tone: "neutral"}}

	t.Run("empty output", func(t *testing.T) {
		svc := newTestService(provider, &fakeRewriter{output: "  "}, nil, false)
		_, err := svc.Rewrite(context.Background(), "hello", "casual")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("rewriter error", func(t *testing.T) {
		svc := newTestService(provider, &fakeRewriter{err: fmt.Errorf("%w: boom", ErrUpstream)}, nil, false)
		_, err := svc.Rewrite(context.Background(), "hello", "casual")
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("no rewriter", func(t *testing.T) {
		svc := newTestService(provider, nil, nil, false)
		_, err := svc.Rewrite(context.Background(), "hello", "casual")
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("unconfigured rewriter", func(t *testing.T) {
		svc := newTestService(provider, NewUnconfiguredProvider("huggingface", "api key not set"), nil, false)
		_, err := svc.Rewrite(context.Background(), "hello", "casual")
		assert.ErrorIs(t, err, ErrConfiguration)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "huggingface", cfgErr.Provider)
	})

	t.Run("unsupported tone", func(t *testing.T) {
		rewriter := &fakeRewriter{output: "x"}
		svc := newTestService(provider, rewriter, nil, false)
		_, err := svc.Rewrite(context.Background(), "hello", "sarcastic")
		assert.ErrorIs(t, err, ErrUnsupportedTone)
		assert.Nil(t, rewriter.got)
	})
}

func TestFallbackProvider(t *testing.T) {
	fallback := &fakeProvider{name: "heuristic", result: &ToneAnalysis{Tone: "neutral"}}

	t.Run("primary succeeds", func(t *testing.T) {
		primary := &fakeProvider{name: "remote", result: &ToneAnalysis{Tone: "formal"}}
		p := NewFallbackProvider(primary, fallback, zap.NewNop())
		got, err := p.Analyze(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "formal", got.Tone)
		assert.Equal(t, "remote", p.Name())
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &fakeProvider{name: "remote", err: fmt.Errorf("%w: timeout", ErrUpstream)}
		got, err := NewFallbackProvider(primary, fallback, zap.NewNop()).Analyze(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "neutral", got.Tone)
		assert.Equal(t, "heuristic", got.ModelUsed)
	})

	t.Run("invalid input is not retried", func(t *testing.T) {
		fb := &fakeProvider{name: "heuristic", result: &ToneAnalysis{Tone: "neutral"}}
		primary := &fakeProvider{name: "remote", err: fmt.Errorf("%w: empty", ErrInvalidInput)}
		_, err := NewFallbackProvider(primary, fb, zap.NewNop()).Analyze(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, fb.calls)
	})

	t.Run("both fail", func(t *testing.T) {
		primary := &fakeProvider{name: "remote", err: NewUnconfiguredProvider("remote", "no key").err()}
		fb := &fakeProvider{name: "heuristic", err: errors.New("broken")}
		_, err := NewFallbackProvider(primary, fb, zap.NewNop()).Analyze(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorContains(t, err, "broken")
	})
}

func TestUnconfiguredProviderValidatesFirst(t *testing.T) {
	p := NewUnconfiguredProvider("openai", "api key not set")

	_, err := p.Analyze(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.Analyze(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.EqualError(t, err, "openai: api key not set")
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "invalid_input", ErrorKind(fmt.Errorf("wrap: %w", ErrInvalidInput)))
	assert.Equal(t, "unsupported_tone", ErrorKind(ErrUnsupportedTone))
	assert.Equal(t, "configuration", ErrorKind(&ConfigurationError{Provider: "x"}))
	assert.Equal(t, "upstream", ErrorKind(ErrUpstream))
	assert.Equal(t, "internal", ErrorKind(errors.New("other")))
}

func TestSentimentForTone(t *testing.T) {
	assert.Equal(t, SentimentPositive, SentimentForTone("friendly"))
	assert.Equal(t, SentimentNegative, SentimentForTone("aggressive"))
	assert.Equal(t, SentimentNeutral, SentimentForTone("formal"))
	assert.Equal(t, SentimentNeutral, SentimentForTone("something-else"))
}

func TestReferenceData(t *testing.T) {
	models := ModelPerformance()
	require.Len(t, models, 4)
	for _, m := range models {
		assert.NotEmpty(t, m.Name)
		assert.Greater(t, m.Accuracy, 0.0)
	}

	samples := SampleEmails()
	require.Len(t, samples, 3)
	for _, s := range samples {
		assert.NotEmpty(t, s.ID)
		assert.NoError(t, ValidateText(s.Content))
		assert.Nil(t, s.Analysis)
	}
}
