package heuristic

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mikey/email-tone-analyzer/internal/core"
)

const (
	baseConfidence   = 0.7
	confidenceJitter = 0.25
)

// emotionRule scores one emotion: base plus a bounded jitter when boosted holds,
// otherwise jitter alone.
type emotionRule struct {
	name          string
	boosted       func(core.FeatureSet, Scores) bool
	base          float64
	boostedJitter float64
	jitter        float64
	set           func(*core.EmotionVector, float64)
}

var emotionRules = []emotionRule{
	{
		name:          "joy",
		boosted:       func(f core.FeatureSet, _ Scores) bool { return f.HasThank },
		base:          0.7,
		boostedJitter: 0.2,
		jitter:        0.4,
		set:           func(e *core.EmotionVector, v float64) { e.Joy = v },
	},
	{
		name:          "anger",
		boosted:       func(f core.FeatureSet, _ Scores) bool { return f.HasExclamation && !f.HasPlease },
		base:          0.3,
		boostedJitter: 0.4,
		jitter:        0.2,
		set:           func(e *core.EmotionVector, v float64) { e.Anger = v },
	},
	{
		name:          "fear",
		boosted:       func(f core.FeatureSet, _ Scores) bool { return f.HasUrgent },
		base:          0.2,
		boostedJitter: 0.3,
		jitter:        0.15,
		set:           func(e *core.EmotionVector, v float64) { e.Fear = v },
	},
	{
		name:          "sadness",
		boosted:       func(f core.FeatureSet, _ Scores) bool { return f.HasApology },
		base:          0.2,
		boostedJitter: 0.3,
		jitter:        0.15,
		set:           func(e *core.EmotionVector, v float64) { e.Sadness = v },
	},
	{
		name:          "analytical",
		boosted:       func(_ core.FeatureSet, s Scores) bool { return s.Formality > 0.6 },
		base:          0.6,
		boostedJitter: 0.3,
		jitter:        0.4,
		set:           func(e *core.EmotionVector, v float64) { e.Analytical = v },
	},
	{
		name:          "confident",
		boosted:       func(f core.FeatureSet, _ Scores) bool { return f.Length > 100 && !f.HasQuestion },
		base:          0.5,
		boostedJitter: 0.3,
		jitter:        0.4,
		set:           func(e *core.EmotionVector, v float64) { e.Confident = v },
	},
	{
		name:          "tentative",
		boosted:       func(f core.FeatureSet, _ Scores) bool { return f.HasQuestion },
		base:          0.4,
		boostedJitter: 0.3,
		jitter:        0.3,
		set:           func(e *core.EmotionVector, v float64) { e.Tentative = v },
	},
}

// NewRandomSource returns a seeded PCG source. A zero seed is replaced by the clock.
func NewRandomSource(seed int64) core.RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func jitter(rnd core.RandomSource, max float64) float64 {
	return rnd.Float64() * max
}

// BuildEmotionVector scores every emotion independently
func BuildEmotionVector(f core.FeatureSet, scores Scores, rnd core.RandomSource) core.EmotionVector {
	var emotions core.EmotionVector
	for _, rule := range emotionRules {
		if rule.boosted(f, scores) {
			rule.set(&emotions, rule.base+jitter(rnd, rule.boostedJitter))
		} else {
			rule.set(&emotions, jitter(rnd, rule.jitter))
		}
	}
	return emotions
}

// BuildConfidence draws the reported confidence, capped at core.MaxConfidence
func BuildConfidence(rnd core.RandomSource) float64 {
	return core.ClampTo(baseConfidence+jitter(rnd, confidenceJitter), 0, core.MaxConfidence)
}

// Builder assembles heuristic tone analyses
type Builder struct {
	mu  sync.Mutex
	rnd core.RandomSource
}

// NewBuilder creates a builder drawing jitter from rnd
func NewBuilder(rnd core.RandomSource) *Builder {
	return &Builder{rnd: rnd}
}

// Build runs the full heuristic pipeline on text
func (b *Builder) Build(text string) (*core.ToneAnalysis, error) {
	features, err := ComputeFeatures(text)
	if err != nil {
		return nil, err
	}
	scores := ScoreFeatures(features)

	// The random source is shared between concurrent requests
	b.mu.Lock()
	confidence := BuildConfidence(b.rnd)
	emotions := BuildEmotionVector(features, scores, b.rnd)
	b.mu.Unlock()

	tone, sentiment := SelectTone(scores, emotions)

	analysis := &core.ToneAnalysis{
		Tone:       tone,
		Confidence: confidence,
		Sentiment:  sentiment,
		Emotions:   emotions,
		Politeness: scores.Politeness,
		Formality:  scores.Formality,
		Urgency:    scores.Urgency,
	}
	analysis.Clamp()
	return analysis, nil
}
