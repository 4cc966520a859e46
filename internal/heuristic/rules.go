package heuristic

import (
	"github.com/mikey/email-tone-analyzer/internal/core"
)

const (
	basePoliteness = 0.5
	baseFormality  = 0.5
	baseUrgency    = 0.3

	// longFormLength is the length above which text counts as long form
	longFormLength = 200
)

// Scores holds the unclamped politeness, formality and urgency of a text
type Scores struct {
	Politeness float64
	Formality  float64
	Urgency    float64
}

func (s *Scores) add(d core.Dimension, delta float64) {
	switch d {
	case core.DimensionPoliteness:
		s.Politeness += delta
	case core.DimensionFormality:
		s.Formality += delta
	case core.DimensionUrgency:
		s.Urgency += delta
	}
}

// adjustment adds delta to a dimension whenever applies holds
type adjustment struct {
	name      string
	applies   func(core.FeatureSet) bool
	dimension core.Dimension
	delta     float64
}

// adjustments run top to bottom and stack. Totals are never re-normalised.
var adjustments = []adjustment{
	{
		name:      "courtesy",
		applies:   func(f core.FeatureSet) bool { return f.HasPlease || f.HasThank },
		dimension: core.DimensionPoliteness,
		delta:     0.3,
	},
	{
		name:      "apology",
		applies:   func(f core.FeatureSet) bool { return f.HasApology },
		dimension: core.DimensionPoliteness,
		delta:     0.2,
	},
	{
		name:      "exclamation",
		applies:   func(f core.FeatureSet) bool { return f.HasExclamation },
		dimension: core.DimensionUrgency,
		delta:     0.2,
	},
	{
		name:      "urgent-keyword",
		applies:   func(f core.FeatureSet) bool { return f.HasUrgent },
		dimension: core.DimensionUrgency,
		delta:     0.4,
	},
	{
		name:      "long-form",
		applies:   func(f core.FeatureSet) bool { return f.Length > longFormLength },
		dimension: core.DimensionFormality,
		delta:     0.2,
	},
}

// ScoreFeatures applies the adjustment table to the base scores
func ScoreFeatures(f core.FeatureSet) Scores {
	scores := Scores{
		Politeness: basePoliteness,
		Formality:  baseFormality,
		Urgency:    baseUrgency,
	}
	for _, adj := range adjustments {
		if adj.applies(f) {
			scores.add(adj.dimension, adj.delta)
		}
	}
	return scores
}

// toneRule assigns a tone when matches holds
type toneRule struct {
	tone      string
	sentiment core.Sentiment
	matches   func(Scores, core.EmotionVector) bool
}

// toneRules is a priority list: the first matching rule wins even when later
// thresholds are exceeded too.
var toneRules = []toneRule{
	{
		tone:      "polite",
		sentiment: core.SentimentPositive,
		matches:   func(s Scores, _ core.EmotionVector) bool { return s.Politeness > 0.7 },
	},
	{
		tone:      "aggressive",
		sentiment: core.SentimentNegative,
		matches:   func(_ Scores, e core.EmotionVector) bool { return e.Anger > 0.5 },
	},
	{
		tone:      "friendly",
		sentiment: core.SentimentPositive,
		matches:   func(_ Scores, e core.EmotionVector) bool { return e.Joy > 0.6 },
	},
	{
		tone:      "urgent",
		sentiment: core.SentimentNegative,
		matches:   func(s Scores, _ core.EmotionVector) bool { return s.Urgency > 0.6 },
	},
	{
		tone:      "formal",
		sentiment: core.SentimentNeutral,
		matches:   func(s Scores, _ core.EmotionVector) bool { return s.Formality > 0.7 },
	},
}

const (
	defaultTone      = "neutral"
	defaultSentiment = core.SentimentNeutral
)

// Classification is the outcome of the tone rules
type Classification struct {
	Tone      string
	Sentiment core.Sentiment
	Scores    Scores
}

// SelectTone walks the tone rules in priority order
func SelectTone(scores Scores, emotions core.EmotionVector) (string, core.Sentiment) {
	for _, rule := range toneRules {
		if rule.matches(scores, emotions) {
			return rule.tone, rule.sentiment
		}
	}
	return defaultTone, defaultSentiment
}

// Classify scores the features and picks the dominant tone
func Classify(f core.FeatureSet, emotions core.EmotionVector) Classification {
	scores := ScoreFeatures(f)
	tone, sentiment := SelectTone(scores, emotions)
	return Classification{
		Tone:      tone,
		Sentiment: sentiment,
		Scores:    scores,
	}
}
