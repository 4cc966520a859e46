package core

import (
	"time"
)

// Sentiment is the coarse polarity of a piece of text
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// MaxConfidence is the highest confidence any analysis may report
const MaxConfidence = 0.95

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// FeatureSet holds the signals extracted from a single email text
type FeatureSet struct {
	HasExclamation bool `json:"hasExclamation"`
	HasQuestion    bool `json:"hasQuestion"`
	HasPlease      bool `json:"hasPlease"`
	HasThank       bool `json:"hasThank"`
	HasUrgent      bool `json:"hasUrgent"`
	HasApology     bool `json:"hasApology"`
	Length         int  `json:"length"`
}

// EmotionVector scores each emotion independently in [0,1]
type EmotionVector struct {
	Joy        float64 `json:"joy"`
	Anger      float64 `json:"anger"`
	Fear       float64 `json:"fear"`
	Sadness    float64 `json:"sadness"`
	Analytical float64 `json:"analytical"`
	Confident  float64 `json:"confident"`
	Tentative  float64 `json:"tentative"`
}

// OceanTraits scores the five-factor personality model
type OceanTraits struct {
	Openness          float64 `json:"Openness"`
	Conscientiousness float64 `json:"Conscientiousness"`
	Extraversion      float64 `json:"Extraversion"`
	Agreeableness     float64 `json:"Agreeableness"`
	Neuroticism       float64 `json:"Neuroticism"`
}

// ToneScore is a single tone prediction with its score
type ToneScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ToneAnalysis represents the result of tone analysis
type ToneAnalysis struct {
	Tone         string        `json:"tone"`
	Confidence   float64       `json:"confidence"`
	Sentiment    Sentiment     `json:"sentiment"`
	Emotions     EmotionVector `json:"emotions"`
	Politeness   float64       `json:"politeness"`
	Formality    float64       `json:"formality"`
	Urgency      float64       `json:"urgency"`
	AllTones     []ToneScore   `json:"allTones,omitempty"`
	OceanTraits  *OceanTraits  `json:"oceanTraits,omitempty"`
	ModelUsed    string        `json:"modelUsed,omitempty"`
	ProcessingID string        `json:"processingId,omitempty"`
	AnalyzedAt   time.Time     `json:"analyzedAt"`

	// fallback marks a result produced by the fallback provider
	fallback bool
}

// FromFallback reports whether the result came from the fallback provider
// after the primary provider failed
func (a *ToneAnalysis) FromFallback() bool {
	return a.fallback
}

// Clone returns a deep copy of the analysis
func (a *ToneAnalysis) Clone() *ToneAnalysis {
	c := *a
	if a.AllTones != nil {
		c.AllTones = append([]ToneScore(nil), a.AllTones...)
	}
	if a.OceanTraits != nil {
		traits := *a.OceanTraits
		c.OceanTraits = &traits
	}
	return &c
}

// Clamp saturates every score into [0,1] and caps the confidence at MaxConfidence.
// Out-of-range values are cut off, never rescaled.
func (a *ToneAnalysis) Clamp() {
	a.Confidence = ClampTo(a.Confidence, 0, MaxConfidence)
	a.Politeness = Clamp01(a.Politeness)
	a.Formality = Clamp01(a.Formality)
	a.Urgency = Clamp01(a.Urgency)

	e := &a.Emotions
	e.Joy = Clamp01(e.Joy)
	e.Anger = Clamp01(e.Anger)
	e.Fear = Clamp01(e.Fear)
	e.Sadness = Clamp01(e.Sadness)
	e.Analytical = Clamp01(e.Analytical)
	e.Confident = Clamp01(e.Confident)
	e.Tentative = Clamp01(e.Tentative)

	for i := range a.AllTones {
		a.AllTones[i].Score = Clamp01(a.AllTones[i].Score)
	}

	if t := a.OceanTraits; t != nil {
		t.Openness = Clamp01(t.Openness)
		t.Conscientiousness = Clamp01(t.Conscientiousness)
		t.Extraversion = Clamp01(t.Extraversion)
		t.Agreeableness = Clamp01(t.Agreeableness)
		t.Neuroticism = Clamp01(t.Neuroticism)
	}

	if a.Sentiment == "" {
		a.Sentiment = SentimentForTone(a.Tone)
	}
}

// Clamp01 saturates v into [0,1]
func Clamp01(v float64) float64 {
	return ClampTo(v, 0, 1)
}

// ClampTo saturates v into [lo,hi]
func ClampTo(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SentimentForTone derives a sentiment for tone labels reported without one
func SentimentForTone(tone string) Sentiment {
	switch tone {
	case "polite", "friendly", "positive", "joy", "happy":
		return SentimentPositive
	case "aggressive", "urgent", "negative", "agitated", "anger", "angry", "sadness", "fear":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Dimension names one of the scalar tone scores
type Dimension string

const (
	DimensionPoliteness Dimension = "politeness"
	DimensionFormality  Dimension = "formality"
	DimensionUrgency    Dimension = "urgency"
)

// Score returns the analysis value for a dimension
func (a *ToneAnalysis) Score(d Dimension) float64 {
	switch d {
	case DimensionPoliteness:
		return a.Politeness
	case DimensionFormality:
		return a.Formality
	case DimensionUrgency:
		return a.Urgency
	default:
		return 0
	}
}

// ShiftDirection says which way a dimension has to move
type ShiftDirection string

const (
	ShiftIncrease ShiftDirection = "increase"
	ShiftDecrease ShiftDirection = "decrease"
	ShiftKeep     ShiftDirection = "keep"
)

// DimensionShift describes the change needed on one dimension
type DimensionShift struct {
	Dimension Dimension      `json:"dimension"`
	Current   float64        `json:"current"`
	Target    float64        `json:"target"`
	Delta     float64        `json:"delta"`
	Direction ShiftDirection `json:"direction"`
}

// RewriteDirective is the plan handed to a text generator
type RewriteDirective struct {
	TargetTone   string           `json:"targetTone"`
	CurrentTone  string           `json:"currentTone"`
	Shifts       []DimensionShift `json:"shifts"`
	Instructions []string         `json:"instructions"`
}

// RewriteRequest is what a Rewriter receives
type RewriteRequest struct {
	Text       string
	TargetTone string
	Directive  *RewriteDirective
}

// RewriteResult represents the result of a rewrite
type RewriteResult struct {
	RewrittenText string            `json:"rewrittenText"`
	Directive     *RewriteDirective `json:"directive,omitempty"`
	ModelUsed     string            `json:"modelUsed,omitempty"`
}

// CacheEntry is a cached analysis keyed by provider and text digest
type CacheEntry struct {
	Key       string
	Analysis  *ToneAnalysis
	LastSeen  time.Time
	ExpiresAt time.Time
}
