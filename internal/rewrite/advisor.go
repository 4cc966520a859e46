// Package rewrite plans how an email has to change to reach a target tone.
package rewrite

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mikey/email-tone-analyzer/internal/core"
)

// bound limits one dimension of a target profile. A nil side is unconstrained.
type bound struct {
	min *float64
	max *float64
}

func atLeast(v float64) bound { return bound{min: &v} }
func atMost(v float64) bound { return bound{max: &v} }
func between(lo, hi float64) bound { return bound{min: &lo, max: &hi} }

// profile is the canonical score envelope of a target tone
type profile map[core.Dimension]bound

var profiles = map[string]profile{
	"positive": {
		core.DimensionPoliteness: atLeast(0.7),
		core.DimensionUrgency:    atMost(0.3),
	},
	"negative": {
		core.DimensionPoliteness: atMost(0.5),
	},
	"agitated": {
		core.DimensionUrgency:    atLeast(0.6),
		core.DimensionPoliteness: atMost(0.5),
	},
	"inquisitive": {
		core.DimensionPoliteness: atLeast(0.5),
		core.DimensionUrgency:    atMost(0.5),
	},
	"casual": {
		core.DimensionFormality: atMost(0.4),
	},
	"neutral": {
		core.DimensionPoliteness: between(0.4, 0.7),
		core.DimensionFormality:  between(0.4, 0.7),
		core.DimensionUrgency:    atMost(0.4),
	},
	"formal": {
		core.DimensionFormality:  atLeast(0.7),
		core.DimensionPoliteness: atLeast(0.6),
	},
}

// dimensions fixes the order shifts are reported in
var dimensions = []core.Dimension{
	core.DimensionPoliteness,
	core.DimensionFormality,
	core.DimensionUrgency,
}

// styleHints are appended to every directive for the tone
var styleHints = map[string]string{
	"positive":    "Keep an upbeat, appreciative voice.",
	"negative":    "Make the dissatisfaction clear without insults.",
	"agitated":    "Convey frustration and that the matter cannot wait.",
	"inquisitive": "Phrase the key points as open questions.",
	"casual":      "Use a relaxed, conversational register.",
	"neutral":     "Keep the wording factual and even-handed.",
	"formal":      "Use complete sentences and a professional register.",
}

// Advisor is an implementation of core.RewritePlanner using fixed target profiles
type Advisor struct{}

// NewAdvisor creates a new rewrite advisor
func NewAdvisor() *Advisor {
	return &Advisor{}
}

// SupportedTones lists the targets a rewrite can aim for
func SupportedTones() []string {
	tones := make([]string, 0, len(profiles))
	for tone := range profiles {
		tones = append(tones, tone)
	}
	sort.Strings(tones)
	return tones
}

func normalizeTone(tone string) string {
	return strings.ToLower(strings.TrimSpace(tone))
}

// ValidateTone rejects empty and unknown target tones
func (a *Advisor) ValidateTone(targetTone string) error {
	tone := normalizeTone(targetTone)
	if tone == "" {
		return fmt.Errorf("%w: tone must not be empty", core.ErrInvalidInput)
	}
	if _, ok := profiles[tone]; !ok {
		return fmt.Errorf("%w: %q (supported: %s)", core.ErrUnsupportedTone, targetTone, strings.Join(SupportedTones(), ", "))
	}
	return nil
}

// PlanRewrite computes the shift needed on every dimension to move analysis into the target profile
func (a *Advisor) PlanRewrite(analysis *core.ToneAnalysis, targetTone string) (*core.RewriteDirective, error) {
	if err := a.ValidateTone(targetTone); err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, fmt.Errorf("%w: analysis must not be nil", core.ErrInvalidInput)
	}

	tone := normalizeTone(targetTone)
	target := profiles[tone]

	directive := &core.RewriteDirective{
		TargetTone:   tone,
		CurrentTone:  analysis.Tone,
		Shifts:       make([]core.DimensionShift, 0, len(dimensions)),
		Instructions: []string{fmt.Sprintf("Rewrite the email in a %s tone while preserving its meaning.", tone)},
	}

	for _, d := range dimensions {
		b, ok := target[d]
		if !ok {
			continue
		}
		shift := planShift(d, analysis.Score(d), b)
		directive.Shifts = append(directive.Shifts, shift)
		if hint := instruction(shift); hint != "" {
			directive.Instructions = append(directive.Instructions, hint)
		}
	}

	if hint, ok := styleHints[tone]; ok {
		directive.Instructions = append(directive.Instructions, hint)
	}

	return directive, nil
}

func planShift(d core.Dimension, current float64, b bound) core.DimensionShift {
	shift := core.DimensionShift{
		Dimension: d,
		Current:   current,
		Target:    current,
		Direction: core.ShiftKeep,
	}

	switch {
	case b.min != nil && current < *b.min:
		shift.Target = *b.min
		shift.Direction = core.ShiftIncrease
	case b.max != nil && current > *b.max:
		shift.Target = *b.max
		shift.Direction = core.ShiftDecrease
	}
	shift.Delta = round(shift.Target - current)
	return shift
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func instruction(s core.DimensionShift) string {
	if s.Direction == core.ShiftKeep {
		return ""
	}

	var verb string
	switch s.Dimension {
	case core.DimensionPoliteness:
		verb = map[core.ShiftDirection]string{
			core.ShiftIncrease: "Add courteous phrasing such as please and thank you",
			core.ShiftDecrease: "Drop softening pleasantries and state the point bluntly",
		}[s.Direction]
	case core.DimensionFormality:
		verb = map[core.ShiftDirection]string{
			core.ShiftIncrease: "Use a more formal structure and vocabulary",
			core.ShiftDecrease: "Use shorter, informal sentences and contractions",
		}[s.Direction]
	case core.DimensionUrgency:
		verb = map[core.ShiftDirection]string{
			core.ShiftIncrease: "Stress the deadline and the need for a prompt reply",
			core.ShiftDecrease: "Remove pressure words like urgent or ASAP and exclamation marks",
		}[s.Direction]
	default:
		return ""
	}

	return fmt.Sprintf("%s (%s %.2f -> %.2f).", verb, s.Dimension, s.Current, s.Target)
}
