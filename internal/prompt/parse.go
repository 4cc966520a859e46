package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/utils"
)

// AnalysisResponse represents the structured response from the LLM
type AnalysisResponse struct {
	Tone       string             `json:"tone"`
	Confidence float64            `json:"confidence"`
	Sentiment  string             `json:"sentiment"`
	Emotions   core.EmotionVector `json:"emotions"`
	Politeness float64            `json:"politeness"`
	Formality  float64            `json:"formality"`
	Urgency    float64            `json:"urgency"`
}

// ParseAnalysis decodes a model reply into a tone analysis. Malformed replies are upstream errors.
func ParseAnalysis(raw string) (*core.ToneAnalysis, error) {
	body, err := utils.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUpstream, err)
	}

	var resp AnalysisResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse LLM response as JSON: %v", core.ErrUpstream, err)
	}

	tone := strings.ToLower(strings.TrimSpace(resp.Tone))
	if tone == "" {
		return nil, fmt.Errorf("%w: LLM response has no tone", core.ErrUpstream)
	}

	analysis := &core.ToneAnalysis{
		Tone:       tone,
		Confidence: resp.Confidence,
		Sentiment:  parseSentiment(resp.Sentiment),
		Emotions:   resp.Emotions,
		Politeness: resp.Politeness,
		Formality:  resp.Formality,
		Urgency:    resp.Urgency,
	}
	analysis.Clamp()
	return analysis, nil
}

func parseSentiment(s string) core.Sentiment {
	switch core.Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case core.SentimentPositive:
		return core.SentimentPositive
	case core.SentimentNegative:
		return core.SentimentNegative
	case core.SentimentNeutral:
		return core.SentimentNeutral
	default:
		// Clamp derives it from the tone
		return ""
	}
}

// ParseRewrite cleans a rewrite reply. An empty reply is an upstream error.
func ParseRewrite(raw string) (string, error) {
	text := utils.StripFences(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty rewrite from LLM", core.ErrUpstream)
	}
	return text, nil
}
