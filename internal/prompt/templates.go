// Package prompt builds the instructions sent to remote language models and
// parses their replies back into tone analyses.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mikey/email-tone-analyzer/internal/core"
)

// AnalysisSystemPrompt is the system message for tone analysis requests
const AnalysisSystemPrompt = "You are an email tone analysis system. Respond only with JSON."

// RewriteSystemPrompt is the system message for rewrite requests
const RewriteSystemPrompt = "You rewrite emails to match a requested tone. Respond only with the rewritten email."

const analysisTemplateText = `Analyze the tone of the following email.
Respond with a JSON object containing:
- tone: string (one of polite, aggressive, friendly, urgent, formal, neutral)
- confidence: number between 0 and 1
- sentiment: string (positive, neutral or negative)
- emotions: object with joy, anger, fear, sadness, analytical, confident and tentative, each between 0 and 1
- politeness: number between 0 and 1
- formality: number between 0 and 1
- urgency: number between 0 and 1

Email:
{{.Text}}

Respond only with the JSON object and nothing else.`

const rewriteTemplateText = `Rewrite the following email so that its tone is {{.TargetTone}}.
{{- if .CurrentTone}}
The email currently reads as {{.CurrentTone}}.
{{- end}}
{{- if .Instructions}}

Guidelines:
{{- range .Instructions}}
- {{.}}
{{- end}}
{{- end}}

Email:
{{.Text}}

Respond only with the rewritten email, without a subject line or commentary.`

var (
	analysisTemplate = template.Must(template.New("analysis").Parse(analysisTemplateText))
	rewriteTemplate  = template.Must(template.New("rewrite").Parse(rewriteTemplateText))
)

type rewriteData struct {
	Text         string
	TargetTone   string
	CurrentTone  string
	Instructions []string
}

// BuildAnalysisPrompt renders the analysis instructions for text
func BuildAnalysisPrompt(text string) (string, error) {
	var b strings.Builder
	if err := analysisTemplate.Execute(&b, struct{ Text string }{Text: text}); err != nil {
		return "", fmt.Errorf("failed to render analysis prompt: %w", err)
	}
	return b.String(), nil
}

// BuildRewritePrompt renders the rewrite instructions for req, using text in place of req.Text
func BuildRewritePrompt(req *core.RewriteRequest, text string) (string, error) {
	data := rewriteData{
		Text:       text,
		TargetTone: req.TargetTone,
	}
	if d := req.Directive; d != nil {
		data.CurrentTone = d.CurrentTone
		data.Instructions = d.Instructions
	}

	var b strings.Builder
	if err := rewriteTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render rewrite prompt: %w", err)
	}
	return b.String(), nil
}
