package filter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/ports"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for tone analysis
type CliFilter struct {
	analyzer ports.ToneAnalyzer
	logger   *zap.Logger
	out      io.Writer
	verbose  bool
}

// NewCliFilter creates a new CLI filter writing its report to out
func NewCliFilter(analyzer ports.ToneAnalyzer, logger *zap.Logger, out io.Writer, verbose bool) *CliFilter {
	return &CliFilter{
		analyzer: analyzer,
		logger:   logger,
		out:      out,
		verbose:  verbose,
	}
}

// ParseEmail reads an RFC 822 message and extracts the fields used for analysis
func ParseEmail(r io.Reader) (*core.Email, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := decodeEncodedHeader(subject); err == nil {
		subject = decoded
	}

	var to []string
	if raw := msg.Header.Get("To"); raw != "" {
		for _, addr := range strings.Split(raw, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				to = append(to, addr)
			}
		}
	}

	return &core.Email{
		From:    msg.Header.Get("From"),
		To:      to,
		Subject: subject,
		Body:    body,
		Headers: msg.Header,
	}, nil
}

// ProcessEmail analyses an email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ToneAnalysis, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := []rune(email.Body)
		if len(preview) > 500 {
			preview = append(preview[:500], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", string(preview))
	}

	fmt.Fprintf(f.out, "\n=== Analysis ===\n")
	startTime := time.Now()
	result, err := f.analyzer.Analyze(ctx, analysisText(email))
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}

	WriteAnalysis(f.out, result, time.Since(startTime))
	return result, nil
}

// WriteAnalysis prints a human readable tone report
func WriteAnalysis(w io.Writer, a *core.ToneAnalysis, duration time.Duration) {
	fmt.Fprintf(w, "\n=== Results ===\n")
	fmt.Fprintf(w, "Tone: %s\n", a.Tone)
	fmt.Fprintf(w, "Confidence: %.4f\n", a.Confidence)
	fmt.Fprintf(w, "Sentiment: %s\n", a.Sentiment)
	fmt.Fprintf(w, "Politeness: %.4f\n", a.Politeness)
	fmt.Fprintf(w, "Formality: %.4f\n", a.Formality)
	fmt.Fprintf(w, "Urgency: %.4f\n", a.Urgency)

	e := a.Emotions
	fmt.Fprintf(w, "Emotions: joy=%.2f anger=%.2f fear=%.2f sadness=%.2f analytical=%.2f confident=%.2f tentative=%.2f\n",
		e.Joy, e.Anger, e.Fear, e.Sadness, e.Analytical, e.Confident, e.Tentative)

	if len(a.AllTones) > 0 {
		tones := append([]core.ToneScore(nil), a.AllTones...)
		sort.SliceStable(tones, func(i, j int) bool { return tones[i].Score > tones[j].Score })
		parts := make([]string, len(tones))
		for i, t := range tones {
			parts[i] = fmt.Sprintf("%s=%.2f", t.Label, t.Score)
		}
		fmt.Fprintf(w, "All tones: %s\n", strings.Join(parts, " "))
	}

	if t := a.OceanTraits; t != nil {
		fmt.Fprintf(w, "OCEAN traits: O=%.2f C=%.2f E=%.2f A=%.2f N=%.2f\n",
			t.Openness, t.Conscientiousness, t.Extraversion, t.Agreeableness, t.Neuroticism)
	}

	fmt.Fprintf(w, "Model used: %s\n", a.ModelUsed)
	if duration > 0 {
		fmt.Fprintf(w, "Processing time: %v\n", duration)
	}
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
