package ports

import (
	"context"

	"github.com/mikey/email-tone-analyzer/internal/core"
)

// ToneAnalyzer is the part of the tone service the mail filters depend on
type ToneAnalyzer interface {
	// Analyze returns the tone profile of text
	Analyze(ctx context.Context, text string) (*core.ToneAnalysis, error)
}

// EmailFilter defines the interface for email filtering
type EmailFilter interface {
	// ProcessEmail analyses an email and returns its tone profile
	ProcessEmail(ctx context.Context, email *core.Email) (*core.ToneAnalysis, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
