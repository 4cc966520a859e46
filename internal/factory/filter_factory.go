package factory

import (
	"io"

	"github.com/mikey/email-tone-analyzer/internal/adapters/filter"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/ports"
	"github.com/mikey/email-tone-analyzer/internal/whitelist"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	analyzer ports.ToneAnalyzer
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, analyzer ports.ToneAnalyzer) *FilterFactory {
	return &FilterFactory{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
	}
}

// CreatePostfixFilter creates the SMTP content filter
func (f *FilterFactory) CreatePostfixFilter() *filter.PostfixFilter {
	smtpCfg := f.cfg.GetSMTP()

	return filter.NewPostfixFilter(
		f.analyzer,
		whitelist.NewChecker(smtpCfg.WhitelistedDomains, f.logger),
		f.logger,
		filter.PostfixOptions{
			ListenAddress: smtpCfg.ListenAddress,
			Headers: filter.HeaderNames{
				Tone:       smtpCfg.Headers.Tone,
				Confidence: smtpCfg.Headers.Confidence,
				Sentiment:  smtpCfg.Headers.Sentiment,
				Error:      smtpCfg.Headers.Error,
			},
			PostfixEnabled:  smtpCfg.Postfix.Enabled,
			PostfixAddress:  smtpCfg.Postfix.Address,
			PostfixPort:     smtpCfg.Postfix.Port,
			TagSubjectTones: smtpCfg.TagSubjectTones,
		},
	)
}

// CreateCliFilter creates the command-line filter writing its report to out
func (f *FilterFactory) CreateCliFilter(out io.Writer, verbose bool) *filter.CliFilter {
	return filter.NewCliFilter(f.analyzer, f.logger, out, verbose)
}
