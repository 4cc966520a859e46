package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/ports"
	"github.com/mikey/email-tone-analyzer/internal/whitelist"
	"go.uber.org/zap"
)

const analysisTimeout = 30 * time.Second

// HeaderNames are the headers the filter prepends to every message it analyses
type HeaderNames struct {
	Tone       string
	Confidence string
	Sentiment  string
	Error      string
}

// PostfixOptions configures a PostfixFilter
type PostfixOptions struct {
	ListenAddress   string
	Headers         HeaderNames
	PostfixEnabled  bool
	PostfixAddress  string
	PostfixPort     int
	TagSubjectTones []string
}

// PostfixFilter implements a Postfix content filter that tags mail with its tone
type PostfixFilter struct {
	analyzer  ports.ToneAnalyzer
	whitelist *whitelist.Checker
	logger    *zap.Logger
	opts      PostfixOptions
	tagTones  map[string]bool
	server    *smtp.Server
	listener  net.Listener
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	analyzer ports.ToneAnalyzer,
	whitelistChecker *whitelist.Checker,
	logger *zap.Logger,
	opts PostfixOptions,
) *PostfixFilter {
	tagTones := make(map[string]bool, len(opts.TagSubjectTones))
	for _, tone := range opts.TagSubjectTones {
		tagTones[strings.ToLower(strings.TrimSpace(tone))] = true
	}

	return &PostfixFilter{
		analyzer:  analyzer,
		whitelist: whitelistChecker,
		logger:    logger,
		opts:      opts,
		tagTones:  tagTones,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	listener, err := net.Listen("tcp", f.opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.opts.ListenAddress, err)
	}
	f.listener = listener

	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.opts.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", listener.Addr().String()))

	go func() {
		if err := f.server.Serve(listener); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the filter listens on, once started
func (f *PostfixFilter) Addr() net.Addr {
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyses an email without relaying it
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ToneAnalysis, error) {
	return f.analyzer.Analyze(ctx, analysisText(email))
}

// analysisText picks the text whose tone is analysed: the body, or the subject for empty bodies
func analysisText(email *core.Email) string {
	if strings.TrimSpace(email.Body) != "" {
		return email.Body
	}
	return email.Subject
}

// FilterMessage analyses a raw message and returns it with tone headers added.
// Analysis failures are recorded in the error header; the message is never dropped.
func (f *PostfixFilter) FilterMessage(ctx context.Context, sender string, recipients []string, raw []byte) ([]byte, *core.ToneAnalysis, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	if f.whitelist != nil && f.whitelist.IsWhitelisted(sender) {
		f.logger.Debug("Skipping analysis for whitelisted sender", zap.String("sender", sender))
		return raw, nil, nil
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := decodeEncodedHeader(subject); err == nil {
		subject = decoded
	}

	email := &core.Email{
		From:    sender,
		To:      recipients,
		Subject: subject,
		Body:    textContent,
		Headers: msg.Header,
	}

	analysis, analysisErr := f.ProcessEmail(ctx, email)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.String("sender", sender),
			zap.String("sender_domain", whitelist.Domain(sender)),
			zap.String("kind", core.ErrorKind(analysisErr)),
			zap.Error(analysisErr))
	}

	return f.rebuild(raw, subject, analysis, analysisErr), analysis, nil
}

// rebuild prepends the tone headers, drops any copies of them the sender supplied
// and tags the subject when the tone is configured for it.
func (f *PostfixFilter) rebuild(raw []byte, subject string, analysis *core.ToneAnalysis, analysisErr error) []byte {
	header, body := splitMessage(raw)

	drop := make(map[string]bool, 4)
	for _, name := range []string{f.opts.Headers.Tone, f.opts.Headers.Confidence, f.opts.Headers.Sentiment, f.opts.Headers.Error} {
		if name != "" {
			drop[strings.ToLower(name)] = true
		}
	}

	replace := map[string]string{}
	var out bytes.Buffer

	if analysisErr != nil {
		writeHeader(&out, f.opts.Headers.Error, core.ErrorKind(analysisErr))
	} else {
		writeHeader(&out, f.opts.Headers.Tone, analysis.Tone)
		writeHeader(&out, f.opts.Headers.Confidence, fmt.Sprintf("%.4f", analysis.Confidence))
		writeHeader(&out, f.opts.Headers.Sentiment, string(analysis.Sentiment))

		if f.tagTones[analysis.Tone] {
			prefix := subjectTag(analysis.Tone)
			if !strings.HasPrefix(subject, prefix) {
				replace["subject"] = encodeHeader(prefix + subject)
			}
		}
	}

	out.Write(rewriteHeaders(header, drop, replace))
	if !hasHeader(header, "subject") {
		if value, ok := replace["subject"]; ok {
			out.WriteString("Subject: " + value + "\r\n")
		}
	}
	out.WriteString("\r\n")
	out.Write(body)

	return out.Bytes()
}

func subjectTag(tone string) string {
	return "[" + strings.ToUpper(tone) + "] "
}

func writeHeader(w io.Writer, name, value string) {
	if name == "" {
		return
	}
	fmt.Fprintf(w, "%s: %s\r\n", name, value)
}

func hasHeader(header []byte, name string) bool {
	for _, line := range splitLines(header) {
		if strings.EqualFold(headerName(line), name) {
			return true
		}
	}
	return false
}

// sendToPostfix sends the processed email back to Postfix on the configured port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.opts.PostfixAddress, fmt.Sprint(f.opts.PostfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}

	if !recipientOK {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The message has already been accepted
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyses the message and relays it to Postfix
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	modified, analysis, err := s.filter.FilterMessage(ctx, s.sender, s.recipients, rawData)
	if err != nil {
		s.filter.logger.Error("Failed to filter message", zap.String("sender", s.sender), zap.Error(err))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}

	if s.filter.opts.PostfixEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, modified); err != nil {
			s.filter.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return &smtp.SMTPError{
				Code:         451,
				EnhancedCode: smtp.EnhancedCode{4, 4, 1},
				Message:      "Temporary failure relaying message",
			}
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, message was analysed and discarded")
	}

	fields := []zap.Field{
		zap.String("from", s.sender),
		zap.String("sender_domain", whitelist.Domain(s.sender)),
	}
	if analysis != nil {
		fields = append(fields,
			zap.String("tone", analysis.Tone),
			zap.Float64("confidence", analysis.Confidence),
			zap.String("model", analysis.ModelUsed))
	}
	s.filter.logger.Info("Processed email", fields...)

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
