package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TruncationMarker is appended to text cut down to a size limit
const TruncationMarker = "\n[... Content truncated due to size limits ...]"

// TextProcessor prepares email text before it is sent to a remote model
type TextProcessor struct {
	maxSize int
	logger  *zap.Logger
}

// NewTextProcessor creates a new TextProcessor. A maxSize of zero disables truncation.
func NewTextProcessor(maxSize int, logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		maxSize: maxSize,
		logger:  logger,
	}
}

// MaxSize returns the byte limit applied by Prepare
func (tp *TextProcessor) MaxSize() int {
	return tp.maxSize
}

// TruncateText cuts text to at most maxSize bytes without splitting a rune
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	cut := maxSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	truncated := text[:cut]

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + TruncationMarker
}

// SanitizeUTF8 drops invalid UTF-8 bytes and NUL characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) && !strings.ContainsRune(text, 0) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if (r != utf8.RuneError || size > 1) && r != 0 {
			b.WriteRune(r)
		}
		i += size
	}
	sanitized := b.String()

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText sanitizes then truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxSize)
}

// Prepare applies ProcessText with the configured limit
func (tp *TextProcessor) Prepare(text string) string {
	return tp.ProcessText(text, tp.maxSize)
}
