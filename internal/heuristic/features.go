// Package heuristic implements the local, keyword driven tone analyzer.
package heuristic

import (
	"strings"
	"unicode/utf8"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"golang.org/x/text/cases"
)

var (
	courtesyKeywords  = []string{"please"}
	gratitudeKeywords = []string{"thank"}
	urgencyKeywords   = []string{"urgent", "asap"}
	apologyKeywords   = []string{"sorry", "apologize"}
)

// ComputeFeatures extracts the punctuation, keyword and length signals of text
func ComputeFeatures(text string) (core.FeatureSet, error) {
	if err := core.ValidateText(text); err != nil {
		return core.FeatureSet{}, err
	}

	folded := cases.Fold().String(text)

	return core.FeatureSet{
		HasExclamation: strings.Contains(text, "!"),
		HasQuestion:    strings.Contains(text, "?"),
		HasPlease:      containsAny(folded, courtesyKeywords),
		HasThank:       containsAny(folded, gratitudeKeywords),
		HasUrgent:      containsAny(folded, urgencyKeywords),
		HasApology:     containsAny(folded, apologyKeywords),
		Length:         utf8.RuneCountInString(text),
	}, nil
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
