// Package langdetect reports the language of article text for diagnostics.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"NewsLens/internal/ports"
)

// Detector wraps a lingua detector restricted to the newsroom languages.
type Detector struct {
	detector lingua.LanguageDetector
}

var _ ports.LanguageDetector = (*Detector)(nil)

// New builds a detector for English and Hindi.
func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Hindi).
			WithMinimumRelativeDistance(0.1).
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code, or false when the text is
// too ambiguous to call.
func (d *Detector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
