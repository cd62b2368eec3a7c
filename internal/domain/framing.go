package domain

import (
	"fmt"
	"math"
	"strings"
)

// ExternalFraming is the classifier's view of an article. Values arrive from
// a model and are validated before use.
type ExternalFraming struct {
	FramingDirection    float64
	LanguageIntensity   float64
	SensationalismScore float64
	Topic               string
	BiasExplanation     FramingRationale
	BehaviouralAnalysis BehaviouralRationale
}

// FramingRationale explains the framing direction.
type FramingRationale struct {
	Summary        string   `json:"summary"`
	LoadedPhrases  []string `json:"loaded_phrases"`
	Perspective    string   `json:"perspective"`
	OmittedContext string   `json:"omitted_context"`
}

// BehaviouralRationale explains how the article tries to influence readers.
type BehaviouralRationale struct {
	PersuasionTechniques []string `json:"persuasion_techniques"`
	EmotionalAppeal      string   `json:"emotional_appeal"`
	TargetAudience       string   `json:"target_audience"`
}

// Sanitize rejects non-finite scores and clamps finite ones into their
// documented ranges. It reports which fields were clamped.
func (f ExternalFraming) Sanitize() (ExternalFraming, []string, error) {
	checks := []struct {
		name     string
		value    *float64
		min, max float64
	}{
		{"framing_direction", &f.FramingDirection, -1, 1},
		{"language_intensity", &f.LanguageIntensity, 0, 1},
		{"sensationalism_score", &f.SensationalismScore, 0, 1},
	}

	var clamped []string
	for _, c := range checks {
		v := *c.value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ExternalFraming{}, nil, fmt.Errorf("%w: %s is not finite", ErrInvalidFraming, c.name)
		}
		if v < c.min || v > c.max {
			*c.value = math.Max(c.min, math.Min(c.max, v))
			clamped = append(clamped, c.name)
		}
	}
	f.Topic = strings.TrimSpace(f.Topic)
	return f, clamped, nil
}

// String renders the framing rationale as the text stored in bias_explanation.
func (r FramingRationale) String() string {
	var lines []string
	if r.Summary != "" {
		lines = append(lines, "Framing: "+r.Summary)
	}
	if len(r.LoadedPhrases) > 0 {
		lines = append(lines, "Loaded phrases: "+strings.Join(r.LoadedPhrases, ", "))
	}
	if r.Perspective != "" {
		lines = append(lines, "Perspective: "+r.Perspective)
	}
	if r.OmittedContext != "" {
		lines = append(lines, "Omitted context: "+r.OmittedContext)
	}
	return strings.Join(lines, "\n")
}

// String renders the behavioural rationale as the text stored in behavioural_analysis.
func (r BehaviouralRationale) String() string {
	var lines []string
	if len(r.PersuasionTechniques) > 0 {
		lines = append(lines, "Persuasion techniques: "+strings.Join(r.PersuasionTechniques, ", "))
	}
	if r.EmotionalAppeal != "" {
		lines = append(lines, "Emotional appeal: "+r.EmotionalAppeal)
	}
	if r.TargetAudience != "" {
		lines = append(lines, "Target audience: "+r.TargetAudience)
	}
	return strings.Join(lines, "\n")
}
