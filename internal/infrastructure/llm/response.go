package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"NewsLens/internal/domain"
)

type rawFraming struct {
	FramingDirection    *float64        `json:"framing_direction"`
	LanguageIntensity   *float64        `json:"language_intensity"`
	SensationalismScore *float64        `json:"sensationalism_score"`
	Topic               string          `json:"topic"`
	BiasExplanation     json.RawMessage `json:"bias_explanation"`
	BehaviouralAnalysis json.RawMessage `json:"behavioural_analysis"`
}

// ParseFraming decodes a model reply into ExternalFraming. The reply may be
// wrapped in a Markdown code fence. Absent numeric keys yield
// ErrMissingFramingField; anything undecodable yields ErrInvalidFraming.
// Range checks are left to ExternalFraming.Sanitize.
func ParseFraming(reply string) (domain.ExternalFraming, error) {
	body := stripFence(reply)
	if body == "" {
		return domain.ExternalFraming{}, fmt.Errorf("%w: empty reply", domain.ErrInvalidFraming)
	}

	var raw rawFraming
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return domain.ExternalFraming{}, fmt.Errorf("%w: %v", domain.ErrInvalidFraming, err)
	}

	var missing []string
	if raw.FramingDirection == nil {
		missing = append(missing, "framing_direction")
	}
	if raw.LanguageIntensity == nil {
		missing = append(missing, "language_intensity")
	}
	if raw.SensationalismScore == nil {
		missing = append(missing, "sensationalism_score")
	}
	if len(missing) > 0 {
		return domain.ExternalFraming{}, fmt.Errorf("%w: %s", domain.ErrMissingFramingField, strings.Join(missing, ", "))
	}

	framing := domain.ExternalFraming{
		FramingDirection:    *raw.FramingDirection,
		LanguageIntensity:   *raw.LanguageIntensity,
		SensationalismScore: *raw.SensationalismScore,
		Topic:               strings.TrimSpace(raw.Topic),
	}

	if err := decodeRationale(raw.BiasExplanation, &framing.BiasExplanation, func(s string) {
		framing.BiasExplanation.Summary = s
	}); err != nil {
		return domain.ExternalFraming{}, fmt.Errorf("%w: bias_explanation: %v", domain.ErrInvalidFraming, err)
	}
	if err := decodeRationale(raw.BehaviouralAnalysis, &framing.BehaviouralAnalysis, func(s string) {
		framing.BehaviouralAnalysis.EmotionalAppeal = s
	}); err != nil {
		return domain.ExternalFraming{}, fmt.Errorf("%w: behavioural_analysis: %v", domain.ErrInvalidFraming, err)
	}

	return framing, nil
}

// decodeRationale accepts either the structured object or a bare string,
// which some models return despite the prompt.
func decodeRationale(msg json.RawMessage, target any, fromString func(string)) error {
	trimmed := strings.TrimSpace(string(msg))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return err
		}
		fromString(strings.TrimSpace(s))
		return nil
	}
	return json.Unmarshal(msg, target)
}

func stripFence(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
