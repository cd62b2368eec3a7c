// Package ideology fuses external framing with lexical signals into the
// composite ideology score and its labels.
package ideology

import (
	"math"

	"NewsLens/internal/domain"
	"NewsLens/internal/scoring"
)

// LeaningThreshold is the adjusted-direction magnitude above which an article
// is labelled Left or Right.
const LeaningThreshold = 0.2

const (
	framingFloor      = 0.6
	intensityWeight   = 0.4
	economicWeight    = 5.0
	threatWeight      = 2.0
	leaningEconWeight = 0.5
)

// Inputs are the already-sanitized values the composite formula consumes.
type Inputs struct {
	FramingDirection  float64
	LanguageIntensity float64
	SentimentPolarity float64
	EconomicRisk      float64
	Profile           domain.EmotionProfile
	LexicalIntensity  float64
}

// ComputeComposite applies the multiplicative formula. The result is not
// clamped and may exceed [-1, 1].
func ComputeComposite(in Inputs) float64 {
	base := in.FramingDirection * (framingFloor + intensityWeight*in.LanguageIntensity)

	emotional := 1.0
	if in.SentimentPolarity < 0 {
		emotional = 1 + math.Abs(in.SentimentPolarity)
	}
	economic := 1 + economicWeight*in.EconomicRisk
	threat := 1 + threatWeight*in.Profile.Threat() - in.Profile.Trust

	return base * emotional * economic * threat * (1 + in.LexicalIntensity)
}

// DerivePoliticalLeaning labels the framing direction shifted by economic
// risk. Values exactly at ±0.2 are Neutral.
func DerivePoliticalLeaning(framingDirection, economicRisk float64) domain.PoliticalLeaning {
	adjusted := framingDirection + leaningEconWeight*economicRisk
	switch {
	case adjusted > LeaningThreshold:
		return domain.LeaningRight
	case adjusted < -LeaningThreshold:
		return domain.LeaningLeft
	default:
		return domain.LeaningNeutral
	}
}

// Engine scores normalized article text. It is safe for concurrent use.
type Engine struct {
	scorer *scoring.Scorer
}

// NewEngine wraps a lexical scorer built from a loaded lexicon.
func NewEngine(scorer *scoring.Scorer) *Engine {
	return &Engine{scorer: scorer}
}

// Score computes the full result for one article. For Devanagari text the
// economic-risk and sentiment signals come from English-only resources, so
// both are forced to zero before they feed the formula or the labels.
func (e *Engine) Score(framing domain.ExternalFraming, text string, script domain.Script) domain.ScoreResult {
	signals := e.scorer.Analyze(text)
	if script == domain.ScriptDevanagari {
		signals.EconomicRiskScore = 0
		signals.SentimentPolarity = 0
	}

	composite := ComputeComposite(Inputs{
		FramingDirection:  framing.FramingDirection,
		LanguageIntensity: framing.LanguageIntensity,
		SentimentPolarity: signals.SentimentPolarity,
		EconomicRisk:      signals.EconomicRiskScore,
		Profile:           signals.EmotionProfile,
		LexicalIntensity:  signals.LexicalIntensityScore,
	})

	return domain.ScoreResult{
		CompositeIdeologyScore: composite,
		PoliticalLeaning:       DerivePoliticalLeaning(framing.FramingDirection, signals.EconomicRiskScore),
		Sentiment:              scoring.DeriveSentimentLabel(signals.SentimentPolarity),
		SentimentPolarity:      signals.SentimentPolarity,
		EconomicRiskScore:      signals.EconomicRiskScore,
		EmotionProfile:         signals.EmotionProfile,
		ThreatSignal:           signals.ThreatSignal,
		LexicalIntensityScore:  signals.LexicalIntensityScore,
		Script:                 script,
	}
}
