// Package scoring computes lexicon-based signals for normalized article text.
package scoring

import (
	"math"

	"github.com/jonreiter/govader"

	"NewsLens/internal/domain"
	"NewsLens/internal/lexicon"
	"NewsLens/internal/textnorm"
)

// Sentiment label thresholds on the compound polarity score.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// uncertaintyWeight scales uncertainty words relative to negative words.
const uncertaintyWeight = 1.5

// Signals bundles every lexical score for one text.
type Signals struct {
	SentimentPolarity     float64
	EconomicRiskScore     float64
	EmotionProfile        domain.EmotionProfile
	LexicalIntensityScore float64
	ThreatSignal          float64
}

// Scorer evaluates text against a lexicon set. It holds no mutable state and
// may be shared across goroutines.
type Scorer struct {
	lex   *lexicon.Set
	vader *govader.SentimentIntensityAnalyzer
}

// NewScorer binds a scorer to a loaded lexicon set.
func NewScorer(lex *lexicon.Set) *Scorer {
	return &Scorer{
		lex:   lex,
		vader: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Analyze computes all signals from a single tokenization.
func (s *Scorer) Analyze(text string) Signals {
	tokens := textnorm.Tokenize(text)
	profile := s.emotionProfile(tokens)
	return Signals{
		SentimentPolarity:     s.SentimentPolarity(text),
		EconomicRiskScore:     s.economicRisk(tokens),
		EmotionProfile:        profile,
		LexicalIntensityScore: s.lexicalIntensity(tokens),
		ThreatSignal:          profile.Threat(),
	}
}

// SentimentPolarity returns the VADER compound score, in [-1, 1].
func (s *Scorer) SentimentPolarity(text string) float64 {
	if text == "" {
		return 0
	}
	compound := s.vader.PolarityScores(text).Compound
	if math.IsNaN(compound) {
		return 0
	}
	return math.Max(-1, math.Min(1, compound))
}

// DeriveSentimentLabel thresholds a compound score at ±0.05.
func DeriveSentimentLabel(score float64) domain.SentimentLabel {
	switch {
	case score >= PositiveThreshold:
		return domain.SentimentPositive
	case score <= NegativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// EconomicRiskScore is (negative + 1.5 × uncertainty) words per token.
func (s *Scorer) EconomicRiskScore(text string) float64 {
	return s.economicRisk(textnorm.Tokenize(text))
}

func (s *Scorer) economicRisk(tokens []string) float64 {
	var negative, uncertain int
	for _, tok := range tokens {
		if s.lex.IsNegative(tok) {
			negative++
		}
		if s.lex.IsUncertain(tok) {
			uncertain++
		}
	}
	total := len(tokens)
	if total == 0 {
		total = 1
	}
	return (float64(negative) + uncertaintyWeight*float64(uncertain)) / float64(total)
}

// EmotionProfile is the relative mixture of tracked emotions, normalized by
// the number of emotion hits rather than by document length.
func (s *Scorer) EmotionProfile(text string) domain.EmotionProfile {
	return s.emotionProfile(textnorm.Tokenize(text))
}

func (s *Scorer) emotionProfile(tokens []string) domain.EmotionProfile {
	counts := map[domain.Emotion]float64{}
	for _, tok := range tokens {
		for _, tag := range s.lex.Emotions(tok) {
			counts[tag]++
		}
	}

	var total float64
	for _, emotion := range domain.TrackedEmotions {
		total += counts[emotion]
	}
	if total == 0 {
		return domain.EmotionProfile{}
	}

	return domain.EmotionProfile{
		Anger:   counts[domain.EmotionAnger] / total,
		Fear:    counts[domain.EmotionFear] / total,
		Trust:   counts[domain.EmotionTrust] / total,
		Joy:     counts[domain.EmotionJoy] / total,
		Disgust: counts[domain.EmotionDisgust] / total,
	}
}

// LexicalIntensityScore is the mean intensity per token, counting unlisted
// tokens as 0.
func (s *Scorer) LexicalIntensityScore(text string) float64 {
	return s.lexicalIntensity(textnorm.Tokenize(text))
}

func (s *Scorer) lexicalIntensity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, tok := range tokens {
		if v, ok := s.lex.Intensity(tok); ok {
			sum += v
		}
	}
	return sum / float64(len(tokens))
}

// ThreatSignal is anger + fear + disgust of the emotion profile.
func (s *Scorer) ThreatSignal(text string) float64 {
	return s.EmotionProfile(text).Threat()
}
