package ideology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsLens/internal/domain"
	"NewsLens/internal/lexicon"
	"NewsLens/internal/scoring"
)

func newTestEngine(entries lexicon.Entries) *Engine {
	return NewEngine(scoring.NewScorer(lexicon.New(entries)))
}

func TestComputeCompositeZeroFraming(t *testing.T) {
	t.Parallel()

	inputs := []Inputs{
		{},
		{LanguageIntensity: 1, SentimentPolarity: -0.9, EconomicRisk: 0.4, LexicalIntensity: 0.7,
			Profile: domain.EmotionProfile{Anger: 0.5, Fear: 0.5}},
		{LanguageIntensity: 0.3, SentimentPolarity: 0.8, Profile: domain.EmotionProfile{Trust: 1}},
	}
	for _, in := range inputs {
		assert.Zero(t, ComputeComposite(in))
	}
}

func TestComputeCompositeFormula(t *testing.T) {
	t.Parallel()

	in := Inputs{
		FramingDirection:  -0.5,
		LanguageIntensity: 0.5,
		SentimentPolarity: -0.4,
		EconomicRisk:      0.1,
		Profile:           domain.EmotionProfile{Anger: 0.25, Fear: 0.25, Trust: 0.5},
		LexicalIntensity:  0.2,
	}
	// base -0.4, emotional 1.4, economic 1.5, threat 1+1-0.5 = 1.5, lexical 1.2
	want := -0.4 * 1.4 * 1.5 * 1.5 * 1.2
	assert.InDelta(t, want, ComputeComposite(in), 1e-12)

	in.SentimentPolarity = 0.9
	assert.InDelta(t, -0.4*1.5*1.5*1.2, ComputeComposite(in), 1e-12, "positive sentiment does not amplify")
}

func TestComputeCompositeIsUnclamped(t *testing.T) {
	t.Parallel()

	got := ComputeComposite(Inputs{
		FramingDirection:  1,
		LanguageIntensity: 1,
		SentimentPolarity: -1,
		EconomicRisk:      0.5,
		Profile:           domain.EmotionProfile{Anger: 1},
		LexicalIntensity:  1,
	})
	assert.InDelta(t, 1*2*3.5*3*2, got, 1e-12)
}

func TestDerivePoliticalLeaning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		framing float64
		econ    float64
		want    domain.PoliticalLeaning
	}{
		{"right", 0.5, 0, domain.LeaningRight},
		{"left", -0.5, 0, domain.LeaningLeft},
		{"upper boundary is neutral", 0.2, 0, domain.LeaningNeutral},
		{"lower boundary is neutral", -0.2, 0, domain.LeaningNeutral},
		{"economic risk pushes right", 0.1, 0.4, domain.LeaningRight},
		{"economic risk pulls left framing to neutral", -0.3, 0.4, domain.LeaningNeutral},
		{"zero", 0, 0, domain.LeaningNeutral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DerivePoliticalLeaning(tc.framing, tc.econ))
		})
	}
}

func TestEngineScoreNeutralText(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(lexicon.Entries{})
	framing := domain.ExternalFraming{FramingDirection: 0.5, LanguageIntensity: 1.0}

	got := engine.Score(framing, "Officials met on Tuesday in the capital city.", domain.ScriptLatin)

	assert.InDelta(t, 0.5, got.CompositeIdeologyScore, 1e-9)
	assert.Equal(t, domain.LeaningRight, got.PoliticalLeaning)
	assert.Equal(t, domain.ScriptLatin, got.Script)
	assert.Zero(t, got.EconomicRiskScore)
	assert.Zero(t, got.ThreatSignal)
}

func TestEngineScoreDevanagariIgnoresEnglishSignals(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(lexicon.Entries{
		Negative:    []string{"crisis", "loss"},
		Uncertainty: []string{"uncertain"},
	})
	framing := domain.ExternalFraming{FramingDirection: 0.1, LanguageIntensity: 0.5}
	text := "सरकार संकट crisis loss uncertain terrible horrible disaster"

	latin := engine.Score(framing, text, domain.ScriptLatin)
	assert.Positive(t, latin.EconomicRiskScore)
	assert.Equal(t, domain.SentimentNegative, latin.Sentiment)
	assert.Equal(t, domain.LeaningRight, latin.PoliticalLeaning, "econ shifts 0.1 past the threshold")

	hindi := engine.Score(framing, text, domain.ScriptDevanagari)
	assert.Zero(t, hindi.EconomicRiskScore)
	assert.Zero(t, hindi.SentimentPolarity)
	assert.Equal(t, domain.SentimentNeutral, hindi.Sentiment)
	assert.Equal(t, domain.LeaningNeutral, hindi.PoliticalLeaning)
	assert.InDelta(t, 0.1*(0.6+0.4*0.5), hindi.CompositeIdeologyScore, 1e-9)
	assert.Equal(t, domain.ScriptDevanagari, hindi.Script)
}

func TestEngineZeroFramingGivesZeroComposite(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(lexicon.Entries{
		Negative:  []string{"collapse"},
		Emotions:  map[string][]domain.Emotion{"rage": {domain.EmotionAnger}},
		Intensity: map[string]float64{"rage": 0.9},
	})
	got := engine.Score(domain.ExternalFraming{LanguageIntensity: 1}, "Rage over market collapse turns violent.", domain.ScriptLatin)
	assert.Zero(t, got.CompositeIdeologyScore)
}
