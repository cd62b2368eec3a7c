package domain

// Emotion is one of the tracked emotion categories.
type Emotion string

const (
	EmotionAnger   Emotion = "anger"
	EmotionFear    Emotion = "fear"
	EmotionTrust   Emotion = "trust"
	EmotionJoy     Emotion = "joy"
	EmotionDisgust Emotion = "disgust"
)

// TrackedEmotions lists the emotions that make up an EmotionProfile, in a fixed order.
var TrackedEmotions = []Emotion{EmotionAnger, EmotionFear, EmotionTrust, EmotionJoy, EmotionDisgust}

// EmotionProfile is the relative mixture of tracked emotions in a text.
// Components sum to 1 when any tracked emotion word occurs, else all are 0.
type EmotionProfile struct {
	Anger   float64
	Fear    float64
	Trust   float64
	Joy     float64
	Disgust float64
}

// Threat is the sum of the anger, fear and disgust components.
func (p EmotionProfile) Threat() float64 {
	return p.Anger + p.Fear + p.Disgust
}

// Sum adds every component.
func (p EmotionProfile) Sum() float64 {
	return p.Anger + p.Fear + p.Trust + p.Joy + p.Disgust
}

// ScoreResult is the engine output for one article.
type ScoreResult struct {
	CompositeIdeologyScore float64
	PoliticalLeaning       PoliticalLeaning
	Sentiment              SentimentLabel
	SentimentPolarity      float64
	EconomicRiskScore      float64
	EmotionProfile         EmotionProfile
	ThreatSignal           float64
	LexicalIntensityScore  float64
	Script                 Script
}

// Canonical field names written back to the record store.
const (
	FieldCompositeIdeologyScore = "composite_ideology_score"
	FieldPoliticalLeaning       = "political_leaning"
	FieldSentiment              = "sentiment"
	FieldTopic                  = "topic"
	FieldBiasExplanation        = "bias_explanation"
	FieldBehaviouralAnalysis    = "behavioural_analysis"
	FieldProcessed              = "processed"
	FieldFramingDirection       = "framing_direction"
	FieldLanguageIntensity      = "language_intensity"
	FieldSensationalismScore    = "sensationalism_score"
	FieldThreatSignal           = "threat_signal"
	FieldLexicalIntensityScore  = "lexical_intensity_score"
	FieldSentimentPolarity      = "sentiment_polarity"
	FieldEconomicRiskScore      = "economic_risk_score"
	FieldScript                 = "script"
	FieldDetectedLanguage       = "detected_language"
)

// Fields is a patch of record fields keyed by canonical name.
type Fields map[string]any

// ResultFields builds the complete patch for a scored article.
func ResultFields(framing ExternalFraming, result ScoreResult) Fields {
	return Fields{
		FieldCompositeIdeologyScore: result.CompositeIdeologyScore,
		FieldPoliticalLeaning:       string(result.PoliticalLeaning),
		FieldSentiment:              string(result.Sentiment),
		FieldTopic:                  framing.Topic,
		FieldBiasExplanation:        framing.BiasExplanation.String(),
		FieldBehaviouralAnalysis:    framing.BehaviouralAnalysis.String(),
		FieldProcessed:              true,
		FieldFramingDirection:       framing.FramingDirection,
		FieldLanguageIntensity:      framing.LanguageIntensity,
		FieldSensationalismScore:    framing.SensationalismScore,
		FieldThreatSignal:           result.ThreatSignal,
		FieldLexicalIntensityScore:  result.LexicalIntensityScore,
		FieldSentimentPolarity:      result.SentimentPolarity,
		FieldEconomicRiskScore:      result.EconomicRiskScore,
		FieldScript:                 string(result.Script),
	}
}
