package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a media analyst returning strict JSON.
const SystemPrompt = "You are a media-framing analyst. You read news articles and describe how they are framed, " +
	"not whether they are true. Reply with a single JSON object and nothing else."

const userPromptTemplate = `Analyze the framing of the news article below and return a JSON object with exactly these keys:

"framing_direction": number from -1 (strongly left-leaning framing) to 1 (strongly right-leaning framing), 0 when balanced
"language_intensity": number from 0 (neutral wording) to 1 (highly charged wording)
"sensationalism_score": number from 0 (sober) to 1 (sensationalist)
"topic": main topic in 1-3 words
"bias_explanation": {"summary": one sentence, "loaded_phrases": [phrases quoted from the article], "perspective": whose viewpoint dominates, "omitted_context": what a balanced report would add}
"behavioural_analysis": {"persuasion_techniques": [techniques], "emotional_appeal": which emotion the article targets, "target_audience": who the article is written for}

Headline: %s

Article:
%s`

// BuildPrompt renders the user message for one article.
func BuildPrompt(headline, text string) string {
	return fmt.Sprintf(userPromptTemplate, strings.TrimSpace(headline), strings.TrimSpace(text))
}
