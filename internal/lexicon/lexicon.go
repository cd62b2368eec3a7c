// Package lexicon loads the word-indexed resources used by the lexical scorer.
package lexicon

import (
	"sort"
	"strings"

	"NewsLens/internal/domain"
)

// Set holds the four parsed lexicons. It is immutable once built and safe to
// share across goroutines.
type Set struct {
	negative    map[string]struct{}
	uncertainty map[string]struct{}
	emotions    map[string][]domain.Emotion
	intensity   map[string]float64
}

// IsNegative reports whether word is in the negative-finance word list.
func (s *Set) IsNegative(word string) bool {
	_, ok := s.negative[fold(word)]
	return ok
}

// IsUncertain reports whether word is in the uncertainty word list.
func (s *Set) IsUncertain(word string) bool {
	_, ok := s.uncertainty[fold(word)]
	return ok
}

// Emotions returns the emotion tags of word. The slice must not be modified.
func (s *Set) Emotions(word string) []domain.Emotion {
	return s.emotions[fold(word)]
}

// Intensity returns the intensity score of word and whether it is listed.
func (s *Set) Intensity(word string) (float64, bool) {
	v, ok := s.intensity[fold(word)]
	return v, ok
}

// Sizes reports how many entries each lexicon holds.
func (s *Set) Sizes() map[string]int {
	return map[string]int{
		"negative":    len(s.negative),
		"uncertainty": len(s.uncertainty),
		"emotions":    len(s.emotions),
		"intensity":   len(s.intensity),
	}
}

func fold(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// builder accumulates entries while resources are parsed.
type builder struct {
	negative    map[string]struct{}
	uncertainty map[string]struct{}
	emotions    map[string]map[domain.Emotion]struct{}
	intensity   map[string]float64
}

func newBuilder() *builder {
	return &builder{
		negative:    map[string]struct{}{},
		uncertainty: map[string]struct{}{},
		emotions:    map[string]map[domain.Emotion]struct{}{},
		intensity:   map[string]float64{},
	}
}

func (b *builder) addEmotion(word string, emotion domain.Emotion) {
	tags, ok := b.emotions[word]
	if !ok {
		tags = map[domain.Emotion]struct{}{}
		b.emotions[word] = tags
	}
	tags[emotion] = struct{}{}
}

// addIntensity keeps the highest score seen for a word across emotions.
func (b *builder) addIntensity(word string, score float64) {
	if prev, ok := b.intensity[word]; !ok || score > prev {
		b.intensity[word] = score
	}
}

func (b *builder) build() *Set {
	emotions := make(map[string][]domain.Emotion, len(b.emotions))
	for word, tags := range b.emotions {
		list := make([]domain.Emotion, 0, len(tags))
		for tag := range tags {
			list = append(list, tag)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		emotions[word] = list
	}
	return &Set{
		negative:    b.negative,
		uncertainty: b.uncertainty,
		emotions:    emotions,
		intensity:   b.intensity,
	}
}

// Entries lists lexicon contents for building a Set in memory.
type Entries struct {
	Negative    []string
	Uncertainty []string
	Emotions    map[string][]domain.Emotion
	Intensity   map[string]float64
}

// New builds a Set from in-memory entries, applying the same case folding as
// the resource loader.
func New(e Entries) *Set {
	b := newBuilder()
	for _, w := range e.Negative {
		b.negative[fold(w)] = struct{}{}
	}
	for _, w := range e.Uncertainty {
		b.uncertainty[fold(w)] = struct{}{}
	}
	for w, tags := range e.Emotions {
		for _, tag := range tags {
			b.addEmotion(fold(w), domain.Emotion(fold(string(tag))))
		}
	}
	for w, v := range e.Intensity {
		b.addIntensity(fold(w), v)
	}
	return b.build()
}
