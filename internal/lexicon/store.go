package lexicon

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"NewsLens/internal/domain"
)

// ErrCache marks a cache file that exists but cannot be read back.
var ErrCache = errors.New("lexicon cache unreadable")

// Paths locates the cache artifact and the four resource files.
type Paths struct {
	Cache          string
	RiskWords      string
	EmotionTriples string
	EmotionMatrix  string
	Intensity      string
}

// Store loads a Set once per Store value.
//
// When the cache file exists it is the only source of truth: resource files
// are not consulted and edits to them stay invisible until the cache file is
// deleted.
type Store struct {
	paths  Paths
	logger *slog.Logger

	once sync.Once
	set  *Set
	err  error
}

// NewStore prepares a Store; nothing is read until Load.
func NewStore(paths Paths, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{paths: paths, logger: logger}
}

// Load returns the lexicon set, reading the cache or building from resources
// and writing the cache on the first call.
func (s *Store) Load() (*Set, error) {
	s.once.Do(func() {
		s.set, s.err = s.load()
	})
	return s.set, s.err
}

func (s *Store) load() (*Set, error) {
	started := time.Now()

	if s.paths.Cache != "" {
		set, err := readCache(s.paths.Cache)
		switch {
		case err == nil:
			s.logger.Info("lexicon loaded from cache", "path", s.paths.Cache, "sizes", set.Sizes(), "elapsed", time.Since(started))
			return set, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	set, err := Build(s.paths)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lexicon built from resources", "sizes", set.Sizes(), "elapsed", time.Since(started))

	if s.paths.Cache != "" {
		if err := writeCache(s.paths.Cache, set); err != nil {
			return nil, err
		}
		s.logger.Info("lexicon cache written", "path", s.paths.Cache)
	}
	return set, nil
}

// Build parses all four resources. Any failure aborts the build.
func Build(paths Paths) (*Set, error) {
	b := newBuilder()

	steps := []struct {
		path  string
		parse func(string, *builder) error
	}{
		{paths.RiskWords, parseRiskWords},
		{paths.EmotionTriples, parseEmotions},
		{paths.EmotionMatrix, parseEmotions},
		{paths.Intensity, parseIntensity},
	}
	for _, step := range steps {
		if step.path == "" {
			return nil, fmt.Errorf("%w: resource path not configured", ErrResource)
		}
		if err := step.parse(step.path, b); err != nil {
			return nil, err
		}
	}
	return b.build(), nil
}

// snapshot is the gob-encoded form of a Set.
type snapshot struct {
	Negative    []string
	Uncertainty []string
	Emotions    map[string][]domain.Emotion
	Intensity   map[string]float64
}

func readCache(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v (delete the file to rebuild)", ErrCache, path, err)
	}

	set := &Set{
		negative:    make(map[string]struct{}, len(snap.Negative)),
		uncertainty: make(map[string]struct{}, len(snap.Uncertainty)),
		emotions:    snap.Emotions,
		intensity:   snap.Intensity,
	}
	for _, w := range snap.Negative {
		set.negative[w] = struct{}{}
	}
	for _, w := range snap.Uncertainty {
		set.uncertainty[w] = struct{}{}
	}
	if set.emotions == nil {
		set.emotions = map[string][]domain.Emotion{}
	}
	if set.intensity == nil {
		set.intensity = map[string]float64{}
	}
	return set, nil
}

func writeCache(path string, set *Set) error {
	snap := snapshot{
		Negative:    keys(set.negative),
		Uncertainty: keys(set.uncertainty),
		Emotions:    set.emotions,
		Intensity:   set.intensity,
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".lexicon-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install cache file: %w", err)
	}
	return nil
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
