package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"risk.csv":      "Word,Negative,Uncertainty\ncrisis,1,0\nunclear,0,1\n",
		"triples.txt":   "riot\tanger\t1\n",
		"matrix.txt":    "word\tanger\tdisgust\tfear\tjoy\ttrust\nrally\t0\t0\t0\t1\t0\n",
		"intensity.txt": "riot\tanger\t0.8\n",
		"article.txt":   "Protesters riot as the crisis deepens across the capital.\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cfg := "logLevel: error\n" +
		"lexicon:\n" +
		"  cacheFile: " + filepath.Join(dir, "lexicon.gob") + "\n" +
		"  riskWords: " + filepath.Join(dir, "risk.csv") + "\n" +
		"  emotionTriples: " + filepath.Join(dir, "triples.txt") + "\n" +
		"  emotionMatrix: " + filepath.Join(dir, "matrix.txt") + "\n" +
		"  intensity: " + filepath.Join(dir, "intensity.txt") + "\n"
	path := filepath.Join(dir, "newslens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestLexiconWarmCommand(t *testing.T) {
	path := writeConfig(t)

	var out bytes.Buffer
	cliApp := newApp()
	cliApp.Writer = &out

	require.NoError(t, cliApp.Run([]string{"newslens", "--config", path, "lexicon", "warm"}))
	assert.Contains(t, out.String(), "negative")
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "lexicon.gob"))
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeConfig(t)

	var out bytes.Buffer
	cliApp := newApp()
	cliApp.Writer = &out

	article := filepath.Join(filepath.Dir(path), "article.txt")
	require.NoError(t, cliApp.Run([]string{"newslens", "--config", path, "analyze", "--file", article, "--framing", "0.4", "--intensity", "0.5"}))
	assert.Contains(t, out.String(), "Political leaning:        Right")
	assert.Contains(t, out.String(), "Script:                   latin")
}

func TestAnalyzeRequiresFile(t *testing.T) {
	cliApp := newApp()
	cliApp.Writer = &bytes.Buffer{}
	cliApp.ErrWriter = &bytes.Buffer{}

	assert.Error(t, cliApp.Run([]string{"newslens", "analyze"}))
}
