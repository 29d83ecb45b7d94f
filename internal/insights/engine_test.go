package insights

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kaiwa/internal/config"
)

const sampleIndex = `---
tags:
  - help
---

1. Python_GPU_profiling_10_01_2025_09_00_00.txt
2. Sourdough_bread_basics_01_03_2025_11_00_00.txt
not an index line
3. Python_decorators_explained_03_02_2025_14_00_00.txt
`

func testConfig() *config.Config {
	cfg := &config.Config{
		Concepts: []config.ConceptConfig{
			{Name: "Python", Pattern: "Python|Script"},
			{Name: "GPU", Pattern: "GPU|Graphics"},
		},
	}
	cfg.Analysis.MinSimilarity = 0.3
	cfg.Analysis.MinTermOccurrences = 3
	cfg.Analysis.SuggestionThreshold = 5
	return cfg
}

func TestEngine_Analyze(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "conversation_titles.txt")
	if err := os.WriteFile(indexPath, []byte(sampleIndex), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(indexPath, testConfig(), nil)
	result, err := e.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Records) != 3 {
		t.Errorf("records = %d, want 3", len(result.Records))
	}
	if got := len(result.Mentions["Python"]); got != 2 {
		t.Errorf("Python mentions = %d, want 2", got)
	}
	if got := len(result.Orphans); got != 1 {
		t.Errorf("orphans = %d, want 1", got)
	}

	report := result.Report()
	if report.Conversations != 3 || report.Orphaned != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestEngine_Analyze_missingIndex(t *testing.T) {
	e := NewEngine(filepath.Join(t.TempDir(), "missing.txt"), testConfig(), nil)
	if _, err := e.Analyze(context.Background()); err == nil {
		t.Error("expected error for missing titles index")
	}
}

func TestNewEngine_conceptsFileTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "conversation_titles.txt")
	if err := os.WriteFile(indexPath, []byte(sampleIndex), 0644); err != nil {
		t.Fatal(err)
	}
	conceptsPath := filepath.Join(dir, "concepts.txt")
	defs := "# tracked concepts\nBaking: sourdough|bread\n"
	if err := os.WriteFile(conceptsPath, []byte(defs), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.ConceptsFile = conceptsPath
	e := NewEngine(indexPath, cfg, nil)
	result, err := e.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.ConceptNames) != 1 || result.ConceptNames[0] != "Baking" {
		t.Fatalf("concept names = %v, want [Baking]", result.ConceptNames)
	}
	if got := len(result.Mentions["Baking"]); got != 1 {
		t.Errorf("Baking mentions = %d, want 1", got)
	}
}

func TestNewEngine_missingConceptsFileFallsBackToConfigured(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "conversation_titles.txt")
	if err := os.WriteFile(indexPath, []byte(sampleIndex), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.ConceptsFile = filepath.Join(t.TempDir(), "missing-concepts.txt")
	e := NewEngine(indexPath, cfg, nil)
	result, err := e.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := len(result.Mentions["Python"]); got != 2 {
		t.Errorf("Python mentions = %d, want 2", got)
	}
}

func TestNewEngine_dropsInvalidPatterns(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "conversation_titles.txt")
	if err := os.WriteFile(indexPath, []byte(sampleIndex), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Concepts = append(cfg.Concepts, config.ConceptConfig{Name: "Broken", Pattern: "("})
	e := NewEngine(indexPath, cfg, nil)
	result, err := e.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, name := range result.ConceptNames {
		if name == "Broken" {
			t.Error("invalid concept should have been dropped")
		}
	}
}
