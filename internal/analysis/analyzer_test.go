package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/concepts"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/models"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		MinSimilarity:       0.3,
		MinTermOccurrences:  3,
		SuggestionThreshold: 5,
	}
}

func mustConcept(t *testing.T, name, pattern string) concepts.Concept {
	t.Helper()
	c, err := concepts.New(name, pattern)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestAnalyzer_specScenario(t *testing.T) {
	ai := mustConcept(t, "AI", `\bAI\b|GPT`)
	records := []*models.ConversationRecord{
		rec(1, "GPT debugging session", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		rec(2, "Trip to Paris", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	a := NewAnalyzer([]concepts.Concept{ai}, testAnalysisConfig(), nil)
	result := a.Run(records)

	if got := result.Mentions["AI"]; len(got) != 1 || got[0].ID != 1 {
		t.Errorf("AI mentions = %v", got)
	}
	if len(result.Orphans) != 1 || result.Orphans[0].ID != 2 {
		t.Errorf("orphans = %v", result.Orphans)
	}
	stats := result.Evolution["AI"]
	if stats == nil || stats.FirstMention != stats.LastMention || stats.FirstMention.ID != 1 {
		t.Errorf("evolution = %+v", stats)
	}
	if stats.MonthlyTrend["2024-03"] != 1 {
		t.Errorf("trend = %v", stats.MonthlyTrend)
	}

	report := result.Report()
	if report.Conversations != 2 || report.Orphaned != 1 || report.ConceptCounts["AI"] != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.RunID == "" {
		t.Error("report should carry a run id")
	}
}

func TestAnalyzer_orphansPartitionRecords(t *testing.T) {
	ai := mustConcept(t, "AI", `GPT`)
	records := []*models.ConversationRecord{
		rec(1, "GPT session", day(1)),
		rec(2, "Trip planning", day(2)),
		rec(3, "GPT follow-up", day(3)),
		rec(4, "Groceries", day(4)),
	}
	result := NewAnalyzer([]concepts.Concept{ai}, testAnalysisConfig(), nil).Run(records)

	matched := result.Mentions.MatchedIDs()
	orphanIDs := make(map[int]struct{})
	for _, o := range result.Orphans {
		if _, ok := matched[o.ID]; ok {
			t.Errorf("record %d is both matched and orphaned", o.ID)
		}
		orphanIDs[o.ID] = struct{}{}
	}
	if len(matched)+len(orphanIDs) != len(records) {
		t.Errorf("matched (%d) + orphans (%d) should cover all %d records",
			len(matched), len(orphanIDs), len(records))
	}
}

func TestAnalyzer_idempotent(t *testing.T) {
	cs := []concepts.Concept{
		mustConcept(t, "AI", `\bAI\b|GPT`),
		mustConcept(t, "Python", `Python`),
	}
	records := []*models.ConversationRecord{
		rec(1, "GPT and Python tips", day(1)),
		rec(2, "Python Python Python Flask", day(2)),
		rec(3, "Trip to Paris", day(3)),
	}
	a := NewAnalyzer(cs, testAnalysisConfig(), nil)
	first := a.Run(records)
	second := a.Run(records)

	if !reflect.DeepEqual(first.Mentions, second.Mentions) {
		t.Error("mention sets differ between identical runs")
	}
	if !reflect.DeepEqual(first.Evolution, second.Evolution) {
		t.Error("evolution stats differ between identical runs")
	}
	if !reflect.DeepEqual(first.Related, second.Related) {
		t.Error("relatedness edges differ between identical runs")
	}
	if !reflect.DeepEqual(first.Terms, second.Terms) {
		t.Error("term tables differ between identical runs")
	}
}

func TestNewAnalyzer_emptyConceptsFallsBackToDefaults(t *testing.T) {
	a := NewAnalyzer(nil, testAnalysisConfig(), nil)
	result := a.Run(nil)
	if len(result.ConceptNames) != 13 {
		t.Errorf("expected the 13 built-in concepts, got %d", len(result.ConceptNames))
	}
}
