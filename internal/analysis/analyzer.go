package analysis

import (
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kaiwa/internal/concepts"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/models"
	"go.uber.org/zap"
)

// suggestionLimit caps how many mined terms are proposed as new concepts.
const suggestionLimit = 10

// Analyzer runs one full concept analysis pass over a parsed corpus. The
// concept set is fixed at construction and immutable for the run.
type Analyzer struct {
	concepts            []concepts.Concept
	minSimilarity       float64
	minTermOccurrences  int
	suggestionThreshold int
	logger              *zap.Logger
}

// NewAnalyzer creates an analyzer with the given concept set and thresholds.
// When cs is empty (no concepts configured, or all were dropped as invalid)
// the built-in default set is substituted rather than failing the run.
// logger may be nil.
func NewAnalyzer(cs []concepts.Concept, cfg config.AnalysisConfig, logger *zap.Logger) *Analyzer {
	if len(cs) == 0 {
		if logger != nil {
			logger.Warn("no valid concepts configured, using built-in defaults")
		}
		cs = concepts.Defaults()
	}
	return &Analyzer{
		concepts:            cs,
		minSimilarity:       cfg.MinSimilarity,
		minTermOccurrences:  cfg.MinTermOccurrences,
		suggestionThreshold: cfg.SuggestionThreshold,
		logger:              logger,
	}
}

// Result is the complete output of one analysis run. Every field is rebuilt
// from scratch each run; nothing carries over.
type Result struct {
	RunID        string
	GeneratedAt  time.Time
	Records      []*models.ConversationRecord
	ConceptNames []string
	Mentions     models.MentionSet
	Evolution    map[string]*models.EvolutionStats
	Related      map[string][]models.RelatednessEdge
	Orphans      []*models.ConversationRecord
	Terms        map[string]int
	RankedTerms  []models.TermCount
	Suggestions  []models.TermCount
}

// Run executes the full pipeline over records: match, then relatedness,
// evolution, and orphan/term mining over the matcher's output. The stages
// are pure over their inputs; records themselves are never modified.
func (a *Analyzer) Run(records []*models.ConversationRecord) *Result {
	names := concepts.Names(a.concepts)
	mentions := concepts.Match(records, a.concepts)
	terms := MineTerms(records, names, a.minTermOccurrences)
	ranked := RankTerms(terms)

	result := &Result{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		Records:      records,
		ConceptNames: names,
		Mentions:     mentions,
		Evolution:    Evolve(mentions),
		Related:      Relate(names, mentions, a.minSimilarity),
		Orphans:      Orphans(records, mentions),
		Terms:        terms,
		RankedTerms:  ranked,
		Suggestions:  Suggestions(ranked, a.suggestionThreshold, suggestionLimit),
	}

	if a.logger != nil {
		a.logger.Info("analysis complete",
			zap.String("run_id", result.RunID),
			zap.Int("conversations", len(records)),
			zap.Int("concepts", len(names)),
			zap.Int("orphaned", len(result.Orphans)),
			zap.Int("recurring_terms", len(terms)),
		)
	}
	return result
}

// Report summarizes the result for the API and CLI. Counts are always
// present, even when parts of the input were malformed and skipped.
func (r *Result) Report() *models.AnalysisReport {
	counts := make(map[string]int, len(r.ConceptNames))
	for _, name := range r.ConceptNames {
		counts[name] = len(r.Mentions[name])
	}
	return &models.AnalysisReport{
		RunID:          r.RunID,
		GeneratedAt:    r.GeneratedAt,
		Conversations:  len(r.Records),
		Orphaned:       len(r.Orphans),
		ConceptCounts:  counts,
		RecurringTerms: r.RankedTerms,
		Suggestions:    r.Suggestions,
	}
}
