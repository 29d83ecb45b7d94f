package models

import "time"

// EvolutionStats holds per-concept temporal statistics. Concepts with zero
// mentions have no entry at all.
type EvolutionStats struct {
	// FirstMention and LastMention are the literal earliest and latest
	// matching records; downstream writers use their title and date for
	// cross-linking.
	FirstMention  *ConversationRecord `json:"first_mention"`
	LastMention   *ConversationRecord `json:"last_mention"`
	MonthlyTrend  map[string]int      `json:"monthly_trend"`
	TotalMentions int                 `json:"total_mentions"`
}

// RelatednessEdge is one directed co-occurrence edge from a source concept to
// Concept. Similarity is the Jaccard index of the two record-id sets; the
// value is symmetric but edges are stored per source concept.
type RelatednessEdge struct {
	Concept             string  `json:"concept"`
	Similarity          float64 `json:"similarity"`
	SharedConversations int     `json:"shared_conversations"`
}

// TermCount is a mined title term with its occurrence count.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// AnalysisReport is the summary of one analysis run, returned by the API and
// printed by the CLI. A completed run always carries counts even when some
// inputs were malformed and skipped.
type AnalysisReport struct {
	RunID          string         `json:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Conversations  int            `json:"conversations"`
	Orphaned       int            `json:"orphaned"`
	ConceptCounts  map[string]int `json:"concept_counts"`
	RecurringTerms []TermCount    `json:"recurring_terms"`
	Suggestions    []TermCount    `json:"suggestions,omitempty"`
}
