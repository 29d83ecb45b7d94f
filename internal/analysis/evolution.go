package analysis

import (
	"sort"

	"github.com/hyperjump/kaiwa/internal/models"
)

// Evolve computes per-concept temporal statistics. Concepts with zero
// mentions are absent from the result. Mentions are ordered by their parsed
// timestamps, so first/last selection is correct across year boundaries
// regardless of how dates format as strings.
func Evolve(mentions models.MentionSet) map[string]*models.EvolutionStats {
	evolution := make(map[string]*models.EvolutionStats)
	for name, recs := range mentions {
		if len(recs) == 0 {
			continue
		}
		ordered := SortByDate(recs)
		trend := make(map[string]int)
		for _, r := range ordered {
			trend[r.MonthKey()]++
		}
		evolution[name] = &models.EvolutionStats{
			FirstMention:  ordered[0],
			LastMention:   ordered[len(ordered)-1],
			MonthlyTrend:  trend,
			TotalMentions: len(ordered),
		}
	}
	return evolution
}

// SortByDate returns the records ordered by timestamp ascending, ties broken
// by record id for determinism. The input slice is not modified.
func SortByDate(recs []*models.ConversationRecord) []*models.ConversationRecord {
	ordered := make([]*models.ConversationRecord, len(recs))
	copy(ordered, recs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}
