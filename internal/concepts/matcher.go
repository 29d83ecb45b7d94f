package concepts

import (
	"github.com/hyperjump/kaiwa/internal/models"
)

// Match applies every concept's pattern to every record title and returns the
// mention set. Matching is case-insensitive and non-exclusive: one record may
// satisfy many concepts, and no precedence is applied. Every concept gets an
// entry, possibly empty, so downstream stages can report zero counts.
func Match(records []*models.ConversationRecord, cs []Concept) models.MentionSet {
	mentions := make(models.MentionSet, len(cs))
	for _, c := range cs {
		mentions[c.Name] = nil
	}
	for _, rec := range records {
		for _, c := range cs {
			if c.Pattern.MatchString(rec.Title) {
				mentions[c.Name] = append(mentions[c.Name], rec)
			}
		}
	}
	return mentions
}
