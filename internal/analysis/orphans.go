package analysis

import "github.com/hyperjump/kaiwa/internal/models"

// Orphans returns the records matched by no concept, in corpus order. The
// orphan set and the matched set partition the full record set exactly.
func Orphans(records []*models.ConversationRecord, mentions models.MentionSet) []*models.ConversationRecord {
	matched := mentions.MatchedIDs()
	orphans := []*models.ConversationRecord{}
	for _, rec := range records {
		if _, ok := matched[rec.ID]; !ok {
			orphans = append(orphans, rec)
		}
	}
	return orphans
}
