// Package models defines core data structures for conversation records,
// messages, and analysis results.
package models

import (
	"fmt"
	"time"
)

// ConversationRecord is one entry of the numbered titles index: a single
// archived conversation with its position, display title, and timestamp
// parsed from the transcript filename.
type ConversationRecord struct {
	// ID is the ordinal from the index line, not anything inside the
	// conversation itself.
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Filename is the transcript filename as it appeared in the index,
	// including the extension.
	Filename string `json:"filename"`
	// NoteName is Filename without the extension, kept in its underscored
	// form for cross-linking generated vault notes.
	NoteName  string    `json:"note_name"`
	Timestamp time.Time `json:"timestamp"`
}

// Date returns the record date formatted dd/mm/yyyy.
func (r *ConversationRecord) Date() string {
	return r.Timestamp.Format("02/01/2006")
}

// Time returns the record time formatted hh:mm:ss.
func (r *ConversationRecord) Time() string {
	return r.Timestamp.Format("15:04:05")
}

// MonthKey returns the year-month bucket key, e.g. "2024-03".
func (r *ConversationRecord) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", r.Timestamp.Year(), int(r.Timestamp.Month()))
}

// MentionSet maps a concept name to the records whose title matched that
// concept's pattern. A record may appear under zero, one, or many concepts.
type MentionSet map[string][]*ConversationRecord

// MatchedIDs returns the union of record IDs across all concepts.
func (m MentionSet) MatchedIDs() map[int]struct{} {
	ids := make(map[int]struct{})
	for _, mentions := range m {
		for _, rec := range mentions {
			ids[rec.ID] = struct{}{}
		}
	}
	return ids
}
