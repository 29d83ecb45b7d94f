package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/kaiwa/internal/models"
)

// tokenPattern matches alphabetic-leading tokens of length >= 3.
var tokenPattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]{2,}\b`)

// stopwords are common title words never worth suggesting as concepts.
var stopwords = map[string]struct{}{
	"with": {}, "that": {}, "this": {}, "from": {}, "have": {},
	"what": {}, "your": {}, "request": {}, "help": {},
}

// MineTerms counts recurring words across record titles as candidate new
// concepts. Counting is case-insensitive; the returned keys preserve the
// case of each word's first occurrence. Words of length <= 3, stopwords,
// words below minOccurrences, and words that are case-insensitive substrings
// of an existing concept name are all excluded.
func MineTerms(records []*models.ConversationRecord, conceptNames []string, minOccurrences int) map[string]int {
	counts := make(map[string]int)
	display := make(map[string]string)
	for _, rec := range records {
		for _, word := range tokenPattern.FindAllString(rec.Title, -1) {
			if len(word) <= 3 {
				continue
			}
			key := strings.ToLower(word)
			if _, ok := display[key]; !ok {
				display[key] = word
			}
			counts[key]++
		}
	}

	lowerNames := make([]string, len(conceptNames))
	for i, name := range conceptNames {
		lowerNames[i] = strings.ToLower(name)
	}

	out := make(map[string]int)
	for key, count := range counts {
		if count < minOccurrences {
			continue
		}
		if _, stop := stopwords[key]; stop {
			continue
		}
		if substringOfAny(key, lowerNames) {
			continue
		}
		out[display[key]] = count
	}
	return out
}

func substringOfAny(word string, lowered []string) bool {
	for _, name := range lowered {
		if strings.Contains(name, word) {
			return true
		}
	}
	return false
}

// RankTerms orders a mined term table by count descending, ties broken
// alphabetically for determinism.
func RankTerms(terms map[string]int) []models.TermCount {
	out := make([]models.TermCount, 0, len(terms))
	for term, count := range terms {
		out = append(out, models.TermCount{Term: term, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// Suggestions filters ranked terms to those worth proposing as new concepts:
// count >= minCount, at most limit entries. This is a stricter bar than the
// general mining floor.
func Suggestions(ranked []models.TermCount, minCount, limit int) []models.TermCount {
	out := []models.TermCount{}
	for _, tc := range ranked {
		if len(out) >= limit {
			break
		}
		if tc.Count >= minCount {
			out = append(out, tc)
		}
	}
	return out
}
