// Package analysis computes concept relatedness, temporal evolution, orphaned
// conversations, and recurring-term mining over a matched corpus.
package analysis

import (
	"sort"

	"github.com/hyperjump/kaiwa/internal/models"
)

// Relate computes per-concept relatedness edges from shared record
// membership. names fixes the iteration order (and the stable tie-break)
// since the mention set itself is unordered. For each ordered pair of
// distinct concepts with at least one mention each, the Jaccard similarity
// of their record-id sets is computed; edges with an empty intersection or
// similarity below minSimilarity are discarded. Each concept's edge list is
// sorted by similarity descending.
func Relate(names []string, mentions models.MentionSet, minSimilarity float64) map[string][]models.RelatednessEdge {
	idSets := make(map[string]map[int]struct{}, len(names))
	for _, name := range names {
		recs := mentions[name]
		if len(recs) == 0 {
			continue
		}
		set := make(map[int]struct{}, len(recs))
		for _, r := range recs {
			set[r.ID] = struct{}{}
		}
		idSets[name] = set
	}

	related := make(map[string][]models.RelatednessEdge)
	for _, a := range names {
		setA, ok := idSets[a]
		if !ok {
			continue
		}
		edges := []models.RelatednessEdge{}
		for _, b := range names {
			if b == a {
				continue
			}
			setB, ok := idSets[b]
			if !ok {
				continue
			}
			shared := intersectionSize(setA, setB)
			if shared == 0 {
				continue
			}
			union := len(setA) + len(setB) - shared
			similarity := float64(shared) / float64(union)
			if similarity < minSimilarity {
				continue
			}
			edges = append(edges, models.RelatednessEdge{
				Concept:             b,
				Similarity:          similarity,
				SharedConversations: shared,
			})
		}
		sort.SliceStable(edges, func(i, j int) bool {
			return edges[i].Similarity > edges[j].Similarity
		})
		related[a] = edges
	}
	return related
}

func intersectionSize(a, b map[int]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if _, ok := b[id]; ok {
			n++
		}
	}
	return n
}
