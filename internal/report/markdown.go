// Package report renders analysis results as an Obsidian-compatible vault of
// markdown notes plus an XLSX stats workbook.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/analysis"
	"github.com/hyperjump/kaiwa/internal/models"
)

const (
	mocFilename       = "Concepts-MOC.md"
	dashboardFilename = "Concept-Dashboard.md"
	orphansFilename   = "Orphaned-Conversations.md"
	termsFilename     = "Recurring-Terms.md"

	relatedLimit          = 5
	orphanTermMinCount    = 2
	orphanSuggestionLimit = 20
)

// Writer renders notes into a vault directory.
type Writer struct {
	dir    string
	logger *zap.Logger
}

// NewWriter creates a writer targeting dir. logger may be nil.
func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteAll renders the complete vault: one note per mentioned concept, the
// map of content, the dashboard, the recurring-terms note, and (when any
// exist) the orphaned-conversations note.
func (w *Writer) WriteAll(result *analysis.Result) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create vault dir: %w", err)
	}
	for _, name := range result.ConceptNames {
		if len(result.Mentions[name]) == 0 {
			continue
		}
		if err := w.writeConceptNote(name, result); err != nil {
			return err
		}
	}
	if err := w.writeMOC(result); err != nil {
		return err
	}
	if err := w.writeDashboard(result); err != nil {
		return err
	}
	if err := w.writeRecurringTerms(result); err != nil {
		return err
	}
	if err := w.writeOrphans(result); err != nil {
		return err
	}
	if w.logger != nil {
		w.logger.Info("vault written", zap.String("dir", w.dir), zap.Int("concepts", len(result.ConceptNames)))
	}
	return nil
}

// NoteFilename returns the note filename for a concept name.
func NoteFilename(concept string) string {
	return strings.ReplaceAll(concept, " ", "_") + ".md"
}

func (w *Writer) writeConceptNote(concept string, result *analysis.Result) error {
	mentions := analysis.SortByDate(result.Mentions[concept])
	stats := result.Evolution[concept]
	related := result.Related[concept]

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "concept: %q\n", concept)
	fmt.Fprintf(&b, "first_mention: %q\n", stats.FirstMention.Date())
	fmt.Fprintf(&b, "last_mention: %q\n", stats.LastMention.Date())
	fmt.Fprintf(&b, "mentions: %d\n", len(mentions))
	if len(related) > 0 {
		b.WriteString("related:\n")
		for _, edge := range top(related, relatedLimit) {
			fmt.Fprintf(&b, "  - %q\n", edge.Concept)
		}
	}
	b.WriteString("tags:\n")
	fmt.Fprintf(&b, "  - concept/%s\n", strings.ToLower(concept))
	b.WriteString("  - tracking\n")
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", concept)
	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "Concept tracked across %d conversations from %s to %s.\n\n",
		len(mentions), stats.FirstMention.Date(), stats.LastMention.Date())

	b.WriteString("## Evolution\n")
	b.WriteString("Monthly mentions:\n\n")
	for _, month := range sortedMonths(stats.MonthlyTrend) {
		fmt.Fprintf(&b, "- %s: %d conversations\n", month, stats.MonthlyTrend[month])
	}

	if len(related) > 0 {
		b.WriteString("\n## Related Concepts\n")
		for _, edge := range top(related, relatedLimit) {
			fmt.Fprintf(&b, "- [[%s]] - %d shared conversations (%.2f similarity)\n",
				edge.Concept, edge.SharedConversations, edge.Similarity)
		}
	}

	b.WriteString("\n## Chronological Mentions\n\n")
	for _, rec := range mentions {
		fmt.Fprintf(&b, "- [[%s]] - %s\n", rec.NoteName, rec.Date())
	}

	return w.writeNote(NoteFilename(concept), b.String())
}

func (w *Writer) writeMOC(result *analysis.Result) error {
	var b strings.Builder
	b.WriteString("---\ntags:\n  - MOC\n  - concepts\n---\n\n")
	b.WriteString("# Concepts Map of Content\n\n")

	var all []*models.ConversationRecord
	for _, name := range result.ConceptNames {
		all = append(all, result.Mentions[name]...)
	}
	if len(all) > 0 {
		all = analysis.SortByDate(all)
		fmt.Fprintf(&b, "## Overview\nTracking key concepts across conversations from %s to %s.\n\n",
			all[0].Date(), all[len(all)-1].Date())
	} else {
		b.WriteString("## Overview\nTracking key concepts across conversations.\n\n")
	}

	b.WriteString("## Key Concepts\n\n")
	type conceptCount struct {
		name  string
		count int
	}
	var counts []conceptCount
	for _, name := range result.ConceptNames {
		if n := len(result.Mentions[name]); n > 0 {
			counts = append(counts, conceptCount{name, n})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	for _, cc := range counts {
		fmt.Fprintf(&b, "- [[%s]] - %d mentions", cc.name, cc.count)
		if stats, ok := result.Evolution[cc.name]; ok {
			fmt.Fprintf(&b, " (first: %s)", stats.FirstMention.Date())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Concept Categories\n\n")
	b.WriteString("- [[AI Systems]]\n")
	b.WriteString("- [[Programming Projects]]\n")
	b.WriteString("- [[Data Analysis]]\n")
	b.WriteString("- [[Development Topics]]\n")
	b.WriteString("- [[Security & Privacy]]\n")

	b.WriteString("\n## Dataview Queries\n\n")
	b.WriteString("```dataview\nTABLE concept, mentions, first_mention\nFROM #concept\nSORT mentions DESC\n```\n")

	return w.writeNote(mocFilename, b.String())
}

// dashboardCategories groups concepts into the dashboard's category rollup.
// A concept counts toward a category when any of the terms is a
// case-insensitive substring of its name.
var dashboardCategories = []struct {
	name  string
	terms []string
}{
	{"AI Systems", []string{"AI", "GPT", "Claude", "LLM", "Language Model"}},
	{"Programming", []string{"Python", "JavaScript", "Code", "Programming", "API"}},
	{"Data & Analysis", []string{"Data", "Database", "CSV", "JSON", "Analysis"}},
	{"Development", []string{"Development", "Software", "Application", "Framework"}},
	{"Cloud & Infrastructure", []string{"Cloud", "AWS", "Azure", "Deploy"}},
	{"Security", []string{"Security", "Privacy", "Encryption", "Authentication"}},
}

func (w *Writer) writeDashboard(result *analysis.Result) error {
	var b strings.Builder
	b.WriteString("---\ntags:\n  - dashboard\n  - concepts\n---\n\n")
	b.WriteString("# Concept Tracking Dashboard\n\n")

	b.WriteString("## Concept Timeline\n\n")
	b.WriteString("```dataview\nCALENDAR file.cday\nFROM #concept\n```\n\n")

	b.WriteString("## Top Concepts\n\n")
	b.WriteString("```dataview\nTABLE concept, mentions AS \"Count\"\nFROM #concept\nSORT mentions DESC\nLIMIT 10\n```\n\n")

	b.WriteString("## Recent Updates\n\n")
	b.WriteString("```dataview\nTABLE concept, mentions, last_mention AS \"Last Updated\"\nFROM #concept\nSORT file.mtime DESC\nLIMIT 5\n```\n\n")

	b.WriteString("## Concept Network\n\n")
	b.WriteString("For a visual network of concept relationships, consider using the Obsidian Graph View filtered to show only concept notes.\n\n")

	b.WriteString("## Concept Categories\n\n")
	for _, cat := range dashboardCategories {
		count := 0
		for _, name := range result.ConceptNames {
			for _, term := range cat.terms {
				if strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
					count += len(result.Mentions[name])
					break
				}
			}
		}
		fmt.Fprintf(&b, "- **%s**: %d mentions\n", cat.name, count)
	}

	return w.writeNote(dashboardFilename, b.String())
}

func (w *Writer) writeRecurringTerms(result *analysis.Result) error {
	var b strings.Builder
	b.WriteString("---\ntags:\n  - terminology\n  - analysis\n---\n\n")
	b.WriteString("# Recurring Terms in Conversations\n\n")
	b.WriteString("These terms appear frequently in your conversation titles and may represent additional concepts to track.\n\n")

	b.WriteString("## Term Frequency\n\n")
	for _, tc := range result.RankedTerms {
		fmt.Fprintf(&b, "- **%s**: %d occurrences\n", tc.Term, tc.Count)
	}

	b.WriteString("\n## Suggested New Concepts\n\n")
	b.WriteString("Consider adding these high-frequency terms to your concept tracking system:\n\n")
	for _, tc := range result.Suggestions {
		fmt.Fprintf(&b, "- [[%s]] (%d occurrences)\n", tc.Term, tc.Count)
	}

	return w.writeNote(termsFilename, b.String())
}

func (w *Writer) writeOrphans(result *analysis.Result) error {
	if len(result.Orphans) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("---\ntags:\n  - orphans\n  - analysis\n---\n\n")
	b.WriteString("# Orphaned Conversations Analysis\n\n")
	fmt.Fprintf(&b, "Found %d conversations not matched by any concept.\n\n", len(result.Orphans))

	suggested := analysis.RankTerms(analysis.MineTerms(result.Orphans, nil, orphanTermMinCount))
	if len(suggested) > orphanSuggestionLimit {
		suggested = suggested[:orphanSuggestionLimit]
	}
	if len(suggested) > 0 {
		b.WriteString("## Suggested Additional Concepts\n\n")
		b.WriteString("Based on orphaned conversation titles, consider adding these concepts:\n\n")
		for _, tc := range suggested {
			fmt.Fprintf(&b, "- `%s` (%d occurrences)\n", tc.Term, tc.Count)
		}
	}

	b.WriteString("\n## Orphaned Conversations List\n\n")
	for _, rec := range result.Orphans {
		fmt.Fprintf(&b, "- [[%s]] - %s - *%s*\n", rec.NoteName, rec.Date(), rec.Title)
	}

	return w.writeNote(orphansFilename, b.String())
}

func (w *Writer) writeNote(name, content string) error {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// sortedMonths returns the trend's month keys in chronological order. The
// YYYY-MM key format sorts lexicographically.
func sortedMonths(trend map[string]int) []string {
	months := make([]string, 0, len(trend))
	for m := range trend {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

func top(edges []models.RelatednessEdge, n int) []models.RelatednessEdge {
	if len(edges) > n {
		return edges[:n]
	}
	return edges
}
