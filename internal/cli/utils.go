// Package cli provides output formatting for the kaiwa command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/kaiwa/internal/archive"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes transcript search results to w in the given
// format. Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, query string, results []*archive.Result, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"query":   query,
			"total":   len(results),
			"results": results,
		})
	}
	fmt.Fprintf(w, "\nFound %d results for %q\n\n", len(results), query)
	for i, result := range results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", i+1, result.Score)
		fmt.Fprintf(w, "Title: %s\n", result.Title)
		fmt.Fprintf(w, "File: %s\n", result.ID)
		for _, fragment := range result.Fragments {
			fmt.Fprintf(w, "\n%s\n", utils.Truncate(fragment, 200))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteAnalysisReport writes an analysis summary to w in the given format.
func WriteAnalysisReport(w io.Writer, report *models.AnalysisReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "\nAnalysis %s (%s)\n\n", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Conversations: %d\n", report.Conversations)
	fmt.Fprintf(w, "Orphaned:      %d\n\n", report.Orphaned)

	fmt.Fprintln(w, "Concept mentions:")
	type conceptCount struct {
		name  string
		count int
	}
	counts := make([]conceptCount, 0, len(report.ConceptCounts))
	for name, count := range report.ConceptCounts {
		counts = append(counts, conceptCount{name, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})
	for _, cc := range counts {
		fmt.Fprintf(w, "  %-20s %d\n", cc.name, cc.count)
	}

	if len(report.RecurringTerms) > 0 {
		fmt.Fprintln(w, "\nRecurring terms:")
		for _, tc := range report.RecurringTerms {
			fmt.Fprintf(w, "  %-20s %d\n", tc.Term, tc.Count)
		}
	}
	if len(report.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggested new concepts:")
		for _, tc := range report.Suggestions {
			fmt.Fprintf(w, "  %-20s %d\n", tc.Term, tc.Count)
		}
	}
	return nil
}
