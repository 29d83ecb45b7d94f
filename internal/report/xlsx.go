package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kaiwa/internal/analysis"
)

const (
	sheetConcepts = "Concepts"
	sheetTrend    = "Monthly Trend"
	sheetTerms    = "Terms"
)

// WriteWorkbook writes the analysis stats as an XLSX workbook at path:
// a concept summary sheet, a per-concept monthly trend sheet, and a mined
// terms sheet.
func WriteWorkbook(path string, result *analysis.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetConcepts); err != nil {
		return fmt.Errorf("failed to set up workbook: %w", err)
	}
	if err := writeConceptSheet(f, result); err != nil {
		return err
	}
	if err := writeTrendSheet(f, result); err != nil {
		return err
	}
	if err := writeTermsSheet(f, result); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeConceptSheet(f *excelize.File, result *analysis.Result) error {
	headers := []interface{}{"Concept", "Mentions", "First Mention", "Last Mention", "Related Concepts"}
	if err := setRow(f, sheetConcepts, 1, headers); err != nil {
		return err
	}
	row := 2
	for _, name := range result.ConceptNames {
		mentions := result.Mentions[name]
		values := []interface{}{name, len(mentions), "", "", ""}
		if stats, ok := result.Evolution[name]; ok {
			values[2] = stats.FirstMention.Date()
			values[3] = stats.LastMention.Date()
		}
		if related := result.Related[name]; len(related) > 0 {
			names := make([]string, 0, len(related))
			for _, edge := range top(related, relatedLimit) {
				names = append(names, edge.Concept)
			}
			values[4] = strings.Join(names, ", ")
		}
		if err := setRow(f, sheetConcepts, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeTrendSheet(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetTrend); err != nil {
		return fmt.Errorf("failed to create trend sheet: %w", err)
	}
	if err := setRow(f, sheetTrend, 1, []interface{}{"Concept", "Month", "Conversations"}); err != nil {
		return err
	}
	row := 2
	for _, name := range result.ConceptNames {
		stats, ok := result.Evolution[name]
		if !ok {
			continue
		}
		for _, month := range sortedMonths(stats.MonthlyTrend) {
			if err := setRow(f, sheetTrend, row, []interface{}{name, month, stats.MonthlyTrend[month]}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeTermsSheet(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetTerms); err != nil {
		return fmt.Errorf("failed to create terms sheet: %w", err)
	}
	if err := setRow(f, sheetTerms, 1, []interface{}{"Term", "Occurrences", "Suggested"}); err != nil {
		return err
	}
	suggested := make(map[string]bool, len(result.Suggestions))
	for _, tc := range result.Suggestions {
		suggested[tc.Term] = true
	}
	for i, tc := range result.RankedTerms {
		values := []interface{}{tc.Term, tc.Count, ""}
		if suggested[tc.Term] {
			values[2] = "yes"
		}
		if err := setRow(f, sheetTerms, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
	}
	return nil
}
