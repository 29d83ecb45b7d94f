package corpus

import (
	"strings"
	"testing"
	"time"
)

const sampleIndex = `---
tags:
  - help
---


1. GPT_debugging_session_01_03_2024_09_15_30.txt
2. Trip_to_Paris_02_03_2024_18_00_00.txt
not an index line
3. Late_night_ideas_31_12_2023_23_59_59.txt
`

func TestParseIndex(t *testing.T) {
	records, err := ParseIndex(strings.NewReader(sampleIndex))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != 1 {
		t.Errorf("id = %d, want 1", first.ID)
	}
	if first.Title != "GPT debugging session" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Filename != "GPT_debugging_session_01_03_2024_09_15_30.txt" {
		t.Errorf("filename = %q", first.Filename)
	}
	if first.NoteName != "GPT_debugging_session_01_03_2024_09_15_30" {
		t.Errorf("note name = %q", first.NoteName)
	}
	want := time.Date(2024, 3, 1, 9, 15, 30, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}
	if first.Date() != "01/03/2024" {
		t.Errorf("date = %q", first.Date())
	}
	if first.Time() != "09:15:30" {
		t.Errorf("time = %q", first.Time())
	}
	if first.MonthKey() != "2024-03" {
		t.Errorf("month key = %q", first.MonthKey())
	}

	// Ordinals come from the lines, not from position.
	if records[2].ID != 3 {
		t.Errorf("third record id = %d, want 3", records[2].ID)
	}
}

func TestParseIndex_skipsMalformedLines(t *testing.T) {
	input := `garbage
12 missing dot Separator_01_01_2024_00_00_00.txt
5. no_timestamp_here.txt
`
	records, err := ParseIndex(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestParseIndexFile_missing(t *testing.T) {
	if _, err := ParseIndexFile(t.TempDir() + "/missing.txt"); err == nil {
		t.Error("expected error for missing index file")
	}
}
