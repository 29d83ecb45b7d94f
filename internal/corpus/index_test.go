package corpus

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTranscriptFilename(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 15, 30, 0, time.UTC)
	got := TranscriptFilename("GPT_debugging_session", ts)
	want := "GPT_debugging_session_01_03_2024_09_15_30.txt"
	if got != want {
		t.Errorf("TranscriptFilename = %q, want %q", got, want)
	}
}

func TestBuildIndex_ordersByTimestamp(t *testing.T) {
	dataDir := t.TempDir()
	monthDir := filepath.Join(dataDir, "March_2024")
	if err := os.MkdirAll(monthDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Written out of order on purpose.
	files := []string{
		filepath.Join(monthDir, "Later_chat_02_03_2024_10_00_00.txt"),
		filepath.Join(dataDir, "Old_chat_31_12_2023_23_59_59.txt"),
		filepath.Join(monthDir, "First_chat_01_03_2024_09_00_00.txt"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("User\nhello\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	indexPath, n, err := BuildIndex(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 entries, got %d", n)
	}

	records, err := ParseIndexFile(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("round-trip produced %d records", len(records))
	}
	// Chronological: Dec 2023, then 01/03, then 02/03.
	want := []string{"Old chat", "First chat", "Later chat"}
	for i, rec := range records {
		if rec.Title != want[i] {
			t.Errorf("record %d title = %q, want %q", i, rec.Title, want[i])
		}
	}
	for i, rec := range records {
		if rec.ID != i+1 {
			t.Errorf("record %d has id %d", i, rec.ID)
		}
	}
}

func TestBuildIndex_excludesIndexItself(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, IndexFilename), []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "Chat_01_01_2024_00_00_00.txt"), []byte("User\nhi\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, n, err := BuildIndex(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("index file should be excluded, got %d entries", n)
	}
}
