package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kaiwa/internal/importer"
	"github.com/hyperjump/kaiwa/internal/thread"
)

func TestBuildCorpus_ExportRoundTrips(t *testing.T) {
	fixture := BuildCorpus()
	data, err := fixture.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	conversations, err := importer.LoadExport(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(conversations) != len(fixture.Conversations) {
		t.Fatalf("export holds %d conversations, want %d", len(conversations), len(fixture.Conversations))
	}

	r := thread.NewReconstructor("User", "Assistant", "System")
	for _, conv := range conversations {
		messages := r.Reconstruct(conv)
		if len(messages) != 2 {
			t.Errorf("conversation %q: reconstructed %d messages, want 2", conv.Title, len(messages))
			continue
		}
		if messages[0].Author != "User" || messages[1].Author != "Assistant" {
			t.Errorf("conversation %q: authors = %s, %s", conv.Title, messages[0].Author, messages[1].Author)
		}
	}
}

func TestBuildCorpus_ExpectationsAreConsistent(t *testing.T) {
	fixture := BuildCorpus()
	total := 0
	for _, n := range fixture.ConceptCounts {
		total += n
	}
	if total+fixture.OrphanCount != len(fixture.Conversations) {
		t.Errorf("concept counts (%d) + orphans (%d) != conversations (%d); fixture titles must match exactly one concept or none",
			total, fixture.OrphanCount, len(fixture.Conversations))
	}
	for _, tc := range fixture.TestCases {
		if len(tc.ExpectedTitles) == 0 {
			t.Errorf("query case %q has no expected titles", tc.Description)
		}
	}
}
