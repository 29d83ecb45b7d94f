package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/archive"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/corpus"
	"github.com/hyperjump/kaiwa/internal/ingest"
	"github.com/hyperjump/kaiwa/internal/insights"
	"github.com/hyperjump/kaiwa/internal/report"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/thread"
)

const e2eSearchLimit = 10

func e2eConfig(dir string) *config.Config {
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "db.sqlite"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
			DataDir:        filepath.Join(dir, "data"),
			VaultDir:       filepath.Join(dir, "vault"),
		},
		Names: config.NamesConfig{User: "User", Assistant: "Assistant", System: "System"},
		Concepts: []config.ConceptConfig{
			{Name: PythonConceptName, Pattern: PythonConceptPattern},
			{Name: GPUConceptName, Pattern: GPUConceptPattern},
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestE2E_ImportAnalyzeSearch(t *testing.T) {
	dir := t.TempDir()
	cfg := e2eConfig(dir)
	fixture := BuildCorpus()
	if len(fixture.Conversations) == 0 {
		t.Fatal("corpus has no conversations")
	}
	if len(fixture.TestCases) == 0 {
		t.Fatal("corpus has no query test cases")
	}

	exportPath := filepath.Join(dir, "conversations.json")
	exportData, err := fixture.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(exportPath, exportData, 0644); err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	idx, err := archive.NewIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	ctx := context.Background()
	pipeline := ingest.NewPipeline(
		cfg.Storage.DataDir,
		thread.NewReconstructor(cfg.Names.User, cfg.Names.Assistant, cfg.Names.System),
		cfg.Names.User,
		cfg.Names.Assistant,
		cfg.Analysis.MinInstructionLength,
		ingest.WithStore(store),
		ingest.WithSearchIndex(idx),
	)
	summary, err := pipeline.Run(ctx, exportPath)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Imported != len(fixture.Conversations) {
		t.Fatalf("imported %d conversations, want %d", summary.Imported, len(fixture.Conversations))
	}
	if summary.IndexEntries != len(fixture.Conversations) {
		t.Errorf("titles index has %d entries, want %d", summary.IndexEntries, len(fixture.Conversations))
	}

	t.Logf("imported %d conversations; running %d query test cases", summary.Imported, len(fixture.TestCases))

	for _, tc := range fixture.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			results, err := idx.Search(ctx, tc.Query, e2eSearchLimit)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			got := make(map[string]bool, len(results))
			for _, r := range results {
				got[r.Title] = true
			}
			for _, want := range tc.ExpectedTitles {
				if !got[want] {
					t.Errorf("query %q: expected title %q in results, got %d results", tc.Query, want, len(results))
				}
			}
		})
	}

	indexPath := filepath.Join(cfg.Storage.DataDir, corpus.IndexFilename)
	engine := insights.NewEngine(indexPath, cfg, zap.NewNop())
	result, err := engine.Analyze(ctx)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	for name, want := range fixture.ConceptCounts {
		if got := len(result.Mentions[name]); got != want {
			t.Errorf("concept %s: %d mentions, want %d", name, got, want)
		}
	}
	if len(result.Orphans) != fixture.OrphanCount {
		t.Errorf("%d orphaned conversations, want %d", len(result.Orphans), fixture.OrphanCount)
	}

	writer := report.NewWriter(cfg.Storage.VaultDir, zap.NewNop())
	if err := writer.WriteAll(result); err != nil {
		t.Fatalf("vault write failed: %v", err)
	}
	for _, name := range []string{"Python.md", "GPU.md", "Concepts-MOC.md", "Orphaned-Conversations.md"} {
		if _, err := os.Stat(filepath.Join(cfg.Storage.VaultDir, name)); err != nil {
			t.Errorf("expected vault note %s: %v", name, err)
		}
	}

	convCount, err := store.CountConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if convCount != int64(len(fixture.Conversations)) {
		t.Errorf("store holds %d conversations, want %d", convCount, len(fixture.Conversations))
	}
}

func TestE2E_ReimportIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := e2eConfig(dir)
	fixture := BuildCorpus()

	exportPath := filepath.Join(dir, "conversations.json")
	exportData, err := fixture.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(exportPath, exportData, 0644); err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	pipeline := ingest.NewPipeline(
		cfg.Storage.DataDir,
		thread.NewReconstructor(cfg.Names.User, cfg.Names.Assistant, cfg.Names.System),
		cfg.Names.User,
		cfg.Names.Assistant,
		cfg.Analysis.MinInstructionLength,
		ingest.WithStore(store),
	)
	if _, err := pipeline.Run(ctx, exportPath); err != nil {
		t.Fatal(err)
	}
	summary, err := pipeline.Run(ctx, exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if summary.IndexEntries != len(fixture.Conversations) {
		t.Errorf("titles index has %d entries after re-import, want %d", summary.IndexEntries, len(fixture.Conversations))
	}
	convCount, err := store.CountConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if convCount != int64(len(fixture.Conversations)) {
		t.Errorf("store holds %d conversations after re-import, want %d", convCount, len(fixture.Conversations))
	}
}
