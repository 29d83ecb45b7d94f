package ingest

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/thread"
)

const sampleExport = `[
  {
    "title": "GPU memory tuning",
    "create_time": 1741942200,
    "update_time": 1741945800,
    "current_node": "n3",
    "mapping": {
      "n1": {"id": "n1", "children": ["n2"]},
      "n2": {
        "id": "n2", "parent": "n1", "children": ["n3"],
        "message": {
          "author": {"role": "user"},
          "content": {"content_type": "text", "parts": ["how do I profile GPU memory usage"]}
        }
      },
      "n3": {
        "id": "n3", "parent": "n2",
        "message": {
          "author": {"role": "assistant"},
          "content": {"content_type": "text", "parts": ["start with the allocator stats"]}
        }
      }
    }
  },
  {
    "title": "Draft without updates",
    "create_time": 1741942200,
    "current_node": "x1",
    "mapping": {}
  }
]`

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte(sampleExport), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestPipeline(t *testing.T, dataDir string, opts ...PipelineOption) *Pipeline {
	t.Helper()
	r := thread.NewReconstructor("Eden", "Atlas", "System")
	return NewPipeline(dataDir, r, "Eden", "Atlas", 10, opts...)
}

func TestPipeline_Run(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	p := newTestPipeline(t, dataDir)

	summary, err := p.Run(context.Background(), writeExport(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Imported != 1 {
		t.Errorf("imported = %d, want 1", summary.Imported)
	}
	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}
	if summary.TrainingPairs != 1 {
		t.Errorf("training pairs = %d, want 1", summary.TrainingPairs)
	}
	if summary.IndexEntries != 1 {
		t.Errorf("index entries = %d, want 1", summary.IndexEntries)
	}
}

func TestPipeline_writesMonthDirAndTranscript(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	p := newTestPipeline(t, dataDir)
	if _, err := p.Run(context.Background(), writeExport(t)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// update_time 1741945800 falls in March 2025.
	matches, err := filepath.Glob(filepath.Join(dataDir, "March_2025", "GPU_memory_tuning_*.txt"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one transcript in March_2025, got %v (err %v)", matches, err)
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	text := string(content)
	if !strings.Contains(text, "Eden\nhow do I profile GPU memory usage\n") {
		t.Errorf("transcript missing user message:\n%s", text)
	}
	if !strings.Contains(text, "Atlas\nstart with the allocator stats\n") {
		t.Errorf("transcript missing assistant message:\n%s", text)
	}
}

func TestPipeline_writesTitlesIndexAndTrainingData(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	p := newTestPipeline(t, dataDir)
	summary, err := p.Run(context.Background(), writeExport(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	indexContent, err := os.ReadFile(summary.IndexPath)
	if err != nil {
		t.Fatalf("read titles index: %v", err)
	}
	if !strings.Contains(string(indexContent), "1. GPU_memory_tuning_") {
		t.Errorf("titles index missing entry:\n%s", indexContent)
	}

	f, err := os.Open(summary.TrainingPath)
	if err != nil {
		t.Fatalf("open training data: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var lines int
	for scanner.Scan() {
		lines++
	}
	if lines != 1 {
		t.Errorf("training data lines = %d, want 1", lines)
	}
}

func TestPipeline_csvTrainingData(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	p := newTestPipeline(t, dataDir, WithCSVTraining())
	summary, err := p.Run(context.Background(), writeExport(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if filepath.Base(summary.TrainingPath) != "training_data.csv" {
		t.Fatalf("training path = %s, want training_data.csv", summary.TrainingPath)
	}
	content, err := os.ReadFile(summary.TrainingPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 pair:\n%s", len(lines), content)
	}
	if lines[0] != "instruction,response" {
		t.Errorf("csv header = %q", lines[0])
	}
}

func TestPipeline_persistsConversations(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	p := newTestPipeline(t, dataDir, WithStore(store))
	if _, err := p.Run(context.Background(), writeExport(t)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ctx := context.Background()
	count, err := store.CountConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("stored conversations = %d, want 1", count)
	}

	convs, err := store.ListConversations(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if convs[0].Title != "GPU memory tuning" {
		t.Errorf("stored title = %q", convs[0].Title)
	}
	msgs, err := store.GetMessages(ctx, convs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Errorf("stored messages = %d, want 2", len(msgs))
	}
}
