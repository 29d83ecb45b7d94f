// Package ingest turns a conversations.json export into transcripts, stored
// conversations, training data, the titles index, and search index entries.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/archive"
	"github.com/hyperjump/kaiwa/internal/corpus"
	"github.com/hyperjump/kaiwa/internal/importer"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/thread"
	"github.com/hyperjump/kaiwa/internal/training"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

const maxTitleLength = 120

// trainingCSVFilename is used instead of corpus.TrainingFilename when CSV
// output is requested.
const trainingCSVFilename = "training_data.csv"

// Pipeline runs the import flow: load export, reconstruct threads, write
// per-month transcripts, persist conversations, emit training data, rebuild
// the titles index, and index transcripts for search.
type Pipeline struct {
	dataDir       string
	reconstructor *thread.Reconstructor
	store         storage.Store
	index         *archive.Index
	userName      string
	assistantName string
	minInstrLen   int
	trainingCSV   bool
	logger        *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithStore sets the conversation store. When unset, conversations are not
// persisted.
func WithStore(s storage.Store) PipelineOption {
	return func(p *Pipeline) { p.store = s }
}

// WithSearchIndex sets the transcript search index. When unset, transcripts
// are not indexed.
func WithSearchIndex(idx *archive.Index) PipelineOption {
	return func(p *Pipeline) { p.index = idx }
}

// WithCSVTraining writes training pairs as CSV instead of JSONL.
func WithCSVTraining() PipelineOption {
	return func(p *Pipeline) { p.trainingCSV = true }
}

// WithLogger sets a logger for progress and per-conversation diagnostics.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline writing under dataDir. Reconstructed message
// authors use the given display names; training instructions shorter than
// minInstrLen characters are dropped.
func NewPipeline(dataDir string, r *thread.Reconstructor, userName, assistantName string, minInstrLen int, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		dataDir:       dataDir,
		reconstructor: r,
		userName:      userName,
		assistantName: assistantName,
		minInstrLen:   minInstrLen,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summary reports what an import produced.
type Summary struct {
	Imported      int
	Skipped       int
	TrainingPairs int
	IndexEntries  int
	IndexPath     string
	TrainingPath  string
}

// Run imports the export file at exportPath.
func (p *Pipeline) Run(ctx context.Context, exportPath string) (*Summary, error) {
	conversations, err := importer.LoadExport(exportPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	summary := &Summary{}
	var pairs []training.Pair

	for _, conv := range conversations {
		if conv.UpdateTime == 0 {
			summary.Skipped++
			if p.logger != nil {
				p.logger.Debug("skipping conversation without update time", zap.String("title", conv.Title))
			}
			continue
		}
		if err := p.importConversation(ctx, conv); err != nil {
			return nil, err
		}
		msgs := p.reconstructor.Reconstruct(conv)
		pairs = append(pairs, training.FromMessages(msgs, p.userName, p.assistantName, p.minInstrLen)...)
		summary.Imported++
	}

	trainingName := corpus.TrainingFilename
	if p.trainingCSV {
		trainingName = trainingCSVFilename
	}
	summary.TrainingPairs = len(pairs)
	summary.TrainingPath = filepath.Join(p.dataDir, trainingName)
	if err := p.writeTrainingData(summary.TrainingPath, pairs); err != nil {
		return nil, err
	}

	indexPath, entries, err := corpus.BuildIndex(p.dataDir)
	if err != nil {
		return nil, err
	}
	summary.IndexPath = indexPath
	summary.IndexEntries = entries

	if p.logger != nil {
		p.logger.Info("import complete",
			zap.Int("imported", summary.Imported),
			zap.Int("skipped", summary.Skipped),
			zap.Int("training_pairs", summary.TrainingPairs),
			zap.Int("index_entries", summary.IndexEntries))
	}
	return summary, nil
}

// importConversation writes one conversation's transcript, persists it, and
// indexes it for search.
func (p *Pipeline) importConversation(ctx context.Context, conv *importer.Conversation) error {
	title := conv.Title
	if title == "" {
		title = "Untitled"
	}
	updated := conv.Updated()

	monthDir := filepath.Join(p.dataDir, updated.Format("January_2006"))
	if err := os.MkdirAll(monthDir, 0755); err != nil {
		return fmt.Errorf("failed to create month dir: %w", err)
	}

	msgs := p.reconstructor.Reconstruct(conv)
	filename := corpus.TranscriptFilename(utils.SanitizeTitle(title, maxTitleLength), updated)
	transcriptPath := filepath.Join(monthDir, filename)
	content := transcriptContent(msgs)
	if err := os.WriteFile(transcriptPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	if p.store != nil {
		stored := &models.StoredConversation{
			ID:        filename,
			Title:     title,
			Filename:  filename,
			CreatedAt: conv.Created(),
			UpdatedAt: updated,
			Messages:  msgs,
		}
		if err := p.store.SaveConversation(ctx, stored); err != nil {
			return fmt.Errorf("failed to store conversation: %w", err)
		}
	}

	if p.index != nil {
		t := &archive.Transcript{ID: filename, Title: title, Content: content}
		if err := p.index.Index(ctx, t); err != nil {
			return fmt.Errorf("failed to index transcript: %w", err)
		}
	}

	if p.logger != nil {
		p.logger.Debug("conversation imported", zap.String("file", transcriptPath), zap.Int("messages", len(msgs)))
	}
	return nil
}

// transcriptContent renders messages as alternating author and text lines.
func transcriptContent(msgs []models.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Author)
		b.WriteByte('\n')
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *Pipeline) writeTrainingData(path string, pairs []training.Pair) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create training data file: %w", err)
	}
	defer f.Close()
	if p.trainingCSV {
		return training.WriteCSV(f, pairs)
	}
	return training.WriteJSONL(f, pairs)
}
