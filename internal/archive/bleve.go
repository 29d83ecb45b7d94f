// Package archive provides Bleve full-text search over exported transcripts.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	_ "github.com/blevesearch/bleve/v2/search/highlight/highlighter/ansi"
)

// Transcript is one indexed conversation transcript.
type Transcript struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result is one search hit with highlighted content fragments.
type Result struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Fragments []string `json:"fragments,omitempty"`
}

// timestampSuffixPattern matches the timestamp suffix embedded in transcript
// basenames, used to recover the title portion.
var timestampSuffixPattern = regexp.MustCompile(`_\d{2}_\d{2}_\d{4}_\d{2}_\d{2}_\d{2}\.txt$`)

// Index wraps a Bleve index over transcripts.
type Index struct {
	index bleve.Index
}

// NewIndex creates or opens a Bleve index at path.
// An existing index is opened and reused so unchanged transcripts are not
// re-indexed. If the mapping changes in code, remove the index directory to
// force a full re-index.
func NewIndex(path string) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact word forms that appear in transcripts.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	im.AddDocumentMapping("transcript", docMapping)
	im.DefaultType = "transcript"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

// Index indexes a transcript by its ID.
func (i *Index) Index(ctx context.Context, t *Transcript) error {
	return i.index.Index(t.ID, t)
}

// IndexFile reads a transcript file and indexes it. The document ID is the
// file's basename; the title is the basename with its timestamp suffix
// removed and underscores restored to spaces.
func (i *Index) IndexFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	base := filepath.Base(path)
	return i.Index(ctx, &Transcript{
		ID:      base,
		Title:   TitleFromFilename(base),
		Content: string(content),
	})
}

// TitleFromFilename recovers a display title from a transcript basename.
func TitleFromFilename(base string) string {
	title := timestampSuffixPattern.ReplaceAllString(base, "")
	title = strings.TrimSuffix(title, ".txt")
	return strings.ReplaceAll(title, "_", " ")
}

// Search runs a match query over title and content and returns up to limit
// results with highlighted content fragments.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"title"}
	req.Highlight = bleve.NewHighlightWithStyle("ansi")
	req.Highlight.AddField("content")

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]*Result, len(results.Hits))
	for n, hit := range results.Hits {
		r := &Result{ID: hit.ID, Score: hit.Score}
		if title, ok := hit.Fields["title"].(string); ok {
			r.Title = title
		}
		if fragments, ok := hit.Fragments["content"]; ok {
			r.Fragments = fragments
		}
		out[n] = r
	}
	return out, nil
}

// Delete removes a transcript from the index.
func (i *Index) Delete(ctx context.Context, id string) error {
	return i.index.Delete(id)
}

// DocCount returns the number of indexed transcripts.
func (i *Index) DocCount() (uint64, error) {
	return i.index.DocCount()
}

// Close closes the Bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}
