// Package e2e exercises the full import, analysis, and search flow against a
// generated conversation corpus.
package e2e

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperjump/kaiwa/internal/importer"
)

// FixtureConversation is one synthetic conversation: a single user prompt and
// assistant reply, dated so that monthly evolution buckets are predictable.
type FixtureConversation struct {
	Title   string
	Updated time.Time
	Prompt  string
	Reply   string
}

// QueryCase is one search query with the titles that must appear among the
// results after the corpus has been imported and indexed.
type QueryCase struct {
	Description    string
	Query          string
	ExpectedTitles []string
}

// Corpus bundles the fixture conversations with their expected analysis
// outcomes.
type Corpus struct {
	Conversations []FixtureConversation
	TestCases     []QueryCase
	// ConceptCounts maps concept name to expected mention count when the
	// corpus is analyzed with PythonConcept and GPUConcept.
	ConceptCounts map[string]int
	// OrphanCount is the number of conversations matching no concept.
	OrphanCount int
}

// Concept patterns the expected counts below are computed against.
const (
	PythonConceptName    = "Python"
	PythonConceptPattern = `Python|pandas|numpy`
	GPUConceptName       = "GPU"
	GPUConceptPattern    = `GPU|CUDA|graphics`
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// BuildCorpus returns the fixture corpus. Counts are against the titles, the
// only text the analyzer sees.
func BuildCorpus() *Corpus {
	conversations := []FixtureConversation{
		{
			Title:   "Python pandas groupby basics",
			Updated: mustDate("2025-01-10 09:30"),
			Prompt:  "How does groupby work in pandas when aggregating sales data?",
			Reply:   "groupby splits the frame by key, applies the aggregation per group, and combines the results.",
		},
		{
			Title:   "Debugging a Python import error",
			Updated: mustDate("2025-01-22 14:05"),
			Prompt:  "My script fails with ModuleNotFoundError even though the package is installed.",
			Reply:   "Check which interpreter runs the script; the package is likely installed into a different environment.",
		},
		{
			Title:   "CUDA out of memory during training",
			Updated: mustDate("2025-02-03 11:15"),
			Prompt:  "Training crashes with a CUDA out of memory error on batch size 64.",
			Reply:   "Reduce the batch size or enable gradient accumulation so each step fits in device memory.",
		},
		{
			Title:   "Python numpy broadcasting rules",
			Updated: mustDate("2025-02-18 16:40"),
			Prompt:  "Why can I add a row vector to a matrix in numpy?",
			Reply:   "Broadcasting stretches the smaller operand along size-one axes until the shapes align.",
		},
		{
			Title:   "Choosing a GPU for deep learning",
			Updated: mustDate("2025-03-07 10:00"),
			Prompt:  "Is VRAM or raw compute more important when picking a training card?",
			Reply:   "VRAM bounds the models you can fit at all, so it usually matters more than peak throughput.",
		},
		{
			Title:   "Sourdough starter troubleshooting",
			Updated: mustDate("2025-03-12 08:45"),
			Prompt:  "My sourdough starter smells like acetone and barely rises.",
			Reply:   "That smell means it is hungry; feed it more frequently at a higher ratio for a few days.",
		},
		{
			Title:   "Sourdough scoring techniques",
			Updated: mustDate("2025-04-02 19:20"),
			Prompt:  "How deep should I score a high hydration sourdough loaf?",
			Reply:   "About half a centimeter at a shallow angle; deeper cuts collapse wet doughs.",
		},
	}

	return &Corpus{
		Conversations: conversations,
		TestCases: []QueryCase{
			{
				Description:    "content words match transcripts",
				Query:          "gradient accumulation",
				ExpectedTitles: []string{"CUDA out of memory during training"},
			},
			{
				Description:    "title words match transcripts",
				Query:          "sourdough",
				ExpectedTitles: []string{"Sourdough starter troubleshooting", "Sourdough scoring techniques"},
			},
			{
				Description:    "reply text is searchable",
				Query:          "broadcasting stretches",
				ExpectedTitles: []string{"Python numpy broadcasting rules"},
			},
		},
		ConceptCounts: map[string]int{
			PythonConceptName: 3,
			GPUConceptName:    2,
		},
		OrphanCount: 2,
	}
}

// ExportJSON renders the corpus as a conversations.json export: each
// conversation is a three-node graph (root, user, assistant) with the
// assistant node as the current node.
func (c *Corpus) ExportJSON() ([]byte, error) {
	exported := make([]*importer.Conversation, 0, len(c.Conversations))
	for i, fc := range c.Conversations {
		rootID := fmt.Sprintf("c%d-root", i)
		userID := fmt.Sprintf("c%d-user", i)
		asstID := fmt.Sprintf("c%d-asst", i)
		exported = append(exported, &importer.Conversation{
			Title:      fc.Title,
			CreateTime: float64(fc.Updated.Add(-time.Hour).Unix()),
			UpdateTime: float64(fc.Updated.Unix()),
			Mapping: map[string]*importer.Node{
				rootID: {ID: rootID, Children: []string{userID}},
				userID: {
					ID:     userID,
					Parent: rootID,
					Children: []string{
						asstID,
					},
					Message: &importer.NodeMessage{
						Author:  importer.Author{Role: "user"},
						Content: importer.Content{ContentType: "text", Parts: []interface{}{fc.Prompt}},
					},
				},
				asstID: {
					ID:     asstID,
					Parent: userID,
					Message: &importer.NodeMessage{
						Author:  importer.Author{Role: "assistant"},
						Content: importer.Content{ContentType: "text", Parts: []interface{}{fc.Reply}},
					},
				},
			},
			CurrentNode: asstID,
		})
	}
	return json.Marshal(exported)
}
