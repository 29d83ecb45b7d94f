// Package training generates instruction/response pairs from reconstructed
// conversations for fine-tuning.
package training

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kaiwa/internal/models"
)

// Pair is one instruction/response training example.
type Pair struct {
	Instruction string `json:"instruction"`
	Response    string `json:"response"`
}

// FromMessages extracts adjacent user→assistant pairs from a message
// sequence. Instructions shorter than minLength characters are skipped.
// Authors are compared against the configured display names because
// reconstruction has already relabeled them.
func FromMessages(msgs []models.Message, userName, assistantName string, minLength int) []Pair {
	var pairs []Pair
	for i := 0; i+1 < len(msgs); i++ {
		if msgs[i].Author != userName || msgs[i+1].Author != assistantName {
			continue
		}
		if len(msgs[i].Text) < minLength {
			continue
		}
		pairs = append(pairs, Pair{Instruction: msgs[i].Text, Response: msgs[i+1].Text})
	}
	return pairs
}

// WriteJSONL writes pairs as one JSON object per line.
func WriteJSONL(w io.Writer, pairs []Pair) error {
	enc := json.NewEncoder(w)
	for _, p := range pairs {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write training pair: %w", err)
		}
	}
	return nil
}

// WriteCSV writes pairs as CSV with an instruction,response header.
func WriteCSV(w io.Writer, pairs []Pair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"instruction", "response"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range pairs {
		if err := cw.Write([]string{p.Instruction, p.Response}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
