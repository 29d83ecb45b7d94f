// Package thread reconstructs the linear message sequence of a conversation
// from its node graph.
package thread

import (
	"strings"

	"github.com/hyperjump/kaiwa/internal/importer"
	"github.com/hyperjump/kaiwa/internal/models"
)

// Reconstructor resolves the active branch of a conversation graph into an
// ordered message list, relabeling author roles with display names.
type Reconstructor struct {
	UserName      string
	AssistantName string
	SystemName    string
}

// NewReconstructor creates a reconstructor with the given display names.
func NewReconstructor(userName, assistantName, systemName string) *Reconstructor {
	return &Reconstructor{
		UserName:      userName,
		AssistantName: assistantName,
		SystemName:    systemName,
	}
}

// Reconstruct walks parent links from the conversation's current node and
// returns the authored messages in chronological order (oldest first).
//
// A node contributes a message only when its content type is text, its first
// part is non-blank, and the author is not "system" unless the message is
// flagged as a user-authored system message. Missing nodes and nil payloads
// are skipped silently; a malformed node never fails the conversation.
func (r *Reconstructor) Reconstruct(conv *importer.Conversation) []models.Message {
	var collected []models.Message
	visited := make(map[string]struct{})

	current := conv.CurrentNode
	for current != "" {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}

		node, ok := conv.Mapping[current]
		if !ok || node == nil {
			break
		}
		if msg := r.resolve(node.Message); msg != nil {
			collected = append(collected, *msg)
		}
		current = node.Parent
	}

	// The walk runs newest to oldest; reverse for chronological order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

// resolve returns the display message for a node payload, or nil when the
// node contributes nothing.
func (r *Reconstructor) resolve(m *importer.NodeMessage) *models.Message {
	if m == nil {
		return nil
	}
	if m.Content.ContentType != "text" {
		return nil
	}
	text := m.Content.FirstTextPart()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	role := m.Author.Role
	if role == "system" && !m.IsUserSystemMessage() {
		return nil
	}
	return &models.Message{Author: r.displayName(role), Text: text}
}

// displayName maps an export role to its configured display name. Unknown
// roles pass through unchanged.
func (r *Reconstructor) displayName(role string) string {
	switch role {
	case "assistant":
		return r.AssistantName
	case "system":
		return r.SystemName
	case "user":
		return r.UserName
	}
	return role
}
