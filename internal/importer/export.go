// Package importer parses ChatGPT conversation exports (conversations.json).
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Conversation is one exported conversation: an id-keyed arena of nodes with
// parent back-pointers, plus a pointer to the tip of the active branch.
type Conversation struct {
	Title      string           `json:"title"`
	CreateTime float64          `json:"create_time"`
	UpdateTime float64          `json:"update_time"`
	Mapping    map[string]*Node `json:"mapping"`
	// CurrentNode is the id of the newest node on the path that was actually
	// traversed in the live conversation.
	CurrentNode string `json:"current_node"`
}

// Node is a position in the conversation graph. Message may be nil for
// structural nodes (the implicit root, tool placeholders).
type Node struct {
	ID       string       `json:"id"`
	Parent   string       `json:"parent,omitempty"`
	Children []string     `json:"children,omitempty"`
	Message  *NodeMessage `json:"message,omitempty"`
}

// NodeMessage is the message payload carried by a node.
type NodeMessage struct {
	Author   Author                 `json:"author"`
	Content  Content                `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Author identifies who wrote a message. Role is one of "user", "assistant",
// "system", or a tool-specific role.
type Author struct {
	Role string `json:"role"`
}

// Content holds the message body. Parts may contain non-string entries for
// multimodal content; only a leading string part counts as text.
type Content struct {
	ContentType string        `json:"content_type"`
	Parts       []interface{} `json:"parts"`
}

// FirstTextPart returns the first part as a string, or "" when the parts list
// is empty or its first entry is not a string.
func (c *Content) FirstTextPart() string {
	if len(c.Parts) == 0 {
		return ""
	}
	s, ok := c.Parts[0].(string)
	if !ok {
		return ""
	}
	return s
}

// IsUserSystemMessage reports whether the export flagged this system message
// as authored by the user (custom instructions). Such messages are kept in
// transcripts even though ordinary system messages are dropped.
func (m *NodeMessage) IsUserSystemMessage() bool {
	if m.Metadata == nil {
		return false
	}
	v, ok := m.Metadata["is_user_system_message"].(bool)
	return ok && v
}

// Created returns the conversation creation time.
func (c *Conversation) Created() time.Time {
	return unixTime(c.CreateTime)
}

// Updated returns the conversation update time, the timestamp transcripts are
// named and grouped by.
func (c *Conversation) Updated() time.Time {
	return unixTime(c.UpdateTime)
}

func unixTime(secs float64) time.Time {
	return time.Unix(int64(secs), 0)
}

// LoadExport reads a conversations.json export file. The top level is an
// array of conversations.
func LoadExport(path string) ([]*Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	var conversations []*Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return conversations, nil
}
