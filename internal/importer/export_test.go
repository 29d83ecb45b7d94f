package importer

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleExport = `[
  {
    "title": "GPT debugging session",
    "create_time": 1709280000,
    "update_time": 1709283600,
    "current_node": "n3",
    "mapping": {
      "n1": {"id": "n1", "children": ["n2"]},
      "n2": {"id": "n2", "parent": "n1", "children": ["n3"],
             "message": {"author": {"role": "user"},
                         "content": {"content_type": "text", "parts": ["hello there"]}}},
      "n3": {"id": "n3", "parent": "n2",
             "message": {"author": {"role": "assistant"},
                         "content": {"content_type": "text", "parts": ["hi, what can I do?"]}}}
    }
  }
]`

func TestLoadExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte(sampleExport), 0600); err != nil {
		t.Fatal(err)
	}
	convs, err := LoadExport(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	c := convs[0]
	if c.Title != "GPT debugging session" {
		t.Errorf("title = %q", c.Title)
	}
	if c.CurrentNode != "n3" {
		t.Errorf("current_node = %q", c.CurrentNode)
	}
	if len(c.Mapping) != 3 {
		t.Errorf("mapping size = %d", len(c.Mapping))
	}
	if c.Mapping["n1"].Message != nil {
		t.Error("root node should have nil message")
	}
	if got := c.Mapping["n2"].Message.Content.FirstTextPart(); got != "hello there" {
		t.Errorf("first text part = %q", got)
	}
	if c.Updated().IsZero() {
		t.Error("updated time should be set")
	}
}

func TestLoadExport_missingFile(t *testing.T) {
	if _, err := LoadExport(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing export")
	}
}

func TestFirstTextPart_nonString(t *testing.T) {
	c := &Content{ContentType: "multimodal_text", Parts: []interface{}{map[string]interface{}{"asset": "img"}}}
	if got := c.FirstTextPart(); got != "" {
		t.Errorf("non-string part should yield empty, got %q", got)
	}
	empty := &Content{ContentType: "text"}
	if got := empty.FirstTextPart(); got != "" {
		t.Errorf("empty parts should yield empty, got %q", got)
	}
}

func TestIsUserSystemMessage(t *testing.T) {
	m := &NodeMessage{Metadata: map[string]interface{}{"is_user_system_message": true}}
	if !m.IsUserSystemMessage() {
		t.Error("flag true should be detected")
	}
	m2 := &NodeMessage{}
	if m2.IsUserSystemMessage() {
		t.Error("nil metadata should report false")
	}
	m3 := &NodeMessage{Metadata: map[string]interface{}{"is_user_system_message": "yes"}}
	if m3.IsUserSystemMessage() {
		t.Error("non-bool flag should report false")
	}
}
