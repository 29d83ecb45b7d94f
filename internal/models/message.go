package models

import "time"

// Message is a single resolved message from a reconstructed conversation
// thread, oldest first. Author has already been remapped to the configured
// display name.
type Message struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// StoredConversation is an imported conversation persisted to storage,
// with its reconstructed messages.
type StoredConversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Filename  string    `json:"filename" db:"filename"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Messages  []Message `json:"messages,omitempty" db:"-"`
}
