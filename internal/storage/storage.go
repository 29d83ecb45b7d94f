// Package storage defines the persistence interface for imported conversations.
package storage

import (
	"context"

	"github.com/hyperjump/kaiwa/internal/models"
)

// Store defines conversation and message persistence operations.
type Store interface {
	// SaveConversation persists a conversation and its messages, replacing
	// any previous row with the same ID.
	SaveConversation(ctx context.Context, conv *models.StoredConversation) error

	// GetConversation returns a conversation by ID, without its messages.
	GetConversation(ctx context.Context, id string) (*models.StoredConversation, error)

	// ListConversations returns conversations ordered by creation time descending.
	ListConversations(ctx context.Context, offset, limit int) ([]*models.StoredConversation, error)

	// GetMessages returns a conversation's messages in thread order.
	GetMessages(ctx context.Context, conversationID string) ([]models.Message, error)

	// Stats
	CountConversations(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)

	// Close releases the underlying store.
	Close() error
}
