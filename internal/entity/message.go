package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entité : ConversationMessage
// Append-only : un message n'est jamais modifié après sa création.
type ConversationMessage struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	ToolCall       json.RawMessage `json:"tool_call,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewMessage(tenantID, conversationID, role, content string) *ConversationMessage {
	return &ConversationMessage{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

type MessageRepositoryInterface interface {
	Append(ctx context.Context, msg *ConversationMessage) error
}
