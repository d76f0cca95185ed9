package database

import (
	"context"
	"database/sql"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

// Append : la transcription est append-only, aucun UPDATE ici.
func (r *MessageRepository) Append(ctx context.Context, msg *entity.ConversationMessage) error {
	query := `
		INSERT INTO conversation_messages (id, tenant_id, conversation_id, role, content, tool_call, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var toolCall any
	if len(msg.ToolCall) > 0 {
		toolCall = []byte(msg.ToolCall)
	}

	_, err := r.DB.ExecContext(ctx, query,
		msg.ID,
		msg.TenantID,
		msg.ConversationID,
		msg.Role,
		msg.Content,
		toolCall,
		msg.CreatedAt,
	)

	return err
}
