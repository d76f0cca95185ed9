package usecase

import (
	"context"

	"github.com/maximepasquier/leadflow-api/internal/infra/integration/enrichment"
	"github.com/maximepasquier/leadflow-api/internal/infra/queue"
)

type Enricher interface {
	Search(ctx context.Context, tenantID, query string, count int) (*enrichment.SearchResult, error)
}

type FollowUpProducerInterface interface {
	PublishFollowUp(ctx context.Context, payload queue.FollowUpPayload) error
}

type ChatInput struct {
	TenantID       string `json:"tenant_id"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type ChatOutput struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}
