package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/maximepasquier/leadflow-api/internal/entity"
	"github.com/maximepasquier/leadflow-api/internal/infra/integration/enrichment"
	"github.com/maximepasquier/leadflow-api/internal/infra/queue"
)

// MockEnricher
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Search(ctx context.Context, tenantID, query string, count int) (*enrichment.SearchResult, error) {
	args := m.Called(ctx, tenantID, query, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.SearchResult), args.Error(1)
}

// MockMessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Append(ctx context.Context, msg *entity.ConversationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockFollowUpProducer
type MockFollowUpProducer struct {
	mock.Mock
}

func (m *MockFollowUpProducer) PublishFollowUp(ctx context.Context, payload queue.FollowUpPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func newTestChatService(repo *MockLeadRepository, enricher *MockEnricher, msgRepo *MockMessageRepository, producer *MockFollowUpProducer) *ChatService {
	return NewChatService(
		NewKeywordClassifier(),
		NewSearchCache(),
		enricher,
		NewLeadPersister(repo),
		repo,
		msgRepo,
		producer,
	)
}

func sampleLeads(n int) []entity.Lead {
	leads := make([]entity.Lead, n)
	for i := range leads {
		leads[i] = entity.Lead{
			FullName: fmt.Sprintf("Lead %d", i+1),
			JobTitle: "Responsable RH",
			Company:  fmt.Sprintf("Société %d", i+1),
			Email:    fmt.Sprintf("lead%d@exemple.fr", i+1),
		}
	}
	return leads
}

// ============ TESTS ============

// Scénario complet : 7 candidats dont 2 déjà connus, 5 nouveaux insérés.
func TestHandleMessageSearchFlow(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	enricher := new(MockEnricher)
	msgRepo := new(MockMessageRepository)
	producer := new(MockFollowUpProducer)

	enricher.On("Search", mock.Anything, "tenant-1", "Trouve-moi 5 leads RH à Paris", 5).
		Return(&enrichment.SearchResult{Leads: sampleLeads(7)}, nil)
	repo.On("FindExistingEmails", mock.Anything, "tenant-1", mock.Anything).
		Return(map[string]bool{"lead1@exemple.fr": true, "lead2@exemple.fr": true}, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(repo, enricher, msgRepo, producer)

	output, err := svc.HandleMessage(ctx, ChatInput{
		TenantID: "tenant-1",
		Text:     "Trouve-moi 5 leads RH à Paris",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, output.ConversationID)
	assert.Contains(t, output.Reply, "5 nouveaux leads ajoutés")
	assert.Contains(t, output.Reply, "2 leads existants exclus")

	repo.AssertNumberOfCalls(t, "Insert", 5)
	// Message utilisateur + réponse assistant, dans cet ordre.
	msgRepo.AssertNumberOfCalls(t, "Append", 2)
}

// Répéter la même recherche dans la fenêtre du cache ne rappelle pas le
// provider et ne re-persiste rien.
func TestHandleMessageRepeatedSearchHitsCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	enricher := new(MockEnricher)
	msgRepo := new(MockMessageRepository)
	producer := new(MockFollowUpProducer)

	enricher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&enrichment.SearchResult{Leads: sampleLeads(3)}, nil)
	repo.On("FindExistingEmails", mock.Anything, "tenant-1", mock.Anything).
		Return(map[string]bool{}, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(repo, enricher, msgRepo, producer)

	first, err := svc.HandleMessage(ctx, ChatInput{TenantID: "tenant-1", Text: "trouve 3 leads RH"})
	assert.NoError(t, err)
	assert.Contains(t, first.Reply, "3 nouveaux leads ajoutés")

	second, err := svc.HandleMessage(ctx, ChatInput{TenantID: "tenant-1", Text: "trouve 3 leads RH"})
	assert.NoError(t, err)
	assert.Contains(t, second.Reply, "déjà trouvés")

	enricher.AssertNumberOfCalls(t, "Search", 1)
	repo.AssertNumberOfCalls(t, "Insert", 3)
}

func TestHandleMessageProviderNotConfigured(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	enricher := new(MockEnricher)
	msgRepo := new(MockMessageRepository)
	producer := new(MockFollowUpProducer)

	enricher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, enrichment.ErrNotConfigured)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(repo, enricher, msgRepo, producer)

	output, err := svc.HandleMessage(ctx, ChatInput{TenantID: "tenant-1", Text: "trouve 5 leads RH"})

	assert.NoError(t, err)
	assert.Contains(t, output.Reply, "n'est pas configurée")
	assert.Contains(t, output.Reply, "clé API")
	repo.AssertNotCalled(t, "Insert")
}

func TestHandleMessageProviderUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	enricher := new(MockEnricher)
	msgRepo := new(MockMessageRepository)
	producer := new(MockFollowUpProducer)

	enricher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("recherche de leads: %w", enrichment.ErrUnavailable))
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(repo, enricher, msgRepo, producer)

	output, err := svc.HandleMessage(ctx, ChatInput{TenantID: "tenant-1", Text: "trouve 5 leads RH"})

	assert.NoError(t, err)
	assert.Contains(t, output.Reply, "momentanément indisponible")
}

func TestHandleMessageAllDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	enricher := new(MockEnricher)
	msgRepo := new(MockMessageRepository)
	producer := new(MockFollowUpProducer)

	enricher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&enrichment.SearchResult{Leads: sampleLeads(2)}, nil)
	repo.On("FindExistingEmails", mock.Anything, "tenant-1", mock.Anything).
		Return(map[string]bool{"lead1@exemple.fr": true, "lead2@exemple.fr": true}, nil)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(repo, enricher, msgRepo, producer)

	output, err := svc.HandleMessage(ctx, ChatInput{TenantID: "tenant-1", Text: "trouve 2 leads RH"})

	assert.NoError(t, err)
	assert.Contains(t, output.Reply, "Aucun nouveau lead")
	repo.AssertNotCalled(t, "Insert")
}

func TestHandleMessageEmptyTextIsDomainError(t *testing.T) {
	svc := newTestChatService(new(MockLeadRepository), new(MockEnricher), new(MockMessageRepository), new(MockFollowUpProducer))

	output, err := svc.HandleMessage(context.Background(), ChatInput{TenantID: "tenant-1", Text: "   "})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, IsDomainError(err))
}

func TestHandleMessageMissingTenantIsDomainError(t *testing.T) {
	svc := newTestChatService(new(MockLeadRepository), new(MockEnricher), new(MockMessageRepository), new(MockFollowUpProducer))

	output, err := svc.HandleMessage(context.Background(), ChatInput{Text: "bonjour"})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, IsDomainError(err))
}

func TestHandleMessageKeepsConversationID(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(new(MockLeadRepository), new(MockEnricher), msgRepo, new(MockFollowUpProducer))

	output, err := svc.HandleMessage(context.Background(), ChatInput{
		TenantID:       "tenant-1",
		ConversationID: "conv-42",
		Text:           "bonjour",
	})

	assert.NoError(t, err)
	assert.Equal(t, "conv-42", output.ConversationID)

	transcript := svc.Transcript("tenant-1", "conv-42")
	assert.Len(t, transcript, 2)
	assert.Equal(t, entity.RoleUser, transcript[0].Role)
	assert.Equal(t, entity.RoleAssistant, transcript[1].Role)
}

func TestHandleMessageUnknownCommandFallsBackToHelp(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(new(MockLeadRepository), new(MockEnricher), msgRepo, new(MockFollowUpProducer))

	output, err := svc.HandleMessage(context.Background(), ChatInput{TenantID: "tenant-1", Text: "bonjour"})

	assert.NoError(t, err)
	assert.Contains(t, output.Reply, "Je peux vous aider")
}

func TestHandleMessageSendFollowUpsPublishesPerLead(t *testing.T) {
	repo := new(MockLeadRepository)
	msgRepo := new(MockMessageRepository)
	producer := new(MockFollowUpProducer)

	repo.On("ListByStatus", mock.Anything, "tenant-1", entity.StatusToContact).
		Return([]entity.Lead{
			{ID: "l1", TenantID: "tenant-1", FullName: "Claire Martin", Email: "claire@exemple.fr"},
			{ID: "l2", TenantID: "tenant-1", FullName: "Sans Email"},
		}, nil)
	repo.On("ListByStatus", mock.Anything, "tenant-1", entity.StatusToFollowUp).
		Return([]entity.Lead{
			{ID: "l3", TenantID: "tenant-1", FullName: "Paul Durand", Email: "paul@exemple.fr"},
		}, nil)
	producer.On("PublishFollowUp", mock.Anything, mock.Anything).Return(nil)
	msgRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newTestChatService(repo, new(MockEnricher), msgRepo, producer)

	output, err := svc.HandleMessage(context.Background(), ChatInput{TenantID: "tenant-1", Text: "envoie les relances"})

	assert.NoError(t, err)
	assert.Contains(t, output.Reply, "2 relance(s) programmée(s)")
	// Le lead sans email est ignoré.
	producer.AssertNumberOfCalls(t, "PublishFollowUp", 2)
}
