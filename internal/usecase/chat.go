package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/maximepasquier/leadflow-api/internal/entity"
	"github.com/maximepasquier/leadflow-api/internal/infra/http/middleware"
	"github.com/maximepasquier/leadflow-api/internal/infra/integration/enrichment"
)

// ChatService orchestre un tour de conversation : classification de
// l'intention, cache de résultats, appel provider, persistance dédupliquée,
// puis réponse. C'est le seul point d'entrée utilisé par la couche HTTP.
type ChatService struct {
	Classifier  IntentClassifier
	Cache       *SearchCache
	Enricher    Enricher
	Persister   *LeadPersister
	LeadRepo    entity.LeadRepositoryInterface
	MessageRepo entity.MessageRepositoryInterface
	Producer    FollowUpProducerInterface

	mu          sync.Mutex
	transcripts map[string][]entity.ConversationMessage
}

func NewChatService(
	classifier IntentClassifier,
	cache *SearchCache,
	enricher Enricher,
	persister *LeadPersister,
	leadRepo entity.LeadRepositoryInterface,
	messageRepo entity.MessageRepositoryInterface,
	producer FollowUpProducerInterface,
) *ChatService {
	return &ChatService{
		Classifier:  classifier,
		Cache:       cache,
		Enricher:    enricher,
		Persister:   persister,
		LeadRepo:    leadRepo,
		MessageRepo: messageRepo,
		Producer:    producer,
		transcripts: make(map[string][]entity.ConversationMessage),
	}
}

func (s *ChatService) HandleMessage(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, &DomainError{Code: "EMPTY_MESSAGE", Message: "le message est vide"}
	}
	if strings.TrimSpace(input.TenantID) == "" {
		return nil, &DomainError{Code: "MISSING_TENANT", Message: "tenant_id est requis"}
	}

	conversationID := strings.TrimSpace(input.ConversationID)
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	s.append(ctx, entity.NewMessage(input.TenantID, conversationID, entity.RoleUser, text))

	intent := s.Classifier.Classify(text)

	var reply string
	if intent.IsSearch {
		reply = s.handleSearch(ctx, input.TenantID, text, intent.RequestedCount)
	} else {
		reply = s.handleCommand(ctx, input.TenantID, text)
	}

	s.append(ctx, entity.NewMessage(input.TenantID, conversationID, entity.RoleAssistant, reply))

	return &ChatOutput{
		ConversationID: conversationID,
		Reply:          reply,
	}, nil
}

func (s *ChatService) handleSearch(ctx context.Context, tenantID, query string, count int) string {

	// Un hit ne rappelle pas le provider et ne re-persiste rien :
	// tout a déjà été fait au premier passage.
	if cached, ok := s.Cache.Get(query); ok {
		middleware.RecordSearch("cache_hit")
		return fmt.Sprintf(
			"Voici les %d leads déjà trouvés pour cette recherche (résultat récent) :\n%s",
			len(cached), formatLeadLines(cached),
		)
	}

	result, err := s.Enricher.Search(ctx, tenantID, query, count)
	if err != nil {
		if errors.Is(err, enrichment.ErrNotConfigured) {
			middleware.RecordProviderError("not_configured")
			return "⚠️ La recherche de leads n'est pas configurée : ajoutez votre clé API d'enrichissement dans les réglages pour l'activer."
		}
		middleware.RecordProviderError("unavailable")
		log.Printf("❌ Provider d'enrichissement en erreur: %v", err)
		return "Le service de recherche est momentanément indisponible. Réessayez dans quelques instants."
	}
	middleware.RecordSearch("provider")

	if len(result.Leads) == 0 {
		return "Aucun lead trouvé pour cette recherche. Essayez avec d'autres mots-clés (poste, secteur, ville)."
	}

	persisted := s.Persister.PersistNew(ctx, tenantID, result.Leads)
	middleware.RecordLeadsPersisted(len(persisted.Inserted))

	duplicates := persisted.Conflicts + result.ExistingExcluded
	if duplicates > 0 {
		middleware.RecordDuplicatesExcluded(duplicates)
	}

	// On met en cache l'ensemble déjà dédupliqué, sous la requête d'origine.
	s.Cache.Put(query, persisted.Inserted)

	if len(persisted.Inserted) == 0 {
		if persisted.Failures > 0 && persisted.Conflicts == 0 {
			return "La recherche a trouvé des résultats mais aucun n'a pu être sauvegardé. Réessayez plus tard."
		}
		return fmt.Sprintf("Aucun nouveau lead : les %d résultats trouvés sont déjà dans votre liste.", duplicates)
	}

	reply := fmt.Sprintf("%d nouveaux leads ajoutés à votre liste 🎯", len(persisted.Inserted))
	if duplicates > 0 {
		reply += fmt.Sprintf(" (%d leads existants exclus)", duplicates)
	}
	if persisted.Failures > 0 {
		reply += fmt.Sprintf(" — %d n'ont pas pu être sauvegardés", persisted.Failures)
	}
	return reply + "\n" + formatLeadLines(persisted.Inserted)
}

// append ajoute le message au fil en mémoire (ordre strict d'arrivée) puis
// le reflète en base. La transcription est append-only ; un échec du miroir
// est loggé mais n'interrompt jamais le tour.
func (s *ChatService) append(ctx context.Context, msg *entity.ConversationMessage) {
	key := msg.TenantID + ":" + msg.ConversationID

	s.mu.Lock()
	s.transcripts[key] = append(s.transcripts[key], *msg)
	s.mu.Unlock()

	if err := s.MessageRepo.Append(ctx, msg); err != nil {
		log.Printf("⚠️ Message non persisté (conversation %s): %v", msg.ConversationID, err)
	}
}

// Transcript renvoie une copie du fil en mémoire d'une conversation.
func (s *ChatService) Transcript(tenantID, conversationID string) []entity.ConversationMessage {
	key := tenantID + ":" + conversationID

	s.mu.Lock()
	defer s.mu.Unlock()

	transcript := make([]entity.ConversationMessage, len(s.transcripts[key]))
	copy(transcript, s.transcripts[key])
	return transcript
}

func formatLeadLines(leads []entity.Lead) string {
	var b strings.Builder
	for _, l := range leads {
		b.WriteString("• ")
		b.WriteString(l.FullName)
		if l.JobTitle != "" {
			b.WriteString(" — " + l.JobTitle)
		}
		if l.Company != "" {
			b.WriteString(" @ " + l.Company)
		}
		if l.Email != "" {
			b.WriteString(" <" + l.Email + ">")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
