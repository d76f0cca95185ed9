package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/maximepasquier/leadflow-api/internal/entity"
	"github.com/maximepasquier/leadflow-api/internal/infra/http/middleware"
	"github.com/maximepasquier/leadflow-api/internal/infra/integration/enrichment"
	"github.com/maximepasquier/leadflow-api/internal/infra/queue"
)

const helpMessage = `Je peux vous aider à :
• rechercher des leads : "trouve-moi 5 leads RH à Paris"
• enrichir les fiches sans email : "enrichis tout"
• filtrer par statut : "montre les leads à relancer"
• filtrer par date : "les leads de cette semaine"
• envoyer les relances : "envoie les relances"
• recharger les données : "recharge"`

// handleCommand route les messages hors recherche vers un petit ensemble
// fixe de commandes. En dernier recours : le message d'aide.
func (s *ChatService) handleCommand(ctx context.Context, tenantID, text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(lower, "enrichis", "enrichir", "enrich"):
		return s.commandEnrichAll(ctx, tenantID)

	case matchStatus(lower) != "":
		return s.commandFilterByStatus(ctx, tenantID, matchStatus(lower))

	case containsAny(lower, "aujourd'hui", "today", "cette semaine", "this week", "depuis", "hier", "yesterday"):
		return s.commandFilterByDate(ctx, tenantID, lower)

	case containsAny(lower, "recharge", "actualise", "rafraîchis", "reload", "refresh"):
		return s.commandReload(ctx, tenantID)

	case containsAny(lower, "relance", "follow-up", "followup"):
		return s.commandSendFollowUps(ctx, tenantID)

	default:
		return helpMessage
	}
}

// commandEnrichAll complète les fiches "à contacter" sans email via le
// provider, une fiche à la fois.
func (s *ChatService) commandEnrichAll(ctx context.Context, tenantID string) string {
	leads, err := s.LeadRepo.ListByStatus(ctx, tenantID, entity.StatusToContact)
	if err != nil {
		log.Printf("❌ Enrichissement: lecture des leads impossible: %v", err)
		return "Impossible de récupérer vos leads pour le moment."
	}

	missing := 0
	enriched := 0
	for _, lead := range leads {
		if lead.Email != "" {
			continue
		}
		missing++

		result, err := s.Enricher.Search(ctx, tenantID, lead.FullName+" "+lead.Company, 1)
		if err != nil {
			if errors.Is(err, enrichment.ErrNotConfigured) {
				return "⚠️ L'enrichissement n'est pas configuré : ajoutez votre clé API dans les réglages."
			}
			log.Printf("⚠️ Enrichissement de %s en échec: %v", lead.FullName, err)
			continue
		}

		if len(result.Leads) > 0 && result.Leads[0].Email != "" {
			if err := s.LeadRepo.UpdateEmail(ctx, lead.ID, result.Leads[0].Email); err != nil {
				log.Printf("⚠️ Email enrichi non sauvegardé (%s): %v", lead.ID, err)
				continue
			}
			enriched++
		}
	}

	if missing == 0 {
		return "Toutes vos fiches ont déjà un email ✅"
	}
	return fmt.Sprintf("✨ %d fiche(s) enrichie(s) sur %d sans email.", enriched, missing)
}

func (s *ChatService) commandFilterByStatus(ctx context.Context, tenantID, status string) string {
	leads, err := s.LeadRepo.ListByStatus(ctx, tenantID, status)
	if err != nil {
		log.Printf("❌ Filtre par statut: %v", err)
		return "Impossible de récupérer vos leads pour le moment."
	}
	if len(leads) == 0 {
		return fmt.Sprintf("Aucun lead avec le statut « %s ».", status)
	}
	return fmt.Sprintf("%d lead(s) « %s » :\n%s", len(leads), status, formatLeadLines(leads))
}

func (s *ChatService) commandFilterByDate(ctx context.Context, tenantID, lower string) string {
	window := 7 * 24 * time.Hour
	label := "des 7 derniers jours"
	switch {
	case containsAny(lower, "aujourd'hui", "today"):
		window = 24 * time.Hour
		label = "d'aujourd'hui"
	case containsAny(lower, "hier", "yesterday"):
		window = 48 * time.Hour
		label = "depuis hier"
	case containsAny(lower, "cette semaine", "this week"):
		window = 7 * 24 * time.Hour
		label = "de cette semaine"
	}

	leads, err := s.LeadRepo.ListCreatedAfter(ctx, tenantID, time.Now().Add(-window))
	if err != nil {
		log.Printf("❌ Filtre par date: %v", err)
		return "Impossible de récupérer vos leads pour le moment."
	}
	if len(leads) == 0 {
		return fmt.Sprintf("Aucun lead %s.", label)
	}
	return fmt.Sprintf("%d lead(s) %s :\n%s", len(leads), label, formatLeadLines(leads))
}

func (s *ChatService) commandReload(ctx context.Context, tenantID string) string {
	s.Cache.Clear()

	leads, err := s.LeadRepo.ListCreatedAfter(ctx, tenantID, time.Time{})
	if err != nil {
		log.Printf("❌ Rechargement: %v", err)
		return "♻️ Cache vidé, mais le décompte des leads a échoué."
	}
	return fmt.Sprintf("♻️ Données rechargées : %d leads au total, cache de recherche vidé.", len(leads))
}

// commandSendFollowUps publie une relance par lead concerné ; l'envoi
// effectif (et la transition de statut) est fait par le worker de la file.
func (s *ChatService) commandSendFollowUps(ctx context.Context, tenantID string) string {
	var targets []entity.Lead
	for _, status := range []string{entity.StatusToContact, entity.StatusToFollowUp} {
		leads, err := s.LeadRepo.ListByStatus(ctx, tenantID, status)
		if err != nil {
			log.Printf("❌ Relances: lecture des leads impossible: %v", err)
			return "Impossible de récupérer vos leads pour le moment."
		}
		targets = append(targets, leads...)
	}

	queued := 0
	for _, lead := range targets {
		if lead.Email == "" {
			continue
		}
		payload := queue.FollowUpPayload{
			TenantID: lead.TenantID,
			LeadID:   lead.ID,
			Email:    lead.Email,
			FullName: lead.FullName,
			Company:  lead.Company,
			Status:   lead.Status,
		}
		if err := s.Producer.PublishFollowUp(ctx, payload); err != nil {
			log.Printf("⚠️ Relance non publiée (%s): %v", lead.ID, err)
			continue
		}
		middleware.RecordFollowUpQueued()
		queued++
	}

	if queued == 0 {
		return "Aucun lead à relancer pour le moment."
	}
	return fmt.Sprintf("📧 %d relance(s) programmée(s), les emails partent dans quelques instants.", queued)
}

// matchStatus cherche un statut connu dans le message. Les libellés longs
// d'abord, pour que « rendez-vous manqué » ne matche pas « rendez-vous ».
func matchStatus(lower string) string {
	ordered := []string{
		entity.StatusMeetingMissed,
		entity.StatusMeeting,
		entity.StatusCallScheduled,
		entity.StatusEmailSent,
		entity.StatusToFollowUp,
		entity.StatusToContact,
		entity.StatusResponded,
	}
	for _, status := range ordered {
		if strings.Contains(lower, status) {
			return status
		}
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
