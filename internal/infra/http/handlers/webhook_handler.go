package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

// WebhookHandler reçoit les événements du tracker d'emails (ouverture,
// réponse, bounce) et met à jour le statut du lead concerné.
type WebhookHandler struct {
	leadRepo entity.LeadRepositoryInterface
}

func NewWebhookHandler(leadRepo entity.LeadRepositoryInterface) *WebhookHandler {
	return &WebhookHandler{leadRepo: leadRepo}
}

type emailEventPayload struct {
	Event  string `json:"event"`
	LeadID string `json:"lead_id"`
}

func (h *WebhookHandler) HandleEmailEvent(w http.ResponseWriter, r *http.Request) {
	var payload emailEventPayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("⚠️ Webhook email: payload illisible: %v", err)
		writeError(w, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	if payload.LeadID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_LEAD_ID")
		return
	}

	var newStatus string
	switch payload.Event {
	case "replied":
		newStatus = entity.StatusResponded
	case "bounced":
		newStatus = entity.StatusToFollowUp
	default:
		// Événements non suivis (opened, delivered...) : on répond 200
		// pour que le tracker arrête de réessayer.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.leadRepo.UpdateStatus(r.Context(), payload.LeadID, newStatus); err != nil {
		log.Printf("❌ Webhook email: statut non mis à jour (%s): %v", payload.LeadID, err)
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR")
		return
	}

	log.Printf("📬 Lead %s passé à « %s » (événement %s)", payload.LeadID, newStatus, payload.Event)
	w.WriteHeader(http.StatusOK)
}
