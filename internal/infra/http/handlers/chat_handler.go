package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/maximepasquier/leadflow-api/internal/usecase"
)

type ChatHandler struct {
	ChatService *usecase.ChatService
}

func NewChatHandler(chatService *usecase.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: chatService}
}

func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChatInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	output, err := h.ChatService.HandleMessage(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeError(w, http.StatusBadRequest, err.(*usecase.DomainError).Code)
			return
		}
		log.Printf("❌ Chat: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(output)
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}
