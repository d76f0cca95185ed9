package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type HealthHandler struct {
	db            *sql.DB
	amqpConn      *amqp.Connection
	enrichmentSet bool
}

func NewHealthHandler(db *sql.DB, amqpConn *amqp.Connection, enrichmentSet bool) *HealthHandler {
	return &HealthHandler{
		db:            db,
		amqpConn:      amqpConn,
		enrichmentSet: enrichmentSet,
	}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"database":   "ok",
		"queue":      "ok",
		"enrichment": "ok",
	}
	status := "healthy"
	httpStatus := http.StatusOK

	ctx := r.Context()
	if err := h.db.PingContext(ctx); err != nil {
		components["database"] = "down"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	if h.amqpConn == nil || h.amqpConn.IsClosed() {
		components["queue"] = "down"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	// Clé absente = dégradé mais pas en panne : le chat répond quand même,
	// seule la recherche est désactivée.
	if !h.enrichmentSet {
		components["enrichment"] = "not_configured"
		if status == "healthy" {
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(healthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now(),
	})
}
