package worker

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// RelanceWorker passe en "à relancer" les leads dont l'email est parti
// depuis plus de 7 jours sans réponse. La relance elle-même est déclenchée
// à la demande, via la commande "envoie les relances".
type RelanceWorker struct {
	db           *sql.DB
	silentWindow time.Duration
	tickInterval time.Duration
}

func NewRelanceWorker(db *sql.DB) *RelanceWorker {
	return &RelanceWorker{
		db:           db,
		silentWindow: 7 * 24 * time.Hour, // 7 jours sans réponse
		tickInterval: 1 * time.Hour,
	}
}

func (w *RelanceWorker) Start(ctx context.Context) {
	log.Println("🕒 Relance Worker démarré (fenêtre 7 jours)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.flagSilentLeads(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Relance Worker arrêté")
			return
		case <-ticker.C:
			w.flagSilentLeads(ctx)
		}
	}
}

func (w *RelanceWorker) flagSilentLeads(ctx context.Context) {
	query := `
		UPDATE leads
		SET
			status = 'à relancer',
			updated_at = NOW()
		WHERE
			status = 'email envoyé'
			AND updated_at < NOW() - INTERVAL '7 days'
		RETURNING id, tenant_id, updated_at
	`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ Erreur en cherchant les leads silencieux: %v", err)
		return
	}
	defer rows.Close()

	flaggedCount := 0
	for rows.Next() {
		var leadID, tenantID string
		var updatedAt time.Time

		if err := rows.Scan(&leadID, &tenantID, &updatedAt); err != nil {
			log.Printf("⚠️ Erreur de scan sur un lead silencieux: %v", err)
			continue
		}

		elapsed := time.Since(updatedAt)
		log.Printf("⏱️ Lead silencieux: lead=%s tenant=%s elapsed=%s",
			leadID, tenantID, elapsed.Round(time.Hour))
		flaggedCount++
	}

	if flaggedCount > 0 {
		log.Printf("✅ %d lead(s) passés à « à relancer »", flaggedCount)
	}
}
