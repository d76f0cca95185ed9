package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/maximepasquier/leadflow-api/internal/entity"
)

// FollowUpSender définit le contrat pour l'envoi effectif (SMTP, etc.)
type FollowUpSender interface {
	SendFollowUp(to, name, company string) error
}

type Worker struct {
	Channel  *amqp.Channel
	Mailer   FollowUpSender
	LeadRepo entity.LeadRepositoryInterface
}

func NewWorker(ch *amqp.Channel, mailer FollowUpSender, leadRepo entity.LeadRepositoryInterface) *Worker {
	return &Worker{
		Channel:  ch,
		Mailer:   mailer,
		LeadRepo: leadRepo,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // file
		"",        // consumer
		false,     // auto-ack (manuel, plus sûr)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Échec d'enregistrement du consommateur RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload FollowUpPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON invalide: %s", err)
				// Message malformé : on rejette sans requeue pour ne pas bloquer la file.
				d.Nack(false, false)
				continue
			}

			log.Printf("📧 [WORKER] Relance pour %s (%s)", payload.FullName, payload.Email)

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("❌ [WORKER] Erreur d'envoi: %s", err)
				d.Nack(false, false)
			} else {
				log.Printf("✅ [WORKER] Relance envoyée à %s", payload.Email)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker de relances en attente sur la file '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload FollowUpPayload) error {
	if payload.Email == "" {
		// Pas d'email : rien à envoyer, on ACK pour vider la file.
		log.Printf("⚠️ [WORKER] Lead %s sans email, relance ignorée", payload.LeadID)
		return nil
	}

	if err := w.Mailer.SendFollowUp(payload.Email, payload.FullName, payload.Company); err != nil {
		return err
	}

	// La transition de statut appartient à ce collaborateur externe,
	// jamais à la recherche elle-même.
	if err := w.LeadRepo.UpdateStatus(ctx, payload.LeadID, entity.StatusEmailSent); err != nil {
		log.Printf("⚠️ [WORKER] Email parti mais statut non mis à jour (%s): %v", payload.LeadID, err)
	}

	return nil
}
