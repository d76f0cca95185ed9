package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// FollowUpPayload : une relance par lead, publiée par la commande
// "envoie les relances" et consommée par le worker d'emails.
type FollowUpPayload struct {
	TenantID string `json:"tenant_id"`
	LeadID   string `json:"lead_id"`

	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Company  string `json:"company"`
	Status   string `json:"status"`
}

type FollowUpProducerInterface interface {
	PublishFollowUp(ctx context.Context, payload FollowUpPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishFollowUp(ctx context.Context, payload FollowUpPayload) error {

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erreur de conversion du payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName, // ex.leads
		RoutingKey,   // k.followup
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Message persisté sur disque
		},
	)

	if err != nil {
		return fmt.Errorf("échec de publication RabbitMQ: %v", err)
	}

	return nil
}
