package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventProposalCreated = "proposal.created"
	EventProposalUpdated = "proposal.updated"
	EventProposalDeleted = "proposal.deleted"
)

// ProposalEvent é publicado depois de cada gravação confirmada no armazenamento.
type ProposalEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	ProposalID string    `json:"proposal_id"`
	ClientName string    `json:"client_name,omitempty"`
	Status     string    `json:"status,omitempty"`
	Value      float64   `json:"value,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewProposalEvent(eventType, proposalID, clientName, status string, value float64) ProposalEvent {
	return ProposalEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		ProposalID: proposalID,
		ClientName: clientName,
		Status:     status,
		Value:      value,
		OccurredAt: time.Now().UTC(),
	}
}

// Channel é a parte do *amqp.Channel usada pelo produtor.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Channel
}

func NewProducer(ch Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishProposalEvent(ctx context.Context, event ProposalEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}
