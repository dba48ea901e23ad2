package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ActionAddSelected = "add_selected"
	ActionAddAll      = "add_all_filtered"
	ActionRemoveOne   = "remove_one"
	ActionRemoveAll   = "remove_all"
)

// AudienceChangedEvent é publicado depois que o backend confirma uma mudança
// na audiência de uma campanha.
type AudienceChangedEvent struct {
	CampaignID string            `json:"campaign_id"`
	Action     string            `json:"action"`
	ContactIDs []string          `json:"contact_ids,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishAudienceChange(ctx context.Context, event AudienceChangedEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}

// LogProducer é usado quando RABBITMQ_URL não está configurado.
type LogProducer struct {
	Logger *zap.Logger
}

func (p LogProducer) PublishAudienceChange(_ context.Context, event AudienceChangedEvent) error {
	if p.Logger != nil {
		p.Logger.Debug("📭 broker desabilitado, evento só registrado",
			zap.String("campaign_id", event.CampaignID),
			zap.String("action", event.Action),
			zap.Int("contacts", len(event.ContactIDs)),
		)
	}
	return nil
}
