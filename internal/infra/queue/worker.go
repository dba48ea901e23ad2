package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Watcher acompanha os eventos de audiência em uma fila exclusiva e
// temporária, sem disputar mensagens com os consumidores de q.audience-changes.
type Watcher struct {
	Channel *amqp.Channel
	Logger  *zap.Logger
}

func NewWatcher(ch *amqp.Channel, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{Channel: ch, Logger: logger}
}

// Start blocks until ctx is done or the delivery channel closes. campaignID
// filters events; empty means every campaign.
func (w *Watcher) Start(ctx context.Context, campaignID string, handle func(AudienceChangedEvent)) error {
	q, err := w.Channel.QueueDeclare(
		"",    // nome gerado pelo broker
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao declarar fila temporária: %w", err)
	}
	if err := w.Channel.QueueBind(q.Name, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("falha ao ligar fila temporária: %w", err)
	}

	msgs, err := w.Channel.Consume(
		q.Name, // fila
		"",     // consumer
		false,  // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info(" [*] aguardando eventos de audiência", zap.String("queue", q.Name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de entregas fechado pelo broker")
			}

			var event AudienceChangedEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				w.Logger.Warn("❌ evento com JSON inválido", zap.Error(err))
				d.Nack(false, false)
				continue
			}

			if campaignID == "" || event.CampaignID == campaignID {
				handle(event)
			}
			d.Ack(false)
		}
	}
}
