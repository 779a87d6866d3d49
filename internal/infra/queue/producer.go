package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/growthkit/leadflow/internal/entity"
)

// HandoffProducer publishes approved-lead payloads for the outreach side.
// It implements usecase.HandoffPublisher.
type HandoffProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *HandoffProducer {
	return &HandoffProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *HandoffProducer) PublishHandoff(ctx context.Context, payload entity.HandoffPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal handoff payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish handoff: %w", err)
	}

	return nil
}
