package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"threads-accounts/internal/model"
)

type FollowEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewFollowEventPublisher(conn *amqp.Connection, queueName string) *FollowEventPublisher {
	return &FollowEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *FollowEventPublisher) PublishFollowEvent(ctx context.Context, event model.FollowEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, p.queueName); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal follow event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
		},
	); err != nil {
		return fmt.Errorf("publish follow event failed: %w", err)
	}
	return nil
}
