package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"threads-accounts/internal/metrics"
	"threads-accounts/internal/model"
)

var errMalformedEvent = errors.New("malformed follow event")

type ProfileInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// FollowEventWorker drops cached profiles of both users touched by a follow
// toggle.
type FollowEventWorker struct {
	conn      *amqp.Connection
	profiles  ProfileInvalidator
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFollowEventWorker(conn *amqp.Connection, profiles ProfileInvalidator, m *metrics.Metrics, log logrus.FieldLogger, queueName string) *FollowEventWorker {
	return &FollowEventWorker{
		conn:      conn,
		profiles:  profiles,
		metrics:   m,
		log:       log.WithField("worker", "follow_events"),
		queueName: queueName,
	}
}

func (w *FollowEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	if err := ch.Qos(32, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.deliver(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *FollowEventWorker) deliver(ctx context.Context, d amqp.Delivery) {
	err := w.Handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errMalformedEvent):
		w.log.WithError(err).Warn("drop follow event")
		_ = d.Nack(false, false)
	default:
		w.log.WithError(err).Error("handle follow event failed")
		_ = d.Nack(false, !d.Redelivered)
	}
}

// Handle processes one encoded follow event.
func (w *FollowEventWorker) Handle(ctx context.Context, body []byte) error {
	var event model.FollowEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if event.FollowerID == "" || event.FolloweeID == "" {
		return fmt.Errorf("%w: missing user id", errMalformedEvent)
	}

	if err := w.profiles.InvalidateUser(ctx, event.FollowerID); err != nil {
		return err
	}
	if err := w.profiles.InvalidateUser(ctx, event.FolloweeID); err != nil {
		return err
	}

	w.metrics.ObserveFollowEvent(event.Type)
	w.log.WithFields(logrus.Fields{
		"type":        event.Type,
		"follower_id": event.FollowerID,
		"followee_id": event.FolloweeID,
	}).Debug("follow event applied")
	return nil
}

func (w *FollowEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
