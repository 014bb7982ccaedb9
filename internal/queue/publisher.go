package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/luciamoran/table-reservation/internal/logger"
	"github.com/luciamoran/table-reservation/internal/reservation"
)

// Publisher pushes reservation events onto the durable
// reservation.events queue. Each publish dials its own connection;
// errors are logged and returned so the caller can ignore them
// without interrupting the request flow. Messages are marked
// persistent.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher talking to the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish implements reservation.EventSink.
func (p *Publisher) Publish(ctx context.Context, evt reservation.Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.ErrorLogger.Errorf("queue: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.ErrorLogger.Errorf("queue: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		reservationQueueName, // name
		true,                 // durable
		false,                // autoDelete
		false,                // exclusive
		false,                // noWait
		nil,                  // args
	); err != nil {
		logger.ErrorLogger.Errorf("queue: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(newEnvelope(evt))
	if err != nil {
		logger.ErrorLogger.Errorf("queue: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                   // default exchange
		reservationQueueName, // routing key = queue name
		false,                // mandatory
		false,                // immediate
		pub,
	); err != nil {
		logger.ErrorLogger.Errorf("queue: publish failed: %v", err)
		return err
	}
	return nil
}
