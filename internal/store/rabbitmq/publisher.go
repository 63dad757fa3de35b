package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// failed jobs wait this long in the retry queue before flowing back
	// to the main queue
	RetryDelay = 15 * time.Second

	// attempts before a delivery is parked in the DLQ
	MaxRetries = 3

	retryCountHeader = "x-retry-count"
)

type queueSpec struct {
	name string
	args amqp.Table
}

// topology is the queue set every connecting process must agree on:
// redeclaring an existing queue with different arguments is a channel
// error (PRECONDITION_FAILED) in RabbitMQ.
func topology(queue string) []queueSpec {
	return []queueSpec{
		// DLQ first, the others dead-letter into it
		{name: queue + ".dlq"},
		// retry: message TTL -> dead-letter back to main queue
		{name: queue + ".retry", args: amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
			"x-message-ttl":             int64(RetryDelay / time.Millisecond),
		}},
		// main: dead-letter to DLQ on reject/nack(requeue=false)
		{name: queue, args: amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue + ".dlq",
		}},
	}
}

// Declare sets up the main/retry/dlq queues on ch. Both the publisher
// and the worker declare through here so their arguments never drift.
func Declare(ch *amqp.Channel, queue string) error {
	for _, q := range topology(queue) {
		if _, err := ch.QueueDeclare(
			q.name,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false,
			q.args,
		); err != nil {
			return err
		}
	}
	return nil
}

// RetryCount reads the attempt counter off a delivery's headers.
func RetryCount(h amqp.Table) int {
	switch v := h[retryCountHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

func retryHeaders(d amqp.Delivery) amqp.Table {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[retryCountHeader] = int32(RetryCount(d.Headers) + 1)
	return headers
}

// Requeue schedules a failed delivery for another attempt by
// publishing it to the retry queue with a bumped counter. The caller
// still has to Ack the original delivery.
func Requeue(ctx context.Context, ch *amqp.Channel, queue string, d amqp.Delivery) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(cctx,
		"",              // default exchange
		queue+".retry",  // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  d.ContentType,
			DeliveryMode: amqp.Persistent,
			Headers:      retryHeaders(d),
			Body:         d.Body,
			Timestamp:    time.Now(),
		},
	)
}

// Publisher enqueues matching job ids for the worker process.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

type JobMessage struct {
	JobID string `json:"job_id"`
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := Declare(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) Dispatch(ctx context.Context, jobID string) error {
	body, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
