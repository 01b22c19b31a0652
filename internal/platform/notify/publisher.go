package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Event is a delivery event emitted when a nudge or medicine reminder
// becomes deliverable. Consumers (push, SMS, email workers) subscribe to the
// queue and fan out to their channel.
type Event struct {
	Kind      string    `json:"kind"` // "nudge", "reminder", "prediction"
	PatientID string    `json:"patient_id"`
	RefID     string    `json:"ref_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Publisher emits delivery events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// AMQPPublisher publishes events to a RabbitMQ queue.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  zerolog.Logger
}

// NewAMQPPublisher dials the broker and declares the queue.
func NewAMQPPublisher(url, queue string, logger zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, queue: queue, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	p.logger.Debug().
		Str("kind", ev.Kind).
		Str("patient_id", ev.PatientID).
		Str("queue", p.queue).
		Msg("delivery event published")
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher discards events. Used when AMQP_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) error { return nil }
func (NopPublisher) Close() error                                { return nil }
