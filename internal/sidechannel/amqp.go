package sidechannel

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPPublisher delivers data cards over a durable direct exchange, one
// routing key (topic) per deployment. Messages are published persistent
// so a briefly absent consumer still receives them in order.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	topic    string
	log      zerolog.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange, queue and
// binding for the card topic.
func NewAMQPPublisher(url, exchange, topic string, log zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		topic:    topic,
		log:      log,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *AMQPPublisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.topic, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = p.channel.QueueBind(
		p.topic,    // queue name
		p.topic,    // routing key
		p.exchange, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishCard implements Publisher.
func (p *AMQPPublisher) PublishCard(ctx context.Context, card *Card) error {
	body, err := card.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		p.topic,    // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish card: %w", err)
	}

	p.log.Info().
		Str("session_id", card.SessionID).
		Str("topic", p.topic).
		Msg("Published data card")

	return nil
}

// ConsumeCards delivers published cards to handler until ctx is done.
// Malformed payloads are rejected without requeue.
func (p *AMQPPublisher) ConsumeCards(ctx context.Context, handler func(*Card) error) error {
	msgs, err := p.channel.Consume(
		p.topic, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			card, err := CardFromJSON(delivery.Body)
			if err != nil {
				p.log.Error().Err(err).Msg("Failed to unmarshal card")
				delivery.Nack(false, false)
				continue
			}

			if err := handler(card); err != nil {
				p.log.Error().Err(err).Str("session_id", card.SessionID).Msg("Card handler failed")
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

// Close implements Publisher.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
