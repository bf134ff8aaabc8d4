package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jokebot/internal/config"
	"jokebot/pkg/logger"

	"github.com/nats-io/nats.go"
)

const (
	DeliverySubject = "jokes.deliver"
	ConsumerGroup   = "jokebot"
)

type NATS struct {
	conn      *nats.Conn
	jetstream nats.JetStream
	cfg       config.NATSConfig
}

func New(cfg config.NATSConfig) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to get JetStream: %w", err)
	}

	n := &NATS{
		conn:      conn,
		jetstream: js,
		cfg:       cfg,
	}

	return n, nil
}

func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// DeliveryMessage is one formatted joke on its way to a chat. The
// digest and the bot handlers both publish these; the bot's consumer
// does the actual Telegram send.
type DeliveryMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (n *NATS) PublishDelivery(ctx context.Context, msg *DeliveryMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}

	_, err = n.jetstream.Publish(DeliverySubject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish delivery: %w", err)
	}

	logger.Debug("Delivery published to queue",
		logger.Int64("chat_id", msg.ChatID),
	)

	return nil
}

func (n *NATS) ConsumeDeliveries(ctx context.Context, handler func(*DeliveryMessage) error) error {
	sub, err := n.jetstream.PullSubscribe(
		DeliverySubject,
		ConsumerGroup,
		nats.BindStream(n.cfg.StreamName),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to deliveries: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msgs, err := sub.Fetch(10, nats.MaxWait(500*time.Millisecond))
			if err != nil {
				if err == nats.ErrTimeout {
					continue
				}
				return fmt.Errorf("failed to fetch messages: %w", err)
			}

			for _, msg := range msgs {
				var delivery DeliveryMessage
				if err := json.Unmarshal(msg.Data, &delivery); err != nil {
					logger.Error("Failed to unmarshal delivery message",
						logger.Err(err),
					)
					msg.Nak()
					continue
				}

				if err := handler(&delivery); err != nil {
					logger.Error("Failed to deliver joke",
						logger.Err(err),
						logger.Int64("chat_id", delivery.ChatID),
					)
					msg.Nak()
					continue
				}

				msg.Ack()
			}
		}
	}
}
