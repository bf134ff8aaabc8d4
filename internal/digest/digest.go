// Package digest periodically fetches a joke for every subscribed chat
// and queues it for delivery.
package digest

import (
	"context"
	"fmt"
	"time"

	"jokebot/internal/config"
	"jokebot/internal/jokeapi"
	"jokebot/internal/models"
	"jokebot/internal/queue"
	"jokebot/pkg/logger"
)

type Queue interface {
	PublishDelivery(ctx context.Context, msg *queue.DeliveryMessage) error
}

type SubscriberSource interface {
	Subscribers(ctx context.Context) ([]*models.ChatPreferences, error)
}

type Fetcher interface {
	FetchOne(ctx context.Context, opts jokeapi.Options) (*jokeapi.Joke, error)
}

type Digest struct {
	cfg   config.DigestConfig
	jokes Fetcher
	subs  SubscriberSource
	q     Queue
}

func New(cfg config.DigestConfig, jokes Fetcher, subs SubscriberSource, q Queue) *Digest {
	return &Digest{
		cfg:   cfg,
		jokes: jokes,
		subs:  subs,
		q:     q,
	}
}

func (d *Digest) Start(ctx context.Context) error {
	if !d.cfg.Enabled {
		return nil
	}

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Run(ctx); err != nil {
				return fmt.Errorf("digest run failed: %w", err)
			}
		}
	}
}

// Run does one broadcast pass. A fetch failure for one chat skips that
// chat rather than aborting the whole pass.
func (d *Digest) Run(ctx context.Context) error {
	subscribers, err := d.subs.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}

	logger.Info("Running joke digest", logger.Int("subscribers", len(subscribers)))

	for _, prefs := range subscribers {
		joke, err := d.jokes.FetchOne(ctx, prefs.Options())
		if err != nil {
			logger.Error("Failed to fetch digest joke",
				logger.Err(err),
				logger.Int64("chat_id", prefs.ChatID),
			)
			continue
		}

		msg := &queue.DeliveryMessage{
			ChatID: prefs.ChatID,
			Text:   "*Joke of the day*\n\n" + joke.Content.String(),
		}

		if err := d.q.PublishDelivery(ctx, msg); err != nil {
			logger.Error("Failed to queue digest joke",
				logger.Err(err),
				logger.Int64("chat_id", prefs.ChatID),
			)
			continue
		}
	}

	return nil
}
