package digest

import (
	"context"
	"errors"
	"testing"

	"jokebot/internal/config"
	"jokebot/internal/jokeapi"
	"jokebot/internal/models"
	"jokebot/internal/queue"
	"jokebot/pkg/logger"
)

func init() {
	logger.Init("error", nil)
}

type fakeQueue struct {
	deliveries []*queue.DeliveryMessage
}

func (q *fakeQueue) PublishDelivery(ctx context.Context, msg *queue.DeliveryMessage) error {
	q.deliveries = append(q.deliveries, msg)
	return nil
}

type fakeSubscribers struct {
	prefs []*models.ChatPreferences
	err   error
}

func (s *fakeSubscribers) Subscribers(ctx context.Context) ([]*models.ChatPreferences, error) {
	return s.prefs, s.err
}

type fakeFetcher struct {
	joke    *jokeapi.Joke
	err     error
	gotOpts []jokeapi.Options
}

func (f *fakeFetcher) FetchOne(ctx context.Context, opts jokeapi.Options) (*jokeapi.Joke, error) {
	f.gotOpts = append(f.gotOpts, opts)
	return f.joke, f.err
}

func TestRunPublishesOneJokePerSubscriber(t *testing.T) {
	subs := &fakeSubscribers{prefs: []*models.ChatPreferences{
		{ChatID: 1, SafeMode: true},
		{ChatID: 2, Language: jokeapi.LanguageGerman},
	}}
	fetcher := &fakeFetcher{joke: &jokeapi.Joke{
		Category: jokeapi.CategoryMisc,
		Content:  jokeapi.Single{Text: "ha"},
	}}
	q := &fakeQueue{}

	d := New(config.DigestConfig{Enabled: true}, fetcher, subs, q)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(q.deliveries) != 2 {
		t.Fatalf("len(deliveries) = %d, want 2", len(q.deliveries))
	}
	if q.deliveries[0].ChatID != 1 || q.deliveries[1].ChatID != 2 {
		t.Errorf("deliveries went to %d and %d", q.deliveries[0].ChatID, q.deliveries[1].ChatID)
	}

	// each fetch uses that chat's own filters
	if len(fetcher.gotOpts) != 2 {
		t.Fatalf("len(gotOpts) = %d, want 2", len(fetcher.gotOpts))
	}
	if !fetcher.gotOpts[0].Safe {
		t.Error("first fetch should use safe mode")
	}
	if fetcher.gotOpts[1].Language != jokeapi.LanguageGerman {
		t.Error("second fetch should use German")
	}
}

func TestRunSkipsFailedFetches(t *testing.T) {
	subs := &fakeSubscribers{prefs: []*models.ChatPreferences{
		{ChatID: 1},
	}}
	fetcher := &fakeFetcher{err: &jokeapi.StatusError{Code: 500}}
	q := &fakeQueue{}

	d := New(config.DigestConfig{Enabled: true}, fetcher, subs, q)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(q.deliveries) != 0 {
		t.Errorf("len(deliveries) = %d, want 0", len(q.deliveries))
	}
}

func TestRunSubscriberLookupError(t *testing.T) {
	lookupErr := errors.New("db down")
	d := New(config.DigestConfig{Enabled: true}, &fakeFetcher{}, &fakeSubscribers{err: lookupErr}, &fakeQueue{})

	err := d.Run(context.Background())
	if !errors.Is(err, lookupErr) {
		t.Errorf("Run() error = %v, want wrapped lookup error", err)
	}
}

func TestStartDisabled(t *testing.T) {
	d := New(config.DigestConfig{Enabled: false}, &fakeFetcher{}, &fakeSubscribers{}, &fakeQueue{})
	if err := d.Start(context.Background()); err != nil {
		t.Errorf("Start() with digest disabled should return nil, got %v", err)
	}
}
