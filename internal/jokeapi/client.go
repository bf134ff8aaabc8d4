package jokeapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public JokeAPI v2 endpoint.
const DefaultBaseURL = "https://v2.jokeapi.dev/joke/"

const userAgent = "jokebot/1.0"

// Client fetches jokes from the API. It holds no per-request state and
// is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		c.baseURL = base
	}
}

// FetchOne fetches a single joke matching the options.
func (c *Client) FetchOne(ctx context.Context, opts Options) (*Joke, error) {
	body, err := c.get(ctx, opts.requestURL(c.baseURL, 1))
	if err != nil {
		return nil, err
	}
	return decodeJoke(body)
}

// FetchMany fetches up to n jokes in one request. n == 0 returns an
// empty result without touching the network; n == 1 behaves exactly
// like FetchOne. The API caps a single request at 10 jokes and may
// return fewer than requested.
func (c *Client) FetchMany(ctx context.Context, n int, opts Options) ([]*Joke, error) {
	if n <= 0 {
		return nil, nil
	}

	if n == 1 {
		j, err := c.FetchOne(ctx, opts)
		if err != nil {
			return nil, err
		}
		return []*Joke{j}, nil
	}

	body, err := c.get(ctx, opts.requestURL(c.baseURL, n))
	if err != nil {
		return nil, err
	}
	return decodeJokes(body)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return body, nil
}
