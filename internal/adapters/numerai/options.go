package numerai

import (
	"net/http"
	"time"

	"github.com/okian/numerai-exporter/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithEndpoint sets the GraphQL endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithCredentials sets the API key pair used for authorized queries.
func WithCredentials(publicID, secret string) Option {
	return func(c *Client) {
		c.publicID = publicID
		c.secret = secret
	}
}

// WithTournament sets the tournament queried for rounds and performances.
func WithTournament(id int) Option {
	return func(c *Client) {
		if id > 0 {
			c.tournament = id
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records request metrics on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}
