// Package numerai is the GraphQL client for the Numerai tournament API.
package numerai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/okian/numerai-exporter/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Default client configuration constants.
const (
	DefaultEndpoint   = "https://api-tournament.numer.ai"
	SignalsTournament = 11
	defaultTimeout    = 30 * time.Second
)

const (
	listModelsQuery = `
query {
  account {
    models {
      id
      name
    }
  }
}`

	roundPerformancesQuery = `
query($tournament: Int!, $modelId: String) {
  v2RoundModelPerformances(tournament: $tournament, modelId: $modelId) {
    atRisk
    prevWeekTurnoverMax
    roundResolved
    roundNumber
    roundPayoutFactor
    submissionScores {
      displayName
      percentile
      payoutPending
      payoutSettled
      value
    }
  }
}`

	latestRoundQuery = `
query($tournament: Int!, $limit: Int!) {
  rounds(tournament: $tournament, limit: $limit) {
    number
  }
}`

	nmrPriceQuery = `
query {
  latestNmrPrice {
    priceUsd
  }
}`
)

// Client queries the tournament API.
type Client struct {
	endpoint   string
	publicID   string
	secret     string
	tournament int
	httpClient *http.Client
	metrics    *metrics.Manager
}

// NewClient creates a client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		tournament: SignalsTournament,
		httpClient: &http.Client{Timeout: defaultTimeout},
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.endpoint = strings.TrimRight(c.endpoint, "/")
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// query posts a GraphQL query and decodes its data field into out.
// op names the query in request metrics.
func (c *Client) query(ctx context.Context, op, q string, vars map[string]any, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.RecordAPIRequest(op, err, time.Since(start)) }()

	payload, err := json.Marshal(graphQLRequest{Query: q, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.publicID != "" && c.secret != "" {
		req.Header.Set("Authorization", "Token "+c.publicID+"$"+c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var gr graphQLResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// ListModels returns the account's models ordered by name.
func (c *Client) ListModels(ctx context.Context) ([]model.Model, error) {
	var data struct {
		Account struct {
			Models []model.Model `json:"models"`
		} `json:"account"`
	}
	if err := c.query(ctx, "models", listModelsQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	models := data.Account.Models
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// RoundPerformances returns a model's round records, most recent first.
func (c *Client) RoundPerformances(ctx context.Context, modelID string) ([]model.RoundRecord, error) {
	var data struct {
		Performances []model.RoundRecord `json:"v2RoundModelPerformances"`
	}
	vars := map[string]any{"tournament": c.tournament, "modelId": modelID}
	if err := c.query(ctx, "round_performances", roundPerformancesQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("round performances of %s: %w", modelID, err)
	}
	return model.SortRounds(data.Performances), nil
}

// LatestRound returns the number of the tournament's most recent round.
func (c *Client) LatestRound(ctx context.Context) (int, error) {
	var data struct {
		Rounds []struct {
			Number int `json:"number"`
		} `json:"rounds"`
	}
	vars := map[string]any{"tournament": c.tournament, "limit": 1}
	if err := c.query(ctx, "latest_round", latestRoundQuery, vars, &data); err != nil {
		return 0, fmt.Errorf("latest round: %w", err)
	}
	if len(data.Rounds) == 0 {
		return 0, fmt.Errorf("latest round: %w: no rounds", ErrUnexpectedResponse)
	}
	return data.Rounds[0].Number, nil
}

// NMRPriceUSD returns the latest NMR price in USD.
func (c *Client) NMRPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	var data struct {
		LatestNmrPrice struct {
			PriceUSD decimal.NullDecimal `json:"priceUsd"`
		} `json:"latestNmrPrice"`
	}
	if err := c.query(ctx, "nmr_price", nmrPriceQuery, nil, &data); err != nil {
		return decimal.Decimal{}, fmt.Errorf("nmr price: %w", err)
	}
	if !data.LatestNmrPrice.PriceUSD.Valid {
		return decimal.Decimal{}, fmt.Errorf("nmr price: %w: null price", ErrUnexpectedResponse)
	}
	return data.LatestNmrPrice.PriceUSD.Decimal, nil
}
