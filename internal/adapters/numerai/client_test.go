package numerai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/numerai-exporter/internal/adapters/numerai"
	"github.com/smartystreets/goconvey/convey"
)

type capturedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
	Auth      string
}

// newServer answers every request with body and records what it received.
func newServer(status int, body string, got *capturedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			_ = json.Unmarshal(raw, got)
			got.Auth = r.Header.Get("Authorization")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestClient_RoundPerformances(t *testing.T) {
	convey.Convey("Given a server returning round performances out of order", t, func() {
		body := `{"data":{"v2RoundModelPerformances":[
			{"roundNumber":4,"roundResolved":false,"roundPayoutFactor":"0.5","atRisk":null,"prevWeekTurnoverMax":0.12,
			 "submissionScores":[{"displayName":"alpha","value":0.04,"percentile":0.8,"payoutPending":"1.5","payoutSettled":null}]},
			{"roundNumber":5,"roundResolved":true,"roundPayoutFactor":1.0,"atRisk":"100.25","prevWeekTurnoverMax":null,
			 "submissionScores":[]}
		]}}`
		var got capturedRequest
		srv := newServer(http.StatusOK, body, &got)
		defer srv.Close()

		c := numerai.NewClient(
			numerai.WithEndpoint(srv.URL+"/"),
			numerai.WithCredentials("pub", "sec"),
			numerai.WithTournament(8),
		)

		convey.Convey("When fetching performances", func() {
			records, err := c.RoundPerformances(context.Background(), "model-1")

			convey.Convey("Then records should be decoded most recent first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(records), convey.ShouldEqual, 2)
				convey.So(records[0].RoundNumber, convey.ShouldEqual, 5)
				convey.So(records[0].RoundResolved, convey.ShouldBeTrue)
				convey.So(records[0].AtRisk.Decimal.String(), convey.ShouldEqual, "100.25")
				convey.So(records[0].PrevWeekTurnoverMax.Valid, convey.ShouldBeFalse)
			})

			convey.Convey("And numbers and strings should both decode as decimals", func() {
				r4 := records[1]
				convey.So(r4.RoundPayoutFactor.Decimal.String(), convey.ShouldEqual, "0.5")
				convey.So(r4.AtRisk.Valid, convey.ShouldBeFalse)
				convey.So(r4.SubmissionScores[0].Value.Decimal.String(), convey.ShouldEqual, "0.04")
				convey.So(r4.SubmissionScores[0].PayoutPending.Decimal.String(), convey.ShouldEqual, "1.5")
				convey.So(r4.SubmissionScores[0].PayoutSettled.Valid, convey.ShouldBeFalse)
			})

			convey.Convey("And the request should carry auth and variables", func() {
				convey.So(got.Auth, convey.ShouldEqual, "Token pub$sec")
				convey.So(got.Query, convey.ShouldContainSubstring, "v2RoundModelPerformances")
				convey.So(got.Variables["modelId"], convey.ShouldEqual, "model-1")
				convey.So(got.Variables["tournament"], convey.ShouldEqual, 8.0)
			})
		})
	})
}

func TestClient_Queries(t *testing.T) {
	convey.Convey("Given a server listing models", t, func() {
		srv := newServer(http.StatusOK, `{"data":{"account":{"models":[{"id":"b","name":"zeta"},{"id":"a","name":"alpha"}]}}}`, nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then models should be sorted by name", func() {
			models, err := c.ListModels(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(models), convey.ShouldEqual, 2)
			convey.So(models[0].Name, convey.ShouldEqual, "alpha")
			convey.So(models[0].ID, convey.ShouldEqual, "a")
		})
	})

	convey.Convey("Given a server returning rounds", t, func() {
		var got capturedRequest
		srv := newServer(http.StatusOK, `{"data":{"rounds":[{"number":812}]}}`, &got)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then the latest round should be returned", func() {
			n, err := c.LatestRound(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 812)
			convey.So(got.Variables["limit"], convey.ShouldEqual, 1.0)
			convey.So(got.Variables["tournament"], convey.ShouldEqual, float64(numerai.SignalsTournament))
			convey.So(got.Auth, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a server returning no rounds", t, func() {
		srv := newServer(http.StatusOK, `{"data":{"rounds":[]}}`, nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then it should report an unexpected response", func() {
			_, err := c.LatestRound(context.Background())
			convey.So(errors.Is(err, numerai.ErrUnexpectedResponse), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a server returning the NMR price", t, func() {
		srv := newServer(http.StatusOK, `{"data":{"latestNmrPrice":{"priceUsd":"9.87"}}}`, nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then the price should be decoded exactly", func() {
			price, err := c.NMRPriceUSD(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(price.String(), convey.ShouldEqual, "9.87")
		})
	})
}

func TestClient_Errors(t *testing.T) {
	convey.Convey("Given a server failing with a status code", t, func() {
		srv := newServer(http.StatusUnauthorized, "denied", nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then an APIError should be returned", func() {
			_, err := c.ListModels(context.Background())
			var apiErr *numerai.APIError
			convey.So(errors.As(err, &apiErr), convey.ShouldBeTrue)
			convey.So(apiErr.Status, convey.ShouldEqual, http.StatusUnauthorized)
			convey.So(apiErr.Body, convey.ShouldEqual, "denied")
		})
	})

	convey.Convey("Given a server returning GraphQL errors", t, func() {
		srv := newServer(http.StatusOK, `{"data":null,"errors":[{"message":"bad token"},{"message":"try again"}]}`, nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then the messages should be joined into ErrGraphQL", func() {
			_, err := c.RoundPerformances(context.Background(), "m")
			convey.So(errors.Is(err, numerai.ErrGraphQL), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "bad token; try again")
		})
	})

	convey.Convey("Given a server returning malformed JSON", t, func() {
		srv := newServer(http.StatusOK, `{"data":`, nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))

		convey.Convey("Then it should report an unexpected response", func() {
			_, err := c.NMRPriceUSD(context.Background())
			convey.So(errors.Is(err, numerai.ErrUnexpectedResponse), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a cancelled context", t, func() {
		srv := newServer(http.StatusOK, `{"data":{}}`, nil)
		defer srv.Close()
		c := numerai.NewClient(numerai.WithEndpoint(srv.URL))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the request should fail", func() {
			_, err := c.ListModels(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(strings.Contains(err.Error(), "request failed"), convey.ShouldBeTrue)
		})
	})
}
