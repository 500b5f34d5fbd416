// Package tidal is the target-catalog client: token acquisition, rate
// limiting, and the search endpoint the resolver consumes.
package tidal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	APIBase = "https://api.tidal.com/v1"
	AuthURL = "https://auth.tidal.com/v1/oauth2/token"

	imageBase = "https://resources.tidal.com/images/"

	// Search calls either complete or fail fast; a hung call must not
	// stall the whole batch.
	requestTimeout = 5 * time.Second
)

type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	countryCode string
}

// NewClient performs the client-credentials handshake up front. A failure
// here is fatal for the run: no resolution is possible without a token,
// so the caller should abort rather than degrade.
func NewClient(ctx context.Context, clientID, clientSecret, countryCode string) (*Client, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     AuthURL,
	}

	if _, err := config.Token(ctx); err != nil {
		return nil, fmt.Errorf("tidal auth: %w", err)
	}

	httpClient := config.Client(ctx)
	httpClient.Timeout = requestTimeout

	if countryCode == "" {
		countryCode = "FR"
	}

	return &Client{
		httpClient: httpClient,
		// 4 requests per second keeps us comfortably under the
		// unauthenticated-tier quota.
		limiter:     rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		countryCode: countryCode,
	}, nil
}

// do routes every outgoing call through the shared limiter so concurrent
// callers queue instead of bursting.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}
