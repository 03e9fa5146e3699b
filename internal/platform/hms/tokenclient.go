// Package hms implements the Huawei push provider: the OAuth2
// client-credentials token exchange, the wire payload, and the send call.
package hms

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/noticetake/push-relay/pkg/push"
)

const (
	// DefaultTokenURL is the Huawei production OAuth2 token endpoint.
	DefaultTokenURL = "https://oauth-login.cloud.huawei.com/oauth2/v3/token"

	// Each HMS call runs against a fixed 10 second deadline.
	callTimeout = 10 * time.Second
)

// TokenClient performs the OAuth2 client-credentials grant. It is
// stateless: every call is a fresh exchange, no token is cached across
// dispatches.
type TokenClient struct {
	client   *resty.Client
	tokenURL string
	logger   *slog.Logger
}

func NewTokenClient(tokenURL string, logger *slog.Logger) *TokenClient {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	client := resty.New()
	client.SetTimeout(callTimeout)
	client.SetRetryCount(0)

	return &TokenClient{
		client:   client,
		tokenURL: tokenURL,
		logger:   logger.With("component", "HMSTokenClient"),
	}
}

// Acquire exchanges the client credentials for a bearer access token.
// A single failed attempt surfaces immediately; there is no retry.
func (c *TokenClient) Acquire(ctx context.Context, clientID, clientSecret string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     clientID,
			"client_secret": clientSecret,
		}).
		Post(c.tokenURL)
	if err != nil {
		return "", &push.TokenError{Cause: err}
	}

	body := resp.String()
	if resp.IsError() {
		return "", &push.TokenError{StatusCode: resp.StatusCode(), Body: body}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil || parsed.AccessToken == "" {
		return "", &push.TokenError{Body: body}
	}

	return parsed.AccessToken, nil
}
