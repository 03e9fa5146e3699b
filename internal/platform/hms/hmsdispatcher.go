package hms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/noticetake/push-relay/pkg/push"
)

// DefaultPushBaseURL is the Huawei production push API host.
const DefaultPushBaseURL = "https://push-api.cloud.huawei.com"

// Dispatcher sends a built envelope to the HMS messages:send endpoint.
type Dispatcher struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewDispatcher(baseURL string, logger *slog.Logger) *Dispatcher {
	if baseURL == "" {
		baseURL = DefaultPushBaseURL
	}
	client := resty.New()
	client.SetTimeout(callTimeout)
	client.SetRetryCount(0)

	return &Dispatcher{
		client:  client,
		baseURL: baseURL,
		logger:  logger.With("component", "HMSDispatcher"),
	}
}

// Send posts the envelope and returns the provider response body
// decoded verbatim. Non-2xx responses become a SendError carrying the
// upstream status and body.
func (d *Dispatcher) Send(ctx context.Context, accessToken, appID string, env Envelope) (map[string]any, error) {
	url := fmt.Sprintf("%s/v1/%s/messages:send", d.baseURL, appID)

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json;charset=UTF-8").
		SetAuthToken(accessToken).
		SetBody(env).
		Post(url)
	if err != nil {
		return nil, &push.SendError{Provider: push.ProviderHMS, Cause: err}
	}

	if resp.IsError() {
		return nil, &push.SendError{
			Provider:   push.ProviderHMS,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	result := map[string]any{}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		d.logger.Warn("HMS returned a non-JSON success body", "error", err)
		result = map[string]any{"raw": resp.String()}
	}
	return result, nil
}
