// Package dispatch orchestrates one delivery attempt: fallback destination
// lookup, credential resolution, token acquisition, payload build, send,
// and the unconditional audit record.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/noticetake/push-relay/internal/audit"
	"github.com/noticetake/push-relay/internal/platform/hms"
	"github.com/noticetake/push-relay/pkg/push"
)

// CredentialSource resolves per-provider credentials.
type CredentialSource interface {
	Resolve(provider push.Provider) (push.Credentials, error)
}

// FCMSender delivers one notification through FCM.
type FCMSender interface {
	Dispatch(ctx context.Context, creds push.FCMCredentials, req push.Request) (string, error)
}

// TokenSource performs the HMS OAuth2 client-credentials exchange.
type TokenSource interface {
	Acquire(ctx context.Context, clientID, clientSecret string) (string, error)
}

// HMSSender performs the HMS messages:send call.
type HMSSender interface {
	Send(ctx context.Context, accessToken, appID string, env hms.Envelope) (map[string]any, error)
}

// Recorder appends one audit event per dispatch attempt.
type Recorder interface {
	Record(name string, status audit.Status, payload, result map[string]any, cause error)
}

// Audit event names, one per inbound operation.
const (
	eventFCMSend = "push.send"
	eventHMSSend = "hms.send"
)

// Dispatcher implements push.Dispatcher over the injected provider ports.
// It owns the lifecycle of a single request's access token and result;
// neither outlives the call.
type Dispatcher struct {
	creds    CredentialSource
	fcm      FCMSender
	tokens   TokenSource
	hms      HMSSender
	fallback push.FallbackTokenStore
	audit    Recorder
	logger   *slog.Logger
}

func NewDispatcher(
	creds CredentialSource,
	fcmSender FCMSender,
	tokens TokenSource,
	hmsSender HMSSender,
	fallback push.FallbackTokenStore,
	recorder Recorder,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		creds:    creds,
		fcm:      fcmSender,
		tokens:   tokens,
		hms:      hmsSender,
		fallback: fallback,
		audit:    recorder,
		logger:   logger.With("component", "Dispatcher"),
	}
}

// Send performs one dispatch. Every path, success or failure, produces
// exactly one audit event before the result or error is returned.
func (d *Dispatcher) Send(ctx context.Context, req push.Request) (*push.Result, error) {
	switch req.Provider {
	case push.ProviderFCM:
		return d.sendFCM(ctx, req)
	case push.ProviderHMS:
		return d.sendHMS(ctx, req)
	default:
		// Callers validate before dispatch; this guards direct misuse.
		return nil, &push.ValidationError{Field: "provider", Reason: "unknown provider"}
	}
}

func (d *Dispatcher) sendFCM(ctx context.Context, req push.Request) (result *push.Result, err error) {
	defer func() {
		payload := map[string]any{
			"token": req.Token,
			"title": req.Title,
		}
		d.audit.Record(eventFCMSend, statusOf(err), payload, responseOf(result), err)
	}()

	creds, err := d.creds.Resolve(push.ProviderFCM)
	if err != nil {
		return nil, err
	}

	id, err := d.fcm.Dispatch(ctx, *creds.FCM, req)
	if err != nil {
		return nil, err
	}

	d.logger.Info("FCM dispatched", "message_id", id)
	return &push.Result{
		MessageID: id,
		Response:  map[string]any{"message_id": id},
	}, nil
}

func (d *Dispatcher) sendHMS(ctx context.Context, req push.Request) (result *push.Result, err error) {
	token := req.Token
	var hmsCreds push.HMSCredentials

	defer func() {
		payload := map[string]any{
			"token":         token,
			"title":         req.Title,
			"body":          req.Body,
			"data":          req.Data,
			"channel_id":    req.ChannelID,
			"app_id":        hmsCreds.AppID,
			"client_id":     hmsCreds.ClientID,
			"client_secret": hmsCreds.ClientSecret,
		}
		d.audit.Record(eventHMSSend, statusOf(err), payload, responseOf(result), err)
	}()

	if token == "" {
		token, err = d.fallback.Fetch(ctx)
		if err != nil {
			err = &push.StorageError{Op: "fetch", Cause: err}
			return nil, err
		}
		if token == "" {
			return nil, push.ErrMissingDestination
		}
	}

	creds, err := d.creds.Resolve(push.ProviderHMS)
	if err != nil {
		return nil, err
	}
	hmsCreds = *creds.HMS

	// A fresh token per dispatch; no caching across requests.
	accessToken, err := d.tokens.Acquire(ctx, hmsCreds.ClientID, hmsCreds.ClientSecret)
	if err != nil {
		return nil, err
	}

	envelope := hms.NewEnvelope(token, req)
	response, err := d.hms.Send(ctx, accessToken, hmsCreds.AppID, envelope)
	if err != nil {
		return nil, err
	}

	id := messageID(response)
	d.logger.Info("HMS dispatched", "message_id", id)
	return &push.Result{MessageID: id, Response: response}, nil
}

func statusOf(err error) audit.Status {
	if err != nil {
		return audit.StatusError
	}
	return audit.StatusOK
}

func responseOf(result *push.Result) map[string]any {
	if result == nil {
		return nil
	}
	return result.Response
}

// messageID pulls a provider-assigned identifier out of the HMS response
// when one is present; the full response still travels verbatim.
func messageID(response map[string]any) string {
	for _, key := range []string{"requestId", "msg_id", "message_id"} {
		if v, ok := response[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
