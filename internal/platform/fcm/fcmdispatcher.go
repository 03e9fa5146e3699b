// Package fcm implements the Firebase Cloud Messaging provider.
package fcm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/noticetake/push-relay/pkg/push"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// This interface allows us to mock the client for unit testing.
type MessagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// ClientFactory builds the messaging client from resolved credentials.
type ClientFactory func(ctx context.Context, creds push.FCMCredentials) (MessagingClient, error)

// Dispatcher sends one notification per call. The underlying Firebase app
// is a process-wide handle, initialized lazily and reused once a first
// dispatch succeeds in building it. Only success is cached: a failed
// initialization is retried on the next dispatch.
type Dispatcher struct {
	factory ClientFactory
	logger  *slog.Logger

	mu     sync.Mutex
	client MessagingClient
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		factory: newMessagingClient,
		logger:  logger.With("component", "FCMDispatcher"),
	}
}

// NewDispatcherWithClient injects a pre-built client. Used by tests.
func NewDispatcherWithClient(client MessagingClient, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With("component", "FCMDispatcher"),
	}
}

// NewMessage builds the FCM wire payload for an already-validated request:
// notification title/body, the optional flat data map, and the destination
// token. No Android/iOS-specific fields.
func NewMessage(req push.Request) *messaging.Message {
	msg := &messaging.Message{
		Token: req.Token,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
	}
	if len(req.Data) > 0 {
		msg.Data = req.Data
	}
	return msg
}

// Dispatch sends the notification and returns the provider-assigned
// message identifier.
func (d *Dispatcher) Dispatch(ctx context.Context, creds push.FCMCredentials, req push.Request) (string, error) {
	client, err := d.messagingClient(ctx, creds)
	if err != nil {
		return "", &push.SendError{Provider: push.ProviderFCM, Cause: fmt.Errorf("fcm client init: %w", err)}
	}

	id, err := client.Send(ctx, NewMessage(req))
	if err != nil {
		return "", &push.SendError{Provider: push.ProviderFCM, Cause: err}
	}

	d.logger.Debug("FCM send accepted", "message_id", id)
	return id, nil
}

func (d *Dispatcher) messagingClient(ctx context.Context, creds push.FCMCredentials) (MessagingClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil {
		return d.client, nil
	}

	// The client outlives the request, so initialization must not be
	// scoped to the first caller's cancellation.
	client, err := d.factory(context.WithoutCancel(ctx), creds)
	if err != nil {
		return nil, err
	}

	d.client = client
	return client, nil
}

func newMessagingClient(ctx context.Context, creds push.FCMCredentials) (MessagingClient, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(creds.ServiceAccountFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create FCM messaging client: %w", err)
	}
	return client, nil
}
