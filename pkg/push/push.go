// Package push contains the public interfaces and domain models for the
// push relay.
package push

import (
	"fmt"
	"strings"
)

// Provider identifies a push-notification backend.
type Provider string

const (
	ProviderFCM Provider = "fcm"
	ProviderHMS Provider = "hms"
)

func (p Provider) String() string { return string(p) }

func (p Provider) IsValid() bool {
	switch p {
	case ProviderFCM, ProviderHMS:
		return true
	}
	return false
}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return p, nil
}

// Request is one notification to deliver through one provider.
type Request struct {
	Provider Provider `json:"-"`

	// Token is the destination device token. For HMS it may be empty,
	// in which case the dispatcher consults the fallback token store.
	Token string `json:"token,omitempty"`

	Title string `json:"title"`
	Body  string `json:"body"`

	// Data is an optional flat key-value payload delivered alongside the
	// notification. Values are already coerced to strings at the API
	// boundary.
	Data map[string]string `json:"data,omitempty"`

	// ChannelID routes the alert to an Android notification channel.
	// HMS only.
	ChannelID string `json:"channel_id,omitempty"`
}

// Validate checks the fields that must be present before dispatch.
// The HMS token is exempt because the fallback store may supply it.
func (r Request) Validate() error {
	if !r.Provider.IsValid() {
		return &ValidationError{Field: "provider", Reason: "unknown provider"}
	}
	if r.Provider == ProviderFCM && r.Token == "" {
		return &ValidationError{Field: "token", Reason: "must not be empty"}
	}
	if r.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if r.Body == "" {
		return &ValidationError{Field: "body", Reason: "must not be empty"}
	}
	return nil
}

// FCMCredentials authenticate against FCM via a service-account file.
type FCMCredentials struct {
	ServiceAccountFile string
}

// HMSCredentials authenticate against HMS via the OAuth2
// client-credentials grant.
type HMSCredentials struct {
	AppID        string
	ClientID     string
	ClientSecret string
}

// Credentials is a per-provider union. Exactly one variant is set.
type Credentials struct {
	FCM *FCMCredentials
	HMS *HMSCredentials
}

// Result is the outcome of a successful dispatch.
type Result struct {
	// MessageID is the provider-assigned identifier, when the provider
	// reports one.
	MessageID string

	// Response is the provider's success response. For HMS this is the
	// upstream JSON verbatim; for FCM it wraps the message id.
	Response map[string]any
}
