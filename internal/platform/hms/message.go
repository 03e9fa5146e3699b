package hms

import (
	"encoding/json"

	"github.com/noticetake/push-relay/pkg/push"
)

// Envelope is the top-level HMS send request body.
type Envelope struct {
	ValidateOnly bool    `json:"validate_only"`
	Message      Message `json:"message"`
}

// Message is the HMS message body. Data travels as a JSON-encoded
// string, not a nested object; the HMS API requires it that way.
type Message struct {
	Token        []string     `json:"token"`
	Notification Notification `json:"notification"`
	Android      Android      `json:"android"`
	Data         string       `json:"data,omitempty"`
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Android struct {
	Notification AndroidNotification `json:"notification"`
}

type AndroidNotification struct {
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	ClickAction ClickAction `json:"click_action"`
	ChannelID   string      `json:"channel_id,omitempty"`
}

// ClickAction type 3 opens the app without a deep link.
type ClickAction struct {
	Type int `json:"type"`
}

// NewEnvelope builds the HMS wire payload for a single device token.
func NewEnvelope(token string, req push.Request) Envelope {
	msg := Message{
		Token: []string{token},
		Notification: Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Android: Android{
			Notification: AndroidNotification{
				Title:       req.Title,
				Body:        req.Body,
				ClickAction: ClickAction{Type: 3},
				ChannelID:   req.ChannelID,
			},
		},
	}

	if len(req.Data) > 0 {
		// A map[string]string cannot fail to marshal.
		encoded, _ := json.Marshal(req.Data)
		msg.Data = string(encoded)
	}

	return Envelope{Message: msg}
}
