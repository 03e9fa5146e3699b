package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/tinywideclouds/go-microservice-base/pkg/response"

	"github.com/noticetake/push-relay/pkg/push"
)

type PushAPI struct {
	Dispatcher push.Dispatcher
	Store      push.FallbackTokenStore
	Logger     *slog.Logger
}

func NewPushAPI(dispatcher push.Dispatcher, store push.FallbackTokenStore, logger *slog.Logger) *PushAPI {
	return &PushAPI{
		Dispatcher: dispatcher,
		Store:      store,
		Logger:     logger,
	}
}

// SendRequest is the JSON body of both send endpoints. Data values may
// arrive as JSON numbers or bools; they are coerced to strings before
// dispatch.
type SendRequest struct {
	Token     string         `json:"token"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data"`
	ChannelID string         `json:"channel_id"`
}

func (r SendRequest) toPush(provider push.Provider) push.Request {
	return push.Request{
		Provider:  provider,
		Token:     r.Token,
		Title:     r.Title,
		Body:      r.Body,
		Data:      coerceData(r.Data),
		ChannelID: r.ChannelID,
	}
}

// SendFCM handles POST /push/send.
func (api *PushAPI) SendFCM(w http.ResponseWriter, r *http.Request) {
	var body SendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	req := body.toPush(push.ProviderFCM)
	if err := req.Validate(); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := api.Dispatcher.Send(r.Context(), req)
	if err != nil {
		api.writeDispatchError(w, "push failed", err)
		return
	}

	writeJSON(w, map[string]any{"message_id": result.MessageID})
}

// SendHMS handles POST /hms/send. The destination token may be omitted;
// the dispatcher falls back to the registered token.
func (api *PushAPI) SendHMS(w http.ResponseWriter, r *http.Request) {
	var body SendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	req := body.toPush(push.ProviderHMS)
	if err := req.Validate(); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := api.Dispatcher.Send(r.Context(), req)
	if err != nil {
		api.writeDispatchError(w, "hms push failed", err)
		return
	}

	// The provider's JSON response travels back verbatim.
	writeJSON(w, result.Response)
}

type RegisterTokenRequest struct {
	Token string `json:"token"`
}

// RegisterFallbackToken handles PUT /hms/token, registering or overwriting
// the fallback destination token.
func (api *PushAPI) RegisterFallbackToken(w http.ResponseWriter, r *http.Request) {
	var req RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Token == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing token")
		return
	}

	if err := api.Store.Save(r.Context(), req.Token); err != nil {
		api.Logger.Error("failed to store fallback token", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeDispatchError maps the dispatch error taxonomy onto HTTP statuses.
// Upstream status and body are forwarded to the caller for diagnosis;
// masking applies to the audit log only.
func (api *PushAPI) writeDispatchError(w http.ResponseWriter, prefix string, err error) {
	status := http.StatusInternalServerError

	var vErr *push.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, push.ErrMissingDestination):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		api.Logger.Error("dispatch failed", "err", err)
	}
	response.WriteJSONError(w, status, fmt.Sprintf("%s: %s", prefix, err.Error()))
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

func coerceData(data map[string]any) map[string]string {
	if len(data) == 0 {
		return nil
	}
	coerced := make(map[string]string, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			coerced[k] = val
		case float64:
			// JSON numbers decode as float64; render integers without
			// a trailing fraction.
			if val == float64(int64(val)) {
				coerced[k] = fmt.Sprintf("%d", int64(val))
			} else {
				coerced[k] = fmt.Sprintf("%v", val)
			}
		default:
			coerced[k] = fmt.Sprintf("%v", val)
		}
	}
	return coerced
}
