package hms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticetake/push-relay/internal/platform/hms"
	"github.com/noticetake/push-relay/pkg/push"
)

func TestDispatcher_Send(t *testing.T) {
	ctx := context.Background()
	env := hms.NewEnvelope("tok-1", push.Request{
		Provider: push.ProviderHMS,
		Title:    "T",
		Body:     "B",
	})

	t.Run("Success returns provider response verbatim", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody hms.Envelope
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":"80000000","msg":"Success","requestId":"req-42"}`))
		}))
		defer server.Close()

		dispatcher := hms.NewDispatcher(server.URL, newTestLogger())
		response, err := dispatcher.Send(ctx, "access-token", "app-1", env)

		require.NoError(t, err)
		assert.Equal(t, "/v1/app-1/messages:send", gotPath)
		assert.Equal(t, "Bearer access-token", gotAuth)
		assert.Equal(t, []string{"tok-1"}, gotBody.Message.Token)
		assert.Equal(t, map[string]any{
			"code":      "80000000",
			"msg":       "Success",
			"requestId": "req-42",
		}, response)
	})

	t.Run("Non-2xx becomes SendError with upstream status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"80100003","msg":"invalid token"}`))
		}))
		defer server.Close()

		dispatcher := hms.NewDispatcher(server.URL, newTestLogger())
		_, err := dispatcher.Send(ctx, "access-token", "app-1", env)

		var sendErr *push.SendError
		require.ErrorAs(t, err, &sendErr)
		assert.Equal(t, push.ProviderHMS, sendErr.Provider)
		assert.Equal(t, http.StatusBadRequest, sendErr.StatusCode)
		assert.Contains(t, sendErr.Body, "invalid token")
	})

	t.Run("Transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		dispatcher := hms.NewDispatcher(server.URL, newTestLogger())
		_, err := dispatcher.Send(ctx, "access-token", "app-1", env)

		var sendErr *push.SendError
		require.ErrorAs(t, err, &sendErr)
		require.Error(t, sendErr.Unwrap())
	})
}
