package trigger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/config"
)

func TestTriggerUnconfigured(t *testing.T) {
	tr := InitTrigger(&config.TriggerConfig{TimeoutSeconds: 1}, zap.NewNop())
	assert.False(t, tr.Trigger(context.Background()))
}

func TestTriggerDispatchAccepted(t *testing.T) {
	var payload dispatchPayload
	var authHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	tr := InitTrigger(&config.TriggerConfig{
		DispatchURL:    ts.URL,
		DispatchToken:  "secret",
		TimeoutSeconds: 1,
	}, zap.NewNop())
	assert.True(t, tr.Trigger(context.Background()))
	assert.Equal(t, "sync-redirects", payload.EventType)
	assert.Equal(t, "api_link_update", payload.ClientPayload.TriggeredBy)
	assert.NotEmpty(t, payload.ClientPayload.Timestamp)
	assert.Equal(t, "token secret", authHeader)
}

func TestTriggerDispatchRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	tr := InitTrigger(&config.TriggerConfig{DispatchURL: ts.URL, TimeoutSeconds: 1}, zap.NewNop())
	assert.False(t, tr.Trigger(context.Background()))
}

func TestTriggerDispatchUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	tr := InitTrigger(&config.TriggerConfig{DispatchURL: ts.URL, TimeoutSeconds: 1}, zap.NewNop())
	assert.False(t, tr.Trigger(context.Background()))
}

func TestTriggerBothEndpoints(t *testing.T) {
	dispatch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer dispatch.Close()
	hookCalled := false
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hookCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	tr := InitTrigger(&config.TriggerConfig{
		DispatchURL:    dispatch.URL,
		DeployHookURL:  hook.URL,
		TimeoutSeconds: 1,
	}, zap.NewNop())
	assert.True(t, tr.Trigger(context.Background()))
	assert.True(t, hookCalled)
}

func TestTriggerPartialFailure(t *testing.T) {
	dispatch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer dispatch.Close()
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer hook.Close()

	tr := InitTrigger(&config.TriggerConfig{
		DispatchURL:    dispatch.URL,
		DeployHookURL:  hook.URL,
		TimeoutSeconds: 1,
	}, zap.NewNop())
	assert.False(t, tr.Trigger(context.Background()))
}
