package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-bridge/internal/models"
)

func launchRequest() *models.AlexaRequest {
	return &models.AlexaRequest{
		Version: models.AlexaVersion,
		Session: models.AlexaSession{New: true, User: models.AlexaUser{UserID: "GA-u1"}},
		Request: models.LaunchRequest{RequestMeta: models.RequestMeta{RequestID: "EdwRequestId.1", Locale: "en-US"}},
	}
}

func TestClientInvoke(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		// прокси может не выставлять тип содержимого
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{
			"version": "1.0",
			"sessionAttributes": {"playerLocale": "en-US"},
			"response": {"outputSpeech": {"type": "SSML", "ssml": "<speak>Welcome</speak>"}, "shouldEndSession": false}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, ClientID: "client-1"})
	resp, err := c.Invoke(context.Background(), launchRequest())
	require.NoError(t, err)

	assert.Equal(t, "SlotMachine_v6", got["FunctionName"])
	assert.Equal(t, "client-1", got["clientId"])
	payload, ok := got["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "LaunchRequest", payload["request"].(map[string]any)["type"])

	require.NotNil(t, resp.Response)
	require.NotNil(t, resp.Response.OutputSpeech)
	assert.Equal(t, "<speak>Welcome</speak>", resp.Response.OutputSpeech.SSML)
	assert.Equal(t, map[string]any{"playerLocale": "en-US"}, resp.SessionAttributes)
}

func TestClientInvoke_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server_error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: ErrStatus,
		},
		{
			name: "malformed_body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"response": `))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			resp, err := NewClient(Config{URL: srv.URL}).Invoke(context.Background(), launchRequest())
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Nil(t, resp)
		})
	}
}

func TestClientInvoke_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{URL: url}).Invoke(context.Background(), launchRequest())
	assert.Error(t, err)
}

func TestClientInvoke_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Breaker: true})
	for i := 0; i < 5; i++ {
		_, err := c.Invoke(context.Background(), launchRequest())
		require.ErrorIs(t, err, ErrStatus)
	}

	_, err := c.Invoke(context.Background(), launchRequest())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), hits.Load())
}
