package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-bridge/internal/models"
)

// fakeInvoker запоминает запрос и возвращает заранее заданный ответ
type fakeInvoker struct {
	got  *models.AlexaRequest
	resp *models.AlexaResponse
	err  error
}

func (f *fakeInvoker) Invoke(_ context.Context, req *models.AlexaRequest) (*models.AlexaResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestServiceHandleTurn(t *testing.T) {
	inv := &fakeInvoker{resp: &models.AlexaResponse{
		SessionAttributes: map[string]any{"c": 3},
		Response: &models.AlexaBody{
			OutputSpeech: &models.OutputSpeech{SSML: "<speak>Spun</speak>"},
		},
	}}
	svc := NewService(testTranslator(), inv, "")

	turn := Turn{ConversationID: "c1", UserID: "u1", Attributes: Attributes{"a": 1, "b": 2, "playerLocale": "en-US"}}
	out, err := svc.HandleTurn(context.Background(), turn, "SpinIntent", nil)
	require.NoError(t, err)

	assert.Equal(t, "<speak>Spun</speak>", out.Speech)
	assert.Equal(t, Attributes{"c": 3}, out.Attributes)

	require.NotNil(t, inv.got)
	assert.False(t, inv.got.Session.New)
	assert.Equal(t, "GA-u1", inv.got.Session.User.UserID)
	ir, ok := inv.got.Request.(models.IntentRequest)
	require.True(t, ok)
	assert.Equal(t, "SpinIntent", ir.Intent.Name)
}

func TestServiceHandleTurn_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		invoker *fakeInvoker
		wantErr error
	}{
		{
			name:    "transport",
			invoker: &fakeInvoker{err: errors.New("connection refused")},
			wantErr: ErrTransport,
		},
		{
			name:    "protocol_violation",
			invoker: &fakeInvoker{resp: &models.AlexaResponse{Response: &models.AlexaBody{ShouldEndSession: true}}},
			wantErr: ErrProtocolViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(testTranslator(), tc.invoker, "")
			out, err := svc.HandleTurn(context.Background(), Turn{ConversationID: "c1"}, IntentLaunch, nil)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, out)
		})
	}
}
