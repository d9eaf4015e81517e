package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-bridge/internal/models"
)

func decodeAlexa(t *testing.T, body string) *models.AlexaResponse {
	t.Helper()
	var resp models.AlexaResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func TestDecodeResponse_MissingOutputSpeech(t *testing.T) {
	testCases := []struct {
		name string
		resp *models.AlexaResponse
	}{
		{name: "nil", resp: nil},
		{name: "no_response", resp: decodeAlexa(t, `{"version": "1.0", "sessionAttributes": {"a": 1}}`)},
		{name: "no_output_speech", resp: decodeAlexa(t, `{"response": {"shouldEndSession": true}}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := DecodeResponse(tc.resp, "")
			assert.ErrorIs(t, err, ErrProtocolViolation)
			assert.Nil(t, out)
		})
	}
}

func TestDecodeResponse_Speech(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		wantSpeech   string
		wantReprompt string
	}{
		{
			name: "ssml_preferred",
			body: `{"response": {"outputSpeech": {"type": "SSML", "ssml": "<speak>Hi</speak>", "text": "Hi"}}}`,

			wantSpeech: "<speak>Hi</speak>",
		},
		{
			name:       "text_fallback",
			body:       `{"response": {"outputSpeech": {"type": "PlainText", "text": "Hi"}}}`,
			wantSpeech: "Hi",
		},
		{
			name: "reprompt_ssml",
			body: `{"response": {
				"outputSpeech": {"type": "PlainText", "text": "Hi"},
				"reprompt": {"outputSpeech": {"type": "SSML", "ssml": "<speak>Spin?</speak>"}}
			}}`,
			wantSpeech:   "Hi",
			wantReprompt: "<speak>Spin?</speak>",
		},
		{
			name: "reprompt_text_only_is_absent",
			body: `{"response": {
				"outputSpeech": {"type": "PlainText", "text": "Hi"},
				"reprompt": {"outputSpeech": {"type": "PlainText", "text": "Spin?"}}
			}}`,
			wantSpeech: "Hi",
		},
		{
			name: "reprompt_without_output_speech",
			body: `{"response": {
				"outputSpeech": {"type": "PlainText", "text": "Hi"},
				"reprompt": {}
			}}`,
			wantSpeech: "Hi",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := DecodeResponse(decodeAlexa(t, tc.body), "")
			require.NoError(t, err)
			assert.Equal(t, tc.wantSpeech, out.Speech)
			assert.Equal(t, tc.wantReprompt, out.Reprompt)
		})
	}
}

func TestDecodeResponse_Card(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		fallback string
		want     *Card
	}{
		{
			name: "first_match_wins",
			body: `{"response": {"outputSpeech": {"text": "x"}, "directives": [
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "First",
					"backgroundImage": {"sources": [{"url": "https://img/1.png"}, {"url": "https://img/1b.png"}]}}},
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "Second",
					"backgroundImage": {"sources": [{"url": "https://img/2.png"}]}}}
			]}}`,
			want: &Card{Title: "First", ImageURL: "https://img/1.png"},
		},
		{
			name: "fallback_title",
			body: `{"response": {"outputSpeech": {"text": "x"}, "directives": [
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1",
					"backgroundImage": {"sources": [{"url": "https://img/1.png"}]}}}
			]}}`,
			want: &Card{Title: "Slot Machine", ImageURL: "https://img/1.png"},
		},
		{
			name:     "configured_fallback_title",
			fallback: "Casino",
			body: `{"response": {"outputSpeech": {"text": "x"}, "directives": [
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1",
					"backgroundImage": {"sources": [{"url": "https://img/1.png"}]}}}
			]}}`,
			want: &Card{Title: "Casino", ImageURL: "https://img/1.png"},
		},
		{
			name: "skips_templates_without_images",
			body: `{"response": {"outputSpeech": {"text": "x"}, "directives": [
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "Empty",
					"backgroundImage": {"sources": []}}},
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "NoImage"}},
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "Real",
					"backgroundImage": {"sources": [{"url": "https://img/3.png"}]}}}
			]}}`,
			want: &Card{Title: "Real", ImageURL: "https://img/3.png"},
		},
		{
			name: "empty_url_on_first_match_means_no_card",
			body: `{"response": {"outputSpeech": {"text": "x"}, "directives": [
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "Blank",
					"backgroundImage": {"sources": [{"url": ""}]}}},
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate1", "title": "Real",
					"backgroundImage": {"sources": [{"url": "https://img/2.png"}]}}}
			]}}`,
		},
		{
			name: "other_templates_ignored",
			body: `{"response": {"outputSpeech": {"text": "x"}, "directives": [
				{"type": "Display.RenderTemplate", "template": {"type": "BodyTemplate2",
					"backgroundImage": {"sources": [{"url": "https://img/1.png"}]}}},
				{"type": "AudioPlayer.Play"}
			]}}`,
		},
		{
			name: "no_directives",
			body: `{"response": {"outputSpeech": {"text": "x"}}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := DecodeResponse(decodeAlexa(t, tc.body), tc.fallback)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Card)
		})
	}
}

func TestDecodeResponse_AttributesReplaced(t *testing.T) {
	out, err := DecodeResponse(decodeAlexa(t, `{
		"sessionAttributes": {"c": 3},
		"response": {"outputSpeech": {"text": "x"}}
	}`), "")
	require.NoError(t, err)
	assert.Equal(t, Attributes{"c": float64(3)}, out.Attributes)

	out, err = DecodeResponse(decodeAlexa(t, `{"response": {"outputSpeech": {"text": "x"}}}`), "")
	require.NoError(t, err)
	assert.NotNil(t, out.Attributes)
	assert.Empty(t, out.Attributes)
}

func TestOutcomeRender(t *testing.T) {
	card := &Card{Title: "Slot Machine", ImageURL: "https://img/1.png"}

	testCases := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{
			name:    "continue_with_reprompt_and_card",
			outcome: Outcome{Speech: "<speak>Hi</speak>", Reprompt: "<speak>Spin?</speak>", Card: card},
			want: `{
				"fulfillmentText": "<speak>Hi</speak>",
				"payload": {"google": {
					"expectUserResponse": true,
					"richResponse": {"items": [
						{"simpleResponse": {"textToSpeech": "<speak>Hi</speak>"}},
						{"basicCard": {
							"title": "Slot Machine",
							"image": {"url": "https://img/1.png", "accessibilityText": "Slot Machine"},
							"imageDisplayOptions": "WHITE"
						}}
					]},
					"noInputPrompts": [{"textToSpeech": "<speak>Spin?</speak>"}]
				}}
			}`,
		},
		{
			name:    "close_never_registers_reprompt",
			outcome: Outcome{Speech: "Bye", Reprompt: "<speak>Spin?</speak>", EndSession: true},
			want: `{
				"fulfillmentText": "Bye",
				"payload": {"google": {
					"expectUserResponse": false,
					"richResponse": {"items": [{"simpleResponse": {"textToSpeech": "Bye"}}]}
				}}
			}`,
		},
		{
			name:    "close_with_card",
			outcome: Outcome{Speech: "Bye", EndSession: true, Card: card},
			want: `{
				"fulfillmentText": "Bye",
				"payload": {"google": {
					"expectUserResponse": false,
					"richResponse": {"items": [
						{"simpleResponse": {"textToSpeech": "Bye"}},
						{"basicCard": {
							"title": "Slot Machine",
							"image": {"url": "https://img/1.png", "accessibilityText": "Slot Machine"},
							"imageDisplayOptions": "WHITE"
						}}
					]}
				}}
			}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.outcome.Render())
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}
