package models

import "encoding/json"

const (
	AlexaVersion = "1.0"

	TypeLaunchRequest = "LaunchRequest"
	TypeIntentRequest = "IntentRequest"

	DirectiveRenderTemplate = "Display.RenderTemplate"
	TemplateBodyTemplate1   = "BodyTemplate1"
)

// AlexaRequest описывает запрос к навыку Alexa.
// https://developer.amazon.com/en-US/docs/alexa/custom-skills/request-and-response-json-reference.html
type AlexaRequest struct {
	Version string       `json:"version"`
	Session AlexaSession `json:"session"`
	Request RequestBody  `json:"request"`
	Context AlexaContext `json:"context"`
}

type AlexaSession struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	Attributes  map[string]any `json:"attributes"`
	User        AlexaUser      `json:"user"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type AlexaUser struct {
	UserID string `json:"userId"`
}

type AlexaContext struct {
	System System `json:"System"`
}

type System struct {
	Application Application `json:"application"`
	User        AlexaUser   `json:"user"`
	Device      *Device     `json:"device,omitempty"`
}

type Device struct {
	DeviceID            string              `json:"deviceId"`
	SupportedInterfaces SupportedInterfaces `json:"supportedInterfaces"`
}

type SupportedInterfaces struct {
	AudioPlayer struct{}         `json:"AudioPlayer"`
	Display     DisplayInterface `json:"Display"`
}

type DisplayInterface struct {
	TemplateVersion string `json:"templateVersion"`
	MarkupVersion   string `json:"markupVersion"`
}

// RequestBody — тело запроса: LaunchRequest или IntentRequest.
// Других реализаций вне пакета быть не может.
type RequestBody interface {
	RequestType() string
	sealed()
}

// RequestMeta — общие для всех типов запроса поля
type RequestMeta struct {
	RequestID string `json:"requestId"`
	Timestamp int64  `json:"timestamp"`
	Locale    string `json:"locale,omitempty"`
}

// LaunchRequest — запуск навыка без интента
type LaunchRequest struct {
	RequestMeta
}

func (LaunchRequest) RequestType() string { return TypeLaunchRequest }
func (LaunchRequest) sealed()             {}

func (r LaunchRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		RequestMeta
	}{Type: TypeLaunchRequest, RequestMeta: r.RequestMeta})
}

// IntentRequest — запрос с распознанным интентом
type IntentRequest struct {
	RequestMeta
	Intent AlexaIntent
}

func (IntentRequest) RequestType() string { return TypeIntentRequest }
func (IntentRequest) sealed()             {}

func (r IntentRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		RequestMeta
		Intent AlexaIntent `json:"intent"`
	}{Type: TypeIntentRequest, RequestMeta: r.RequestMeta, Intent: r.Intent})
}

type AlexaIntent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots"`
}

type Slot struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// AlexaResponse описывает ответ навыка Alexa
type AlexaResponse struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes"`
	Response          *AlexaBody     `json:"response"`
}

type AlexaBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech"`
	Reprompt         *Reprompt     `json:"reprompt"`
	Directives       []Directive   `json:"directives"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech — реплика в виде текста (PlainText) или разметки (SSML)
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech"`
}

type Directive struct {
	Type     string    `json:"type"`
	Template *Template `json:"template,omitempty"`
}

type Template struct {
	Type            string      `json:"type"`
	Token           string      `json:"token,omitempty"`
	Title           string      `json:"title,omitempty"`
	BackgroundImage *AlexaImage `json:"backgroundImage,omitempty"`
}

type AlexaImage struct {
	ContentDescription string        `json:"contentDescription,omitempty"`
	Sources            []ImageSource `json:"sources"`
}

type ImageSource struct {
	URL          string `json:"url"`
	Size         string `json:"size,omitempty"`
	WidthPixels  int    `json:"widthPixels,omitempty"`
	HeightPixels int    `json:"heightPixels,omitempty"`
}
