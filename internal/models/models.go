package models

const (
	// CapabilityScreenOutput сообщает, что у устройства есть экран
	CapabilityScreenOutput = "actions.capability.SCREEN_OUTPUT"

	// ImageDisplayWhite — фон карточки вокруг изображения
	ImageDisplayWhite = "WHITE"
)

// Request описывает запрос Dialogflow к вебхуку выполнения.
// https://cloud.google.com/dialogflow/es/docs/fulfillment-webhook#webhook_request
type Request struct {
	ResponseID                  string                      `json:"responseId"`
	Session                     string                      `json:"session"`
	QueryResult                 QueryResult                 `json:"queryResult"`
	OriginalDetectIntentRequest OriginalDetectIntentRequest `json:"originalDetectIntentRequest"`
}

// QueryResult — результат распознавания интента
type QueryResult struct {
	QueryText    string         `json:"queryText"`
	Parameters   map[string]any `json:"parameters"`
	Intent       Intent         `json:"intent"`
	LanguageCode string         `json:"languageCode"`
}

// Intent — распознанный интент
type Intent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// OriginalDetectIntentRequest содержит исходный запрос платформы (Actions on Google)
type OriginalDetectIntentRequest struct {
	Source  string        `json:"source"`
	Version string        `json:"version"`
	Payload ActionPayload `json:"payload"`
}

// ActionPayload — полезная нагрузка Actions on Google
type ActionPayload struct {
	User         User         `json:"user"`
	Surface      Surface      `json:"surface"`
	Conversation Conversation `json:"conversation"`
}

type User struct {
	UserID string `json:"userId"`
	Locale string `json:"locale"`
}

type Surface struct {
	Capabilities []Capability `json:"capabilities"`
}

type Capability struct {
	Name string `json:"name"`
}

type Conversation struct {
	ConversationID string `json:"conversationId"`
	Type           string `json:"type"`
}

// HasCapability проверяет, заявлена ли возможность устройством
func (s Surface) HasCapability(name string) bool {
	for _, c := range s.Capabilities {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Response описывает ответ вебхука Dialogflow
// https://developers.google.com/assistant/df-asdk/reference/dialogflow-webhook-json
type Response struct {
	FulfillmentText string          `json:"fulfillmentText,omitempty"`
	Payload         ResponsePayload `json:"payload"`
}

type ResponsePayload struct {
	Google GooglePayload `json:"google"`
}

// GooglePayload — ответ для Google Assistant
type GooglePayload struct {
	ExpectUserResponse bool             `json:"expectUserResponse"`
	RichResponse       RichResponse     `json:"richResponse"`
	NoInputPrompts     []SimpleResponse `json:"noInputPrompts,omitempty"`
}

type RichResponse struct {
	Items []Item `json:"items"`
}

// Item — элемент ответа: либо простая реплика, либо карточка
type Item struct {
	SimpleResponse *SimpleResponse `json:"simpleResponse,omitempty"`
	BasicCard      *BasicCard      `json:"basicCard,omitempty"`
}

// SimpleResponse — реплика; TextToSpeech может содержать SSML-разметку
type SimpleResponse struct {
	TextToSpeech string `json:"textToSpeech"`
}

type BasicCard struct {
	Title               string `json:"title,omitempty"`
	Image               *Image `json:"image,omitempty"`
	ImageDisplayOptions string `json:"imageDisplayOptions,omitempty"`
}

type Image struct {
	URL               string `json:"url"`
	AccessibilityText string `json:"accessibilityText"`
}
