package bridge

import (
	"errors"

	"skill-bridge/internal/models"
)

// DefaultCardTitle — заголовок карточки, если шаблон его не задал
const DefaultCardTitle = "Slot Machine"

// ErrProtocolViolation — удалённый навык ответил, но без основной реплики
var ErrProtocolViolation = errors.New("bridge: response has no output speech")

// Card — карточка с изображением для устройств с экраном
type Card struct {
	Title    string
	ImageURL string
}

// Outcome — разобранный ответ удалённого навыка
type Outcome struct {
	Speech     string
	Reprompt   string
	Card       *Card
	EndSession bool
	// Attributes полностью заменяют атрибуты, сохранённые для диалога
	Attributes Attributes
}

// DecodeResponse разбирает ответ Alexa.
// Отсутствие outputSpeech — единственная ошибка; остальные необязательные
// части ответа при отсутствии просто пропускаются.
func DecodeResponse(resp *models.AlexaResponse, fallbackTitle string) (*Outcome, error) {
	if resp == nil || resp.Response == nil || resp.Response.OutputSpeech == nil {
		return nil, ErrProtocolViolation
	}
	body := resp.Response

	out := &Outcome{
		Speech:     speech(body.OutputSpeech),
		EndSession: body.ShouldEndSession,
		Card:       findCard(body.Directives, fallbackTitle),
		Attributes: make(Attributes, len(resp.SessionAttributes)),
	}

	// повтор берётся только из SSML, текстовую форму не используем
	if body.Reprompt != nil && body.Reprompt.OutputSpeech != nil {
		out.Reprompt = body.Reprompt.OutputSpeech.SSML
	}

	for k, v := range resp.SessionAttributes {
		out.Attributes[k] = v
	}

	return out, nil
}

func speech(s *models.OutputSpeech) string {
	if s.SSML != "" {
		return s.SSML
	}
	return s.Text
}

// findCard возвращает карточку по первой подходящей директиве BodyTemplate1
func findCard(directives []models.Directive, fallbackTitle string) *Card {
	if fallbackTitle == "" {
		fallbackTitle = DefaultCardTitle
	}

	for _, d := range directives {
		if d.Type != models.DirectiveRenderTemplate || d.Template == nil {
			continue
		}
		tpl := d.Template
		if tpl.Type != models.TemplateBodyTemplate1 || tpl.BackgroundImage == nil {
			continue
		}
		if len(tpl.BackgroundImage.Sources) == 0 {
			continue
		}
		// совпадение найдено; пустой URL означает, что карточки нет
		if tpl.BackgroundImage.Sources[0].URL == "" {
			return nil
		}

		card := &Card{
			Title:    tpl.Title,
			ImageURL: tpl.BackgroundImage.Sources[0].URL,
		}
		if card.Title == "" {
			card.Title = fallbackTitle
		}
		return card
	}

	return nil
}

// Render превращает Outcome в ответ вебхука Dialogflow.
// При завершении сессии повтор не регистрируется, даже если он был в ответе.
func (o *Outcome) Render() models.Response {
	google := models.GooglePayload{
		ExpectUserResponse: !o.EndSession,
		RichResponse: models.RichResponse{
			Items: []models.Item{
				{SimpleResponse: &models.SimpleResponse{TextToSpeech: o.Speech}},
			},
		},
	}

	if !o.EndSession && o.Reprompt != "" {
		google.NoInputPrompts = []models.SimpleResponse{{TextToSpeech: o.Reprompt}}
	}

	if o.Card != nil {
		google.RichResponse.Items = append(google.RichResponse.Items, models.Item{
			BasicCard: &models.BasicCard{
				Title: o.Card.Title,
				Image: &models.Image{
					URL:               o.Card.ImageURL,
					AccessibilityText: o.Card.Title,
				},
				ImageDisplayOptions: models.ImageDisplayWhite,
			},
		})
	}

	return models.Response{
		FulfillmentText: o.Speech,
		Payload:         models.ResponsePayload{Google: google},
	}
}
