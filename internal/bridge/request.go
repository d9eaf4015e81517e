package bridge

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"skill-bridge/internal/models"
)

const (
	// IntentLaunch — интент запуска, для него отправляется LaunchRequest
	IntentLaunch = models.TypeLaunchRequest
	IntentBet    = "BetIntent"

	// SlotAmount — единственный слот, который передаётся удалённому навыку
	SlotAmount = "Amount"

	sessionIDPrefix = "SessionId."
	requestIDPrefix = "EdwRequestId."
	platformKey     = "platform"
	platformGoogle  = "google"
	displayVersion  = "1.0"
)

// intents сопоставляет имена интентов Dialogflow интентам Alexa
var intents = map[string]string{
	"Default Welcome Intent": IntentLaunch,
	"Spin":                   "SpinIntent",
	"Rules":                  "RulesIntent",
	"Select":                 "SelectIntent",
	"Help":                   "AMAZON.HelpIntent",
	"Yes":                    "AMAZON.YesIntent",
	"No":                     "AMAZON.NoIntent",
	"Stop":                   "AMAZON.StopIntent",
	"Next":                   "AMAZON.NextIntent",
	"HighScore":              "HighScoreIntent",
	"Bet":                    IntentBet,
}

// LookupIntent возвращает интент Alexa по имени интента Dialogflow
func LookupIntent(displayName string) (string, bool) {
	intent, ok := intents[displayName]
	return intent, ok
}

// Slots — уже типизированные значения слотов
type Slots map[string]any

// SlotsFor собирает слоты интента из параметров Dialogflow.
// Нечисловая ставка не ошибка: слот Amount просто не передаётся.
func SlotsFor(intent string, params map[string]any) Slots {
	if intent != IntentBet {
		return nil
	}
	amount, ok := ParseAmount(params[SlotAmount])
	if !ok {
		return nil
	}
	return Slots{SlotAmount: amount}
}

// ParseAmount разбирает целое число в начале строки ("42", " -7 ", "42 coins", "0x10").
// Числа JSON отбрасывают дробную часть; значения вне диапазона int не принимаются.
func ParseAmount(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || val >= float64(math.MaxInt) || val < float64(math.MinInt) {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case string:
		s := strings.TrimLeftFunc(val, unicode.IsSpace)
		end := 0
		if end < len(s) && (s[end] == '+' || s[end] == '-') {
			end++
		}
		if len(s) > end+1 && s[end] == '0' && (s[end+1] == 'x' || s[end+1] == 'X') {
			return parseHex(s[:end], s[end+2:])
		}
		digits := end
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == digits {
			return 0, false
		}
		n, err := strconv.Atoi(s[:end])
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// parseHex разбирает шестнадцатеричные цифры в начале hex
func parseHex(sign, hex string) (int, bool) {
	end := 0
	for end < len(hex) && strings.IndexByte("0123456789abcdefABCDEF", hex[end]) >= 0 {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(sign+hex[:end], 16, 0)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// Translator строит запросы Alexa из ходов диалога
type Translator struct {
	AppID string

	// NewID и Now подменяются в тестах
	NewID func() uuid.UUID
	Now   func() time.Time
}

// NewTranslator возвращает Translator для навыка с указанным applicationId
func NewTranslator(appID string) *Translator {
	return &Translator{
		AppID: appID,
		NewID: uuid.New,
		Now:   time.Now,
	}
}

// BuildRequest строит полный запрос Alexa.
// Запрос собирается заново на каждый ход и после построения не меняется.
func (t *Translator) BuildRequest(turn Turn, sc SessionContext, intent string, slots Slots) *models.AlexaRequest {
	app := models.Application{ApplicationID: t.AppID}
	user := models.AlexaUser{UserID: sc.UserID}

	req := &models.AlexaRequest{
		Version: models.AlexaVersion,
		Session: models.AlexaSession{
			New:         sc.New,
			SessionID:   sessionIDPrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(sc.ConversationID)).String(),
			Application: app,
			Attributes:  sessionAttributes(sc, turn.Attributes),
			User:        user,
		},
		Context: models.AlexaContext{
			System: models.System{
				Application: app,
				User:        user,
			},
		},
	}

	if turn.ScreenOutput {
		req.Context.System.Device = &models.Device{
			DeviceID: sc.UserID,
			SupportedInterfaces: models.SupportedInterfaces{
				Display: models.DisplayInterface{
					TemplateVersion: displayVersion,
					MarkupVersion:   displayVersion,
				},
			},
		}
	}

	meta := models.RequestMeta{
		RequestID: requestIDPrefix + t.NewID().String(),
		Timestamp: t.Now().UnixMilli(),
		Locale:    sc.Locale,
	}

	if intent == IntentLaunch {
		req.Request = models.LaunchRequest{RequestMeta: meta}
		return req
	}

	ir := models.IntentRequest{
		RequestMeta: meta,
		Intent: models.AlexaIntent{
			Name:  intent,
			Slots: make(map[string]models.Slot, len(slots)),
		},
	}
	for name, value := range slots {
		if name == "" {
			continue
		}
		ir.Intent.Slots[name] = models.Slot{Name: name, Value: value}
	}
	req.Request = ir

	return req
}

// sessionAttributes возвращает маркер платформы, поверх которого
// для продолжающейся сессии накладываются сохранённые атрибуты
func sessionAttributes(sc SessionContext, carried Attributes) map[string]any {
	attrs := map[string]any{platformKey: platformGoogle}
	if sc.New {
		return attrs
	}
	return withCarried(attrs, carried)
}

// withCarried накладывает перенесённые атрибуты поверх attrs
func withCarried(attrs map[string]any, carried Attributes) map[string]any {
	for k, v := range carried {
		if dst, ok := attrs[k].(map[string]any); ok {
			if src, ok := v.(map[string]any); ok {
				attrs[k] = withCarried(dst, src)
				continue
			}
		}
		attrs[k] = deepCopy(v)
	}
	return attrs
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = deepCopy(item)
		}
		return m
	case Attributes:
		return deepCopy(map[string]any(val))
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = deepCopy(item)
		}
		return s
	default:
		return val
	}
}
