// Package bridge переводит ходы диалога Google Assistant в запросы навыка Alexa и обратно.
package bridge

const (
	// IdentityPrefix отличает пользователей Google в удалённом навыке
	IdentityPrefix = "GA-"
	// UnknownUser подставляется, если платформа не сообщила идентификатор
	UnknownUser = "UNKNOWN"
	// DefaultLocale используется, если локаль не пришла ни в ходе, ни в атрибутах
	DefaultLocale = "en-US"
	// PlayerLocaleKey — ключ атрибутов сессии, в котором удалённый навык хранит локаль игрока
	PlayerLocaleKey = "playerLocale"
)

// Attributes — атрибуты сессии, переносимые между ходами.
// Их форма целиком определяется удалённым навыком.
type Attributes map[string]any

// Turn — один ход диалога, полученный от Dialogflow. Только для чтения.
type Turn struct {
	ConversationID string
	UserID         string
	Locale         string
	ScreenOutput   bool
	Attributes     Attributes
}

// SessionContext — идентичность и признаки продолжения сессии на стороне Alexa
type SessionContext struct {
	ConversationID string
	UserID         string
	New            bool
	Locale         string
}

// NewSessionContext вычисляет SessionContext по ходу диалога.
// После начала сессии локаль берётся из сохранённых атрибутов, а не из хода.
func NewSessionContext(t Turn) SessionContext {
	sc := SessionContext{
		ConversationID: t.ConversationID,
		UserID:         Identity(t.UserID),
	}

	if len(t.Attributes) == 0 {
		sc.New = true
		sc.Locale = t.Locale
		if sc.Locale == "" {
			sc.Locale = DefaultLocale
		}
		return sc
	}

	// нетекстовое значение считаем отсутствующим
	sc.Locale, _ = t.Attributes[PlayerLocaleKey].(string)
	return sc
}

// Identity возвращает идентификатор пользователя на стороне Alexa
func Identity(rawUserID string) string {
	if rawUserID == "" {
		return IdentityPrefix + UnknownUser
	}
	return IdentityPrefix + rawUserID
}
