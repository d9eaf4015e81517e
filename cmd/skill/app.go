package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"skill-bridge/internal/bridge"
	"skill-bridge/internal/logger"
	"skill-bridge/internal/metrics"
	"skill-bridge/internal/models"
	"skill-bridge/internal/store"
)

// app инкапсулирует в себя все зависимости и логику приложения
type app struct {
	store  store.Store
	bridge *bridge.Service
}

// newApp принимает на вход внешние зависимости приложения и возвращает новый объект app
func newApp(s store.Store, b *bridge.Service) *app {
	return &app{store: s, bridge: b}
}

// router собирает маршруты сервера
func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger)

	r.Handle("/", gzipMiddleware(a.webhook))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// обработчик HTTP-запроса выполнения от Dialogflow
func (a *app) webhook(w http.ResponseWriter, r *http.Request) {
	var req models.Request

	ctx := r.Context()

	// разрешён только POST-метод
	if r.Method != http.MethodPost {
		logger.Log.Debug("got request with bad method", zap.String("method", r.Method))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// десериализуем запрос в структуру модели
	logger.Log.Debug("decoding request")

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// проверяем, что пришёл интент, который понимает удалённый навык
	displayName := req.QueryResult.Intent.DisplayName
	intent, ok := bridge.LookupIntent(displayName)
	if !ok {
		logger.Log.Debug("unsupported intent", zap.String("intent", displayName))
		metrics.TurnsTotal.WithLabelValues("unknown", metrics.OutcomeUnknownIntent).Inc()
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	payload := req.OriginalDetectIntentRequest.Payload

	conversationID := req.Session
	if conversationID == "" {
		conversationID = payload.Conversation.ConversationID
	}

	// атрибуты, сохранённые на прошлом ходе
	attrs, err := a.store.Load(ctx, conversationID)
	if err != nil {
		logger.Log.Debug("cannot load session attributes", zap.String("conversation", conversationID), zap.Error(err))
		metrics.TurnsTotal.WithLabelValues(intent, metrics.OutcomeStoreFailure).Inc()
		if errors.Is(err, store.ErrEmptyConversation) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	locale := payload.User.Locale
	if locale == "" {
		locale = req.QueryResult.LanguageCode
	}

	turn := bridge.Turn{
		ConversationID: conversationID,
		UserID:         payload.User.UserID,
		Locale:         locale,
		ScreenOutput:   payload.Surface.HasCapability(models.CapabilityScreenOutput),
		Attributes:     attrs,
	}

	out, err := a.bridge.HandleTurn(ctx, turn, intent, bridge.SlotsFor(intent, req.QueryResult.Parameters))
	if err != nil {
		outcome := metrics.OutcomeTransportFailure
		if errors.Is(err, bridge.ErrProtocolViolation) {
			outcome = metrics.OutcomeProtocolViolation
		}
		metrics.TurnsTotal.WithLabelValues(intent, outcome).Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// атрибуты удалённого навыка полностью заменяют прежние
	if err := a.store.Save(ctx, conversationID, out.Attributes); err != nil {
		logger.Log.Error("cannot save session attributes", zap.String("conversation", conversationID), zap.Error(err))
		metrics.TurnsTotal.WithLabelValues(intent, metrics.OutcomeStoreFailure).Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	metrics.TurnsTotal.WithLabelValues(intent, metrics.OutcomeOK).Inc()
	if out.EndSession {
		metrics.SessionsEnded.Inc()
	}

	// установка правильного заголовка для типа данных
	w.Header().Set("Content-Type", "application/json")

	// сериализуем ответ сервера
	enc := json.NewEncoder(w)
	if err := enc.Encode(out.Render()); err != nil {
		logger.Log.Debug("error encoding response", zap.Error(err))
		return
	}

	logger.Log.Debug("sending HTTP 200 response")
}
