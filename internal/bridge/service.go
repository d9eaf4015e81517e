package bridge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"skill-bridge/internal/logger"
	"skill-bridge/internal/models"
)

// ErrTransport — вызов удалённого навыка не удался (сеть, статус, сериализация)
var ErrTransport = errors.New("bridge: transport failure")

// Invoker отправляет запрос удалённому навыку и возвращает его ответ
type Invoker interface {
	Invoke(ctx context.Context, req *models.AlexaRequest) (*models.AlexaResponse, error)
}

// Service обрабатывает один ход диалога целиком:
// строит запрос, вызывает удалённый навык и разбирает ответ.
// Повторных попыток нет.
type Service struct {
	translator    *Translator
	invoker       Invoker
	fallbackTitle string
}

// NewService возвращает новый Service
func NewService(t *Translator, inv Invoker, fallbackTitle string) *Service {
	return &Service{
		translator:    t,
		invoker:       inv,
		fallbackTitle: fallbackTitle,
	}
}

// HandleTurn обрабатывает ход. Ошибка всегда оборачивает ErrTransport или ErrProtocolViolation.
func (s *Service) HandleTurn(ctx context.Context, turn Turn, intent string, slots Slots) (*Outcome, error) {
	sc := NewSessionContext(turn)
	req := s.translator.BuildRequest(turn, sc, intent, slots)

	logger.Log.Debug("invoking remote skill",
		zap.String("intent", intent),
		zap.String("user", sc.UserID),
		zap.Bool("new_session", sc.New),
	)

	resp, err := s.invoker.Invoke(ctx, req)
	if err != nil {
		logger.Log.Error("error calling remote skill", zap.String("intent", intent), zap.Error(err))
		if errors.Is(err, ErrTransport) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	out, err := DecodeResponse(resp, s.fallbackTitle)
	if err != nil {
		logger.Log.Error("no output speech returned", zap.String("intent", intent), zap.Any("response", resp))
		return nil, err
	}

	return out, nil
}
