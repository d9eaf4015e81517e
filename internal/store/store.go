// Package store хранит атрибуты сессии между ходами диалога.
package store

import (
	"context"
	"errors"
)

// ErrEmptyConversation — не передан идентификатор диалога
var ErrEmptyConversation = errors.New("store: empty conversation id")

// Store описывает хранилище атрибутов сессии.
// Save полностью заменяет сохранённые атрибуты, слияния нет.
// Load для неизвестного диалога возвращает пустые атрибуты без ошибки.
type Store interface {
	Load(ctx context.Context, conversationID string) (map[string]any, error)
	Save(ctx context.Context, conversationID string, attrs map[string]any) error
}
