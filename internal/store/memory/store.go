package memory

import (
	"context"
	"encoding/json"
	"sync"

	"skill-bridge/internal/store"
)

// Store хранит атрибуты в памяти процесса.
// Значения хранятся сериализованными, чтобы вызывающий код не мог изменить их по ссылке.
type Store struct {
	mu    sync.RWMutex
	attrs map[string][]byte
}

// NewStore возвращает пустое хранилище
func NewStore() *Store {
	return &Store{attrs: make(map[string][]byte)}
}

// Load возвращает атрибуты диалога
func (s *Store) Load(_ context.Context, conversationID string) (map[string]any, error) {
	if conversationID == "" {
		return nil, store.ErrEmptyConversation
	}

	s.mu.RLock()
	raw, ok := s.attrs[conversationID]
	s.mu.RUnlock()

	attrs := make(map[string]any)
	if !ok {
		return attrs, nil
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Save заменяет атрибуты диалога
func (s *Store) Save(_ context.Context, conversationID string, attrs map[string]any) error {
	if conversationID == "" {
		return store.ErrEmptyConversation
	}

	raw, err := json.Marshal(attrs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.attrs[conversationID] = raw
	s.mu.Unlock()
	return nil
}
