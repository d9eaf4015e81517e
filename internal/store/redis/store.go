package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"skill-bridge/internal/logger"
	"skill-bridge/internal/store"
)

const keyPrefix = "skill-bridge:attrs:"

// Store хранит атрибуты сессии в Redis с ограниченным временем жизни
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore возвращает хранилище поверх готового клиента
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Connect разбирает URL, проверяет соединение и возвращает хранилище
func Connect(ctx context.Context, url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Log.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return NewStore(client, ttl), nil
}

// Load возвращает атрибуты диалога
func (s *Store) Load(ctx context.Context, conversationID string) (map[string]any, error) {
	if conversationID == "" {
		return nil, store.ErrEmptyConversation
	}

	attrs := make(map[string]any)
	raw, err := s.client.Get(ctx, keyPrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return attrs, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("decode attributes of %s: %w", conversationID, err)
	}
	return attrs, nil
}

// Save заменяет атрибуты диалога и продлевает время жизни ключа.
// Пустые атрибуты удаляют ключ.
func (s *Store) Save(ctx context.Context, conversationID string, attrs map[string]any) error {
	if conversationID == "" {
		return store.ErrEmptyConversation
	}

	if len(attrs) == 0 {
		return s.client.Del(ctx, keyPrefix+conversationID).Err()
	}

	raw, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+conversationID, raw, s.ttl).Err()
}

// Close закрывает соединение с Redis
func (s *Store) Close() error {
	return s.client.Close()
}
