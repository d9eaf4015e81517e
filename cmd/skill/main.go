package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"skill-bridge/internal/bridge"
	"skill-bridge/internal/lambda"
	"skill-bridge/internal/logger"
	"skill-bridge/internal/store"
	"skill-bridge/internal/store/memory"
	"skill-bridge/internal/store/pg"
	redisstore "skill-bridge/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

// для инициализации зависимостей сервера перед запуском
func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()

	ctx := context.Background()

	st, closer, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closer.Close()

	client := lambda.NewClient(lambda.Config{
		URL:          cfg.RPC.URL,
		ClientID:     cfg.RPC.ClientID,
		FunctionName: cfg.RPC.FunctionName,
		Breaker:      cfg.RPC.Breaker,
	})
	svc := bridge.NewService(bridge.NewTranslator(cfg.AppID), client, cfg.Card.FallbackTitle)

	a := newApp(st, svc)

	logger.Log.Info("Running server",
		zap.String("address", cfg.Address),
		zap.String("store", cfg.Store.Driver),
		zap.String("rpc", cfg.RPC.URL),
	)
	return http.ListenAndServe(cfg.Address, a.router())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore создаёт хранилище атрибутов сессии по имени драйвера
func openStore(ctx context.Context, cfg storeConfig) (store.Store, io.Closer, error) {
	switch cfg.Driver {
	case storeRedis:
		s, err := redisstore.Connect(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case storePostgres:
		s, err := pg.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Bootstrap(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("bootstrap postgres: %w", err)
		}
		return s, s, nil
	default:
		return memory.NewStore(), nopCloser{}, nil
	}
}
