// Package lambda вызывает удалённый навык Alexa через HTTP-прокси.
package lambda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"skill-bridge/internal/logger"
	"skill-bridge/internal/metrics"
	"skill-bridge/internal/models"
)

// DefaultFunctionName — имя функции удалённого навыка по умолчанию
const DefaultFunctionName = "SlotMachine_v6"

// ErrStatus — прокси ответил кодом ошибки
var ErrStatus = errors.New("lambda: unexpected response status")

// Config — параметры вызова удалённого навыка
type Config struct {
	URL          string
	ClientID     string
	FunctionName string
	// Breaker включает автоматический выключатель: при серии ошибок
	// вызовы на время отклоняются сразу, без обращения к прокси
	Breaker bool
}

// envelope — тело запроса к прокси
type envelope struct {
	FunctionName string               `json:"FunctionName"`
	ClientID     string               `json:"clientId"`
	Payload      *models.AlexaRequest `json:"payload"`
}

// Client реализует bridge.Invoker
type Client struct {
	cfg     Config
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient возвращает новый Client. Таймаут не задаётся:
// время ожидания ограничивает контекст входящего запроса.
func NewClient(cfg Config) *Client {
	if cfg.FunctionName == "" {
		cfg.FunctionName = DefaultFunctionName
	}

	c := &Client{
		cfg:  cfg,
		http: resty.New(),
	}

	if cfg.Breaker {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    cfg.FunctionName,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Log.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// Invoke отправляет запрос удалённому навыку и возвращает его ответ
func (c *Client) Invoke(ctx context.Context, req *models.AlexaRequest) (*models.AlexaResponse, error) {
	if c.breaker == nil {
		return c.invoke(ctx, req)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.invoke(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.AlexaResponse), nil
}

func (c *Client) invoke(ctx context.Context, req *models.AlexaRequest) (*models.AlexaResponse, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		metrics.RPCDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}()

	var out models.AlexaResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(envelope{
			FunctionName: c.cfg.FunctionName,
			ClientID:     c.cfg.ClientID,
			Payload:      req,
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.cfg.URL)
	if err != nil {
		status = "error"
		return nil, fmt.Errorf("lambda: call %s: %w", c.cfg.URL, err)
	}

	if resp.IsError() {
		status = "error"
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	logger.Log.Debug("remote skill responded", zap.ByteString("body", resp.Body()))

	return &out, nil
}
