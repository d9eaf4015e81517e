package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"skill-bridge/internal/bridge"
	"skill-bridge/internal/lambda"
)

// Драйверы хранилища атрибутов сессии
const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
)

type config struct {
	Address  string      `mapstructure:"address"`
	LogLevel string      `mapstructure:"log_level"`
	AppID    string      `mapstructure:"app_id"`
	RPC      rpcConfig   `mapstructure:"rpc"`
	Store    storeConfig `mapstructure:"store"`
	Card     cardConfig  `mapstructure:"card"`
}

type rpcConfig struct {
	URL          string `mapstructure:"url"`
	ClientID     string `mapstructure:"client_id"`
	FunctionName string `mapstructure:"function_name"`
	Breaker      bool   `mapstructure:"breaker"`
}

type storeConfig struct {
	Driver      string        `mapstructure:"driver"`
	RedisURL    string        `mapstructure:"redis_url"`
	DatabaseDSN string        `mapstructure:"database_dsn"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type cardConfig struct {
	FallbackTitle string `mapstructure:"fallback_title"`
}

// loadConfig собирает конфигурацию из флагов, переменных окружения SKILL_* и файла.
// Явно заданный флаг важнее переменной окружения, переменная окружения важнее файла.
func loadConfig(args []string) (*config, error) {
	fs := pflag.NewFlagSet("skill", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", "", "path to config file")

	flags := []struct {
		key   string
		name  string
		short string
		def   any
		help  string
	}{
		{"address", "address", "a", ":8080", "address and port to run server"},
		{"log_level", "log-level", "l", "info", "log level"},
		{"app_id", "app-id", "", "", "remote skill application id"},
		{"rpc.url", "rpc-url", "", "", "remote skill proxy endpoint"},
		{"rpc.client_id", "rpc-client-id", "", "", "remote skill proxy client id"},
		{"rpc.function_name", "rpc-function", "", lambda.DefaultFunctionName, "remote skill function name"},
		{"rpc.breaker", "rpc-breaker", "", false, "enable circuit breaker on remote calls"},
		{"store.driver", "store", "", storeMemory, "session attributes store: memory, redis or postgres"},
		{"store.redis_url", "redis-url", "", "", "redis url"},
		{"store.database_dsn", "database-dsn", "", "", "postgres dsn"},
		{"store.ttl", "store-ttl", "", 24 * time.Hour, "session attributes ttl (redis)"},
		{"card.fallback_title", "card-title", "", bridge.DefaultCardTitle, "card title when the template has none"},
	}

	for _, f := range flags {
		switch def := f.def.(type) {
		case string:
			fs.StringP(f.name, f.short, def, f.help)
		case bool:
			fs.BoolP(f.name, f.short, def, f.help)
		case time.Duration:
			fs.DurationP(f.name, f.short, def, f.help)
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for _, f := range flags {
		if err := v.BindPFlag(f.key, fs.Lookup(f.name)); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix("SKILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Store.Driver {
	case storeMemory, storeRedis, storePostgres:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return &cfg, nil
}
