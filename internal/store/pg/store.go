package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"skill-bridge/internal/logger"
	"skill-bridge/internal/store"
)

// Store реализует интерфейс store.Store и позволяет взаимодействовать с СУБД PostgreSQL
type Store struct {
	// Поле conn содержит объект соединения с СУБД
	conn *sql.DB
}

// NewStore возвращает новый экземпляр PostgreSQL-хранилища
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

// Open открывает соединение через драйвер pgx
func Open(ctx context.Context, dsn string) (*Store, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewStore(conn), nil
}

// Bootstrap подготавливает БД к работе, создавая необходимые таблицы
func (s Store) Bootstrap(ctx context.Context) error {
	// запускаем транзакцию
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// в случае неуспешного коммита все изменения транзации будут отменены
	defer tx.Rollback()

	// атрибуты хранятся целиком, одной строкой на диалог
	_, err = tx.ExecContext(ctx, `
	CREATE TABLE session_attributes (
		conversation_id VARCHAR(256) PRIMARY KEY,
		attributes JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		// таблица уже создана предыдущим запуском
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.DuplicateTable {
			logger.Log.Debug("session_attributes table already exists")
			return nil
		}
		return err
	}

	// коммитим транзакцию
	return tx.Commit()
}

// Load возвращает атрибуты диалога
func (s Store) Load(ctx context.Context, conversationID string) (map[string]any, error) {
	if conversationID == "" {
		return nil, store.ErrEmptyConversation
	}

	row := s.conn.QueryRowContext(ctx, `
	SELECT attributes FROM session_attributes
	WHERE conversation_id = $1
	`, conversationID)

	attrs := make(map[string]any)

	var raw []byte
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return attrs, nil
	}
	if err != nil {
		logger.Log.Debug("cannot load session attributes", zap.Error(err))
		return nil, err
	}

	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Save заменяет атрибуты диалога
func (s Store) Save(ctx context.Context, conversationID string, attrs map[string]any) error {
	if conversationID == "" {
		return store.ErrEmptyConversation
	}
	if attrs == nil {
		attrs = map[string]any{}
	}

	raw, err := json.Marshal(attrs)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO session_attributes
			(conversation_id, attributes, updated_at)
		VALUES
			($1, $2, now())
		ON CONFLICT (conversation_id) DO UPDATE
		SET attributes = EXCLUDED.attributes, updated_at = EXCLUDED.updated_at;
		`, conversationID, string(raw))
	if err != nil {
		// неверный JSON отклоняется самой СУБД
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsDataException(pgErr.Code) {
			return fmt.Errorf("invalid attributes for %s: %w", conversationID, err)
		}
	}
	return err
}

// Close закрывает соединение с СУБД
func (s Store) Close() error {
	return s.conn.Close()
}
