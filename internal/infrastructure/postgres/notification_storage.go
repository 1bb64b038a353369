package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/calldesk-api/internal/client/notifications"
)

// querier subconjunto de *pgxpool.Pool que usa el storage.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ notifications.Storage = (*NotificationStorage)(nil)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS desk_notifications (
		owner      TEXT PRIMARY KEY,
		items      JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// NotificationStorage una fila JSONB por operador.
type NotificationStorage struct {
	db    querier
	owner string
}

// NewNotificationStorage construye el storage. db suele ser un *pgxpool.Pool.
func NewNotificationStorage(db querier, owner string) *NotificationStorage {
	if owner == "" {
		owner = "default"
	}
	return &NotificationStorage{db: db, owner: owner}
}

// EnsureSchema crea la tabla si no existe.
func (s *NotificationStorage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("crear tabla desk_notifications: %w", err)
	}
	return nil
}

// Load devuelve la lista del operador; sin fila devuelve lista vacía.
func (s *NotificationStorage) Load(ctx context.Context) ([]notifications.Notification, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT items FROM desk_notifications WHERE owner = $1`, s.owner).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	var list []notifications.Notification
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("unmarshal notifications: %w", err)
	}
	return list, nil
}

// Save reemplaza la lista del operador (upsert).
func (s *NotificationStorage) Save(ctx context.Context, list []notifications.Notification) error {
	if list == nil {
		list = []notifications.Notification{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}
	query := `
		INSERT INTO desk_notifications (owner, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`
	if _, err := s.db.Exec(ctx, query, s.owner, raw); err != nil {
		return fmt.Errorf("upsert notifications: %w", err)
	}
	return nil
}

// Clear borra la fila del operador.
func (s *NotificationStorage) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM desk_notifications WHERE owner = $1`, s.owner); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
