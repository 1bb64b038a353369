// Package redis persiste el historial de notificaciones del cliente de escritorio en Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/calldesk-api/internal/client/notifications"
)

const keyPrefix = "calldesk:notifications:"

var _ notifications.Storage = (*NotificationStorage)(nil)

// NotificationStorage guarda la lista completa como un blob JSON por operador.
type NotificationStorage struct {
	client *goredis.Client
	key    string
}

// NewNotificationStorage conecta con Redis y verifica la conexión.
func NewNotificationStorage(ctx context.Context, redisURL, owner string) (*NotificationStorage, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewNotificationStorageWithClient(client, owner), nil
}

// NewNotificationStorageWithClient usa un cliente existente.
func NewNotificationStorageWithClient(client *goredis.Client, owner string) *NotificationStorage {
	if owner == "" {
		owner = "default"
	}
	return &NotificationStorage{client: client, key: keyPrefix + owner}
}

// Load devuelve la lista guardada; sin clave devuelve lista vacía.
func (s *NotificationStorage) Load(ctx context.Context) ([]notifications.Notification, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	var list []notifications.Notification
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("unmarshal notifications: %w", err)
	}
	return list, nil
}

// Save reemplaza la lista guardada.
func (s *NotificationStorage) Save(ctx context.Context, list []notifications.Notification) error {
	if list == nil {
		list = []notifications.Notification{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// Clear borra la clave del operador.
func (s *NotificationStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Close cierra el cliente.
func (s *NotificationStorage) Close() error {
	return s.client.Close()
}
