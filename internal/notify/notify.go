// Package notify records user-facing notifications about failed and
// completed console actions.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-admin/internal/api"
)

const dbTimeout = 5 * time.Second

// Level is the severity shown to the user.
type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notification is one message for the console user.
type Notification struct {
	Level     Level     `json:"level"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	Status    int       `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromError builds an error notification. The message comes from the
// backend's reply when it carried one.
func FromError(resource, action string, err error) Notification {
	return Notification{
		Level:    LevelError,
		Resource: resource,
		Action:   action,
		Message:  api.UserMessage(err),
		Status:   api.StatusCode(err),
	}
}

// Notifier records notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Feed lists the most recent notifications, newest first.
type Feed interface {
	Recent(ctx context.Context, limit int) ([]Notification, error)
}

func validate(n *Notification) error {
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}

// Nop ignores all notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error {
	return nil
}

// Memory keeps notifications in memory for tests and UI polling.
type Memory struct {
	mu    sync.Mutex
	items []Notification
}

func NewMemory() *Memory {
	return &Memory{items: []Notification{}}
}

func (m *Memory) Notify(_ context.Context, n Notification) error {
	if err := validate(&n); err != nil {
		return err
	}

	m.mu.Lock()
	m.items = append(m.items, n)
	m.mu.Unlock()

	return nil
}

// Notifications returns everything recorded, oldest first.
func (m *Memory) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification{}, m.items...)
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []Notification{}
	for i := len(m.items) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

// Log writes notifications to a slog logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, n Notification) error {
	if err := validate(&n); err != nil {
		return err
	}

	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notification",
		"level", n.Level,
		"resource", n.Resource,
		"action", n.Action,
		"status", n.Status,
		"message", n.Message,
	)
	return nil
}

// Schema creates the notification log table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS admin_notifications (
		id         BIGSERIAL PRIMARY KEY,
		level      TEXT NOT NULL,
		resource   TEXT NOT NULL DEFAULT '',
		action     TEXT NOT NULL DEFAULT '',
		message    TEXT NOT NULL,
		status     INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS admin_notifications_created_at_idx
		ON admin_notifications (created_at DESC)`,
}

// Postgres persists notifications to the admin_notifications table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Notify(ctx context.Context, n Notification) error {
	if p == nil || p.pool == nil {
		return fmt.Errorf("notification pool is nil")
	}
	if err := validate(&n); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO admin_notifications (level, resource, action, message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(n.Level), n.Resource, n.Action, n.Message, n.Status, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	slog.Debug("notification logged", "resource", n.Resource, "action", n.Action)
	return nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Notification, error) {
	if p == nil || p.pool == nil {
		return nil, fmt.Errorf("notification pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT level, resource, action, message, status, created_at
		 FROM admin_notifications
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		var level string
		if err := rows.Scan(&level, &n.Resource, &n.Action, &n.Message, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Level = Level(level)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	return out, nil
}

// Multi fans a notification out to several notifiers. Every notifier is
// tried; their errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
