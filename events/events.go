// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/models"
)

// Execer is satisfied by *sql.DB and *sql.Tx so events can join the
// transaction that caused them.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queryer is satisfied by *sql.DB and *sql.Tx
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Manager struct {
	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// CrackedPassword announces that cracker broke victim's password and moved value.
func (m *Manager) CrackedPassword(ctx context.Context, ex Execer, cracker, victim *models.User, value int64) error {
	message := fmt.Sprintf("%s hacked %s's bank account and stole $%d", cracker.Handle, victim.Handle, value)
	slog.Info("password cracked",
		"cracker", cracker.Handle,
		"victim", victim.Handle,
		"value", value,
	)
	return m.broadcast(ctx, ex, "Password Cracked", message)
}

// SwatRequested announces that user paid to have target SWAT'd.
func (m *Manager) SwatRequested(ctx context.Context, ex Execer, user, target *models.User, bribe int64) error {
	message := fmt.Sprintf("%s bribed the admins to SWAT %s", user.Handle, target.Handle)
	slog.Info("swat requested",
		"user", user.Handle,
		"target", target.Handle,
		"bribe", bribe,
	)
	return m.broadcast(ctx, ex, "SWAT Requested", message)
}

func (m *Manager) broadcast(ctx context.Context, ex Execer, title, message string) error {
	id, err := auth.GenerateID(16)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO notification (id, user_id, title, message, created_at)
		VALUES ($1, NULL, $2, $3, $4)
	`, id, title, message, m.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// Recent returns the newest notifications visible to userID, broadcasts included
func Recent(ctx context.Context, q Queryer, userID string, limit int) ([]models.Notification, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, title, message, created_at
		FROM notification
		WHERE user_id IS NULL OR user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var userIDCol sql.NullString
		var createdAt int64
		if err := rows.Scan(&n.ID, &userIDCol, &n.Title, &n.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if userIDCol.Valid {
			n.UserID = &userIDCol.String
		}
		n.CreatedAt = time.Unix(createdAt, 0)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
