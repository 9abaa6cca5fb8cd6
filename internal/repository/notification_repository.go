package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/juajobs/juajobs-backend/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

const notificationColumns = `id, user_id, event_type, payload, is_read, read_at, created_at`

// NotificationRepository owns the append-only notifications table.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create appends a notification. A nil payload is stored as an empty object.
func (r *NotificationRepository) Create(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) (*models.Notification, error) {
	raw := json.RawMessage(`{}`)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("notification repository: marshal payload %w", err)
		}
		raw = data
	}

	var n models.Notification
	query := `
		INSERT INTO notifications (user_id, event_type, payload)
		VALUES ($1, $2, $3)
		RETURNING ` + notificationColumns

	if err := r.db.GetContext(ctx, &n, query, userID, eventType, raw); err != nil {
		return nil, fmt.Errorf("notification repository: create %w", err)
	}

	return &n, nil
}

// ListByUser returns a user's notifications, newest first. unreadOnly
// narrows to the unread partial index.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("notification repository: list by user %w", err)
	}

	return notifications, nil
}

// CountUnread returns the unread badge count.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read. Ownership is part of the WHERE.
// Marking an already-read notification is a no-op; COALESCE keeps the
// original read_at so zero affected rows only ever means missing or
// not owned.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("notification repository: mark read %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark all read %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark all read rows affected %w", err)
	}
	return affected, nil
}
