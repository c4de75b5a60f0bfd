package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/push-notifier/internal/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Repository provides methods to interact with notifications table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateNotification inserts a new unsent notification and returns its ID.
func (r *Repository) CreateNotification(ctx context.Context, notification model.Notification) (uuid.UUID, error) {
	query := `
		INSERT INTO notifications (message, time)
		VALUES ($1, $2)
		RETURNING id;
    `

	err := r.db.Master.QueryRowContext(ctx, query, notification.Message, notification.Time).Scan(&notification.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification.ID, nil
}

// GetDueNotifications returns unsent notifications whose time is at or before now,
// oldest first, capped at limit.
//
// The query goes to the master: a lagging replica could hand back rows that were
// already claimed.
func (r *Repository) GetDueNotifications(ctx context.Context, now time.Time, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, message, time, sent, sent_at, attempts, created_at, updated_at
		FROM notifications
		WHERE time <= $1 AND sent = false
		ORDER BY time ASC
		LIMIT $2;
    `

	rows, err := r.db.Master.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// GetPendingNotifications returns unsent notifications ordered by time.
func (r *Repository) GetPendingNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, message, time, sent, sent_at, attempts, created_at, updated_at
		FROM notifications
		WHERE sent = false
		ORDER BY time ASC
		LIMIT $1;
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// ClaimNotification marks a single notification as sent and increments its
// attempts counter in one statement.
//
// It reports false when the row was already claimed or no longer exists, in
// which case the caller must not deliver it.
func (r *Repository) ClaimNotification(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE notifications
		SET sent = true, sent_at = $1, attempts = attempts + 1, updated_at = now()
		WHERE id = $2 AND sent = false;
    `

	res, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}

	return rows == 1, nil
}

// ClaimNotifications claims every still-unsent notification in ids and returns
// how many rows were claimed.
func (r *Repository) ClaimNotifications(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE notifications
		SET sent = true, sent_at = $1, attempts = attempts + 1, updated_at = now()
		WHERE id = ANY($2::uuid[]) AND sent = false;
    `

	res, err := r.db.ExecContext(ctx, query, now, pq.Array(idStrings(ids)))
	if err != nil {
		return 0, fmt.Errorf("failed to claim notifications: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

// UpdateNotification replaces message and time and re-arms the notification
// for delivery.
func (r *Repository) UpdateNotification(ctx context.Context, id uuid.UUID, message string, at time.Time) error {
	query := `
		UPDATE notifications
		SET message = $1, time = $2, sent = false, attempts = 0, updated_at = now()
		WHERE id = $3;
    `

	res, err := r.db.ExecContext(ctx, query, message, at, id)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// DeleteNotification removes a notification by its ID.
func (r *Repository) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM notifications
		WHERE id = $1;
    `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// DeleteSentBefore removes sent notifications whose sent_at is older than cutoff.
// Unsent rows are never touched.
func (r *Repository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE sent = true AND sent_at < $1;
    `

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sent notifications: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

func scanNotifications(rows *sql.Rows) ([]model.Notification, error) {
	notifications := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n      model.Notification
			sentAt sql.NullTime
		)

		if err := rows.Scan(
			&n.ID, &n.Message, &n.Time, &n.Sent, &sentAt, &n.Attempts, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if sentAt.Valid {
			t := sentAt.Time
			n.SentAt = &t
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}

	return out
}
