package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/push-notifier/internal/model"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Repository provides methods to interact with subscriptions table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new subscription repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateSubscription stores a subscription and returns its ID.
//
// Records with the same endpoint are removed in the same transaction, so a
// re-subscription always supersedes the previous one.
func (r *Repository) CreateSubscription(ctx context.Context, sub model.Subscription) (uuid.UUID, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE endpoint = $1;`, sub.Endpoint); err != nil {
		return uuid.Nil, fmt.Errorf("failed to remove previous subscription: %w", err)
	}

	query := `
		INSERT INTO subscriptions (endpoint, expiration_time, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
    `

	var expiration sql.NullTime
	if sub.ExpirationTime != nil {
		expiration = sql.NullTime{Time: *sub.ExpirationTime, Valid: true}
	}

	err = tx.QueryRowContext(ctx, query, sub.Endpoint, expiration, sub.Keys.P256dh, sub.Keys.Auth).Scan(&sub.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit subscription: %w", err)
	}

	return sub.ID, nil
}

// GetAllSubscriptions returns every stored subscription. An empty store yields
// an empty slice, not an error.
//
// It reads from the master: a replica may still list subscriptions the
// scheduler has just removed as gone.
func (r *Repository) GetAllSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	query := `
		SELECT id, endpoint, expiration_time, p256dh, auth, created_at
		FROM subscriptions;
    `

	rows, err := r.db.Master.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// GetByEndpoint returns subscriptions for an endpoint, newest first.
func (r *Repository) GetByEndpoint(ctx context.Context, endpoint string) ([]model.Subscription, error) {
	query := `
		SELECT id, endpoint, expiration_time, p256dh, auth, created_at
		FROM subscriptions
		WHERE endpoint = $1
		ORDER BY created_at DESC;
    `

	rows, err := r.db.Master.QueryContext(ctx, query, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions by endpoint: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// DeleteSubscription removes a subscription by its ID.
func (r *Repository) DeleteSubscription(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// DeleteSubscriptions removes every subscription in ids and returns the number removed.
func (r *Repository) DeleteSubscriptions(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ANY($1::uuid[]);`, pq.Array(strs))
	if err != nil {
		return 0, fmt.Errorf("failed to delete subscriptions: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

// DeleteByEndpoint removes every subscription registered for endpoint.
func (r *Repository) DeleteByEndpoint(ctx context.Context, endpoint string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE endpoint = $1;`, endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to delete subscriptions by endpoint: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

// CountSubscriptions returns the total number of stored subscriptions.
func (r *Repository) CountSubscriptions(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Master.QueryRowContext(ctx, `SELECT count(*) FROM subscriptions;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	return count, nil
}

// DistinctEndpoints returns every endpoint that has at least one subscription.
func (r *Repository) DistinctEndpoints(ctx context.Context) ([]string, error) {
	rows, err := r.db.Master.QueryContext(ctx, `SELECT DISTINCT endpoint FROM subscriptions;`)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct endpoints: %w", err)
	}
	defer rows.Close()

	endpoints := make([]string, 0)
	for rows.Next() {
		var endpoint string
		if err := rows.Scan(&endpoint); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}

		endpoints = append(endpoints, endpoint)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate endpoints: %w", err)
	}

	return endpoints, nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	subs := make([]model.Subscription, 0)
	for rows.Next() {
		var (
			s          model.Subscription
			expiration sql.NullTime
		)

		if err := rows.Scan(&s.ID, &s.Endpoint, &expiration, &s.Keys.P256dh, &s.Keys.Auth, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}

		if expiration.Valid {
			t := expiration.Time
			s.ExpirationTime = &t
		}

		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subs, nil
}
