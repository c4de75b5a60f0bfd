package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/push-notifier/internal/model"
	"github.com/aliskhannn/push-notifier/internal/repository/subscription"
	"github.com/aliskhannn/push-notifier/pkg/push"
)

type notificationStore interface {
	GetDueNotifications(ctx context.Context, now time.Time, limit int) ([]model.Notification, error)
	ClaimNotification(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ClaimNotifications(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error)
}

type subscriptionStore interface {
	GetAllSubscriptions(ctx context.Context) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, id uuid.UUID) error
}

type pushTransport interface {
	Deliver(ctx context.Context, sub push.Subscription, payload []byte) push.Result
}

type lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// SchedulerOptions tunes a Scheduler.
type SchedulerOptions struct {
	BatchSize   int            // maximum notifications discovered per tick
	Concurrency int            // maximum parallel deliveries within one fan-out
	Retry       retry.Strategy // applied to the discovery query
	Lease       lease          // optional cross-process lease, nil disables it
}

// Scheduler discovers due notifications, claims them and pushes them to every
// subscriber.
type Scheduler struct {
	notifications notificationStore
	subscriptions subscriptionStore
	transport     pushTransport
	opts          SchedulerOptions

	guard runGuard
	now   func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(n notificationStore, s subscriptionStore, t pushTransport, opts SchedulerOptions) *Scheduler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 32
	}

	if opts.Retry.Attempts < 1 {
		opts.Retry.Attempts = 1
	}

	return &Scheduler{
		notifications: n,
		subscriptions: s,
		transport:     t,
		opts:          opts,
		now:           time.Now,
	}
}

// Tick runs one delivery pass. If a previous pass of this Scheduler is still
// running the tick is skipped. Tick never panics and never returns an error:
// failures are logged and the next tick starts fresh.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.guard.TryAcquire() {
		zlog.Logger.Debug().Msg("delivery pass already running, skipping tick")
		return
	}
	defer s.guard.Release()

	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().Interface("panic", r).Msg("delivery pass panicked")
		}
	}()

	if s.opts.Lease != nil {
		ok, err := s.opts.Lease.Acquire(ctx)
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to acquire scheduler lease")
			return
		}

		if !ok {
			zlog.Logger.Debug().Msg("scheduler lease held by another process, skipping tick")
			return
		}

		defer func() {
			if err := s.opts.Lease.Release(context.WithoutCancel(ctx)); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to release scheduler lease")
			}
		}()
	}

	s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	now := s.now()

	var due []model.Notification
	err := retry.Do(func() error {
		var err error
		due, err = s.notifications.GetDueNotifications(ctx, now, s.opts.BatchSize)
		return err
	}, s.opts.Retry)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to discover due notifications")
		return
	}

	if len(due) == 0 {
		zlog.Logger.Debug().Msg("no notifications to send")
		return
	}

	zlog.Logger.Info().Int("count", len(due)).Msg("found due notifications")

	subs, err := s.subscriptions.GetAllSubscriptions(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get subscriptions")
		return
	}

	if len(subs) == 0 {
		s.claimWithoutSubscribers(ctx, due, now)
		return
	}

	for _, n := range due {
		subs = s.process(ctx, n, subs, now)
	}
}

// process delivers one notification. A failure or panic is logged and leaves
// subs untouched, so the rest of the batch still goes out.
func (s *Scheduler) process(
	ctx context.Context,
	n model.Notification,
	subs []model.Subscription,
	now time.Time,
) (alive []model.Subscription) {
	alive = subs

	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().Interface("panic", r).Str("id", n.ID.String()).Msg("notification processing panicked")
		}
	}()

	delivered, err := s.deliver(ctx, n, subs, now)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", n.ID.String()).Msg("failed to process notification")
	}

	return delivered
}

// claimWithoutSubscribers marks due notifications as sent so they do not pile
// up while nobody is listening.
func (s *Scheduler) claimWithoutSubscribers(ctx context.Context, due []model.Notification, now time.Time) {
	ids := make([]uuid.UUID, 0, len(due))
	for _, n := range due {
		ids = append(ids, n.ID)
	}

	claimed, err := s.notifications.ClaimNotifications(ctx, ids, now)
	if err != nil {
		zlog.Logger.Error().Err(err).Int("count", len(ids)).Msg("failed to mark notifications without subscribers")
		return
	}

	zlog.Logger.Warn().Int64("claimed", claimed).Msg("no subscriptions found, notifications marked as sent")
}

// deliver claims n and fans it out to subs. It returns the subscriptions that
// are still valid after permanent failures were reconciled.
func (s *Scheduler) deliver(
	ctx context.Context,
	n model.Notification,
	subs []model.Subscription,
	now time.Time,
) ([]model.Subscription, error) {
	claimed, err := s.notifications.ClaimNotification(ctx, n.ID, now)
	if err != nil {
		return subs, fmt.Errorf("claim notification: %w", err)
	}

	if !claimed {
		zlog.Logger.Info().Str("id", n.ID.String()).Msg("notification already claimed, skipping")
		return subs, nil
	}

	payload, err := json.Marshal(model.NewPayload(n.Message, now))
	if err != nil {
		return subs, fmt.Errorf("marshal payload: %w", err)
	}

	results := s.fanOut(ctx, subs, payload)

	alive := make([]model.Subscription, 0, len(subs))
	successful := 0
	for i, res := range results {
		sub := subs[i]

		switch {
		case res.Outcome == push.Success:
			successful++
			alive = append(alive, sub)
		case res.Gone():
			zlog.Logger.Warn().Err(res.Err).Str("subscription", sub.ID.String()).Msg("subscription is gone")
			s.removeSubscription(ctx, sub.ID)
		default:
			zlog.Logger.Warn().
				Err(res.Err).
				Int("status", res.StatusCode).
				Str("subscription", sub.ID.String()).
				Msg("failed to deliver notification")
			alive = append(alive, sub)
		}
	}

	zlog.Logger.Info().
		Str("id", n.ID.String()).
		Int("successful", successful).
		Int("total", len(subs)).
		Msg("notification delivered")

	return alive, nil
}

// fanOut delivers payload to every subscription concurrently. Results are
// index-aligned with subs, and a failing delivery never cancels the others.
func (s *Scheduler) fanOut(ctx context.Context, subs []model.Subscription, payload []byte) []push.Result {
	results := make([]push.Result, len(subs))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = push.Result{
						Outcome: push.TransientFailure,
						Err:     fmt.Errorf("delivery panicked: %v", r),
					}
				}
			}()

			results[i] = s.transport.Deliver(ctx, push.Subscription{
				Endpoint: sub.Endpoint,
				P256dh:   sub.Keys.P256dh,
				Auth:     sub.Keys.Auth,
			}, payload)

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (s *Scheduler) removeSubscription(ctx context.Context, id uuid.UUID) {
	err := s.subscriptions.DeleteSubscription(ctx, id)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		zlog.Logger.Error().Err(err).Str("subscription", id.String()).Msg("failed to remove invalid subscription")
		return
	}

	zlog.Logger.Info().Str("subscription", id.String()).Msg("removed invalid subscription")
}
