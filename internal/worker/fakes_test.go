package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/push-notifier/internal/model"
	"github.com/aliskhannn/push-notifier/internal/repository/subscription"
	"github.com/aliskhannn/push-notifier/pkg/push"
)

// memStore is an in-memory notification and subscription store that records
// every write it receives.
type memStore struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*model.Notification
	subscriptions []model.Subscription

	claimCalls []uuid.UUID
	bulkClaims [][]uuid.UUID
	deletedSub []uuid.UUID

	dueErr   error
	claimErr map[uuid.UUID]error
	afterDue func() // called after the due set is computed, outside the lock
	onClaim  func(uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		notifications: make(map[uuid.UUID]*model.Notification),
		claimErr:      make(map[uuid.UUID]error),
	}
}

func (m *memStore) addNotification(message string, at time.Time) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.notifications[id] = &model.Notification{ID: id, Message: message, Time: at}

	return id
}

func (m *memStore) addSubscription(endpoint string) model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := model.Subscription{
		ID:       uuid.New(),
		Endpoint: endpoint,
		Keys:     model.Keys{P256dh: "p256dh-" + endpoint, Auth: "auth-" + endpoint},
	}
	m.subscriptions = append(m.subscriptions, sub)

	return sub
}

func (m *memStore) get(id uuid.UUID) model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.notifications[id]
}

// rearm mirrors an edit: the notification becomes unsent with a fresh counter.
func (m *memStore) rearm(id uuid.UUID, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.notifications[id]
	n.Time = at
	n.Sent = false
	n.Attempts = 0
}

func (m *memStore) subscriptionIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.subscriptions))
	for _, s := range m.subscriptions {
		ids = append(ids, s.ID)
	}

	return ids
}

func (m *memStore) GetDueNotifications(_ context.Context, now time.Time, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	if m.dueErr != nil {
		m.mu.Unlock()
		return nil, m.dueErr
	}

	due := make([]model.Notification, 0)
	for _, n := range m.notifications {
		if !n.Sent && !n.Time.After(now) {
			due = append(due, *n)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].Time.Before(due[j].Time) })
	if len(due) > limit {
		due = due[:limit]
	}

	if m.afterDue != nil {
		m.afterDue()
	}

	return due, nil
}

func (m *memStore) ClaimNotification(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	if m.onClaim != nil {
		m.onClaim(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.claimCalls = append(m.claimCalls, id)

	if err := m.claimErr[id]; err != nil {
		return false, err
	}

	return m.claimLocked(id, now), nil
}

func (m *memStore) ClaimNotifications(_ context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bulkClaims = append(m.bulkClaims, ids)

	var claimed int64
	for _, id := range ids {
		if m.claimLocked(id, now) {
			claimed++
		}
	}

	return claimed, nil
}

func (m *memStore) claimLocked(id uuid.UUID, now time.Time) bool {
	n, ok := m.notifications[id]
	if !ok || n.Sent {
		return false
	}

	sentAt := now
	n.Sent = true
	n.SentAt = &sentAt
	n.Attempts++

	return true
}

func (m *memStore) DeleteSentBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, n := range m.notifications {
		if n.Sent && n.SentAt != nil && n.SentAt.Before(cutoff) {
			delete(m.notifications, id)
			deleted++
		}
	}

	return deleted, nil
}

func (m *memStore) GetAllSubscriptions(context.Context) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]model.Subscription(nil), m.subscriptions...), nil
}

func (m *memStore) DeleteSubscription(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletedSub = append(m.deletedSub, id)

	for i, s := range m.subscriptions {
		if s.ID == id {
			m.subscriptions = append(m.subscriptions[:i], m.subscriptions[i+1:]...)
			return nil
		}
	}

	return subscription.ErrSubscriptionNotFound
}

type delivery struct {
	sub     push.Subscription
	payload []byte
}

// fakeTransport records deliveries and answers with a per-endpoint result.
type fakeTransport struct {
	mu        sync.Mutex
	calls     []delivery
	results   map[string]push.Result
	onDeliver func(push.Subscription)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{results: make(map[string]push.Result)}
}

func (f *fakeTransport) Deliver(_ context.Context, sub push.Subscription, payload []byte) push.Result {
	if f.onDeliver != nil {
		f.onDeliver(sub)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, delivery{sub: sub, payload: payload})

	if res, ok := f.results[sub.Endpoint]; ok {
		return res
	}

	return push.Result{Outcome: push.Success, StatusCode: 201}
}

func (f *fakeTransport) deliveries() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]delivery(nil), f.calls...)
}

func gone() push.Result {
	return push.Result{Outcome: push.PermanentFailure, StatusCode: 410, Err: errors.New("gone")}
}

func transient() push.Result {
	return push.Result{Outcome: push.TransientFailure, StatusCode: 503, Err: errors.New("unavailable")}
}

type fakeLease struct {
	acquire  bool
	err      error
	released int
}

func (l *fakeLease) Acquire(context.Context) (bool, error) { return l.acquire, l.err }

func (l *fakeLease) Release(context.Context) error {
	l.released++
	return nil
}
