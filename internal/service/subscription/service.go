package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/push-notifier/internal/model"
)

var ErrInvalidSubscription = errors.New("endpoint and keys are required")

//go:generate mockgen -source=service.go -destination=../../mocks/service/subscription/mock.go -package=mocks
type subscriptionRepository interface {
	CreateSubscription(context.Context, model.Subscription) (uuid.UUID, error)
	GetByEndpoint(ctx context.Context, endpoint string) ([]model.Subscription, error)
	DeleteSubscriptions(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) (int64, error)
	CountSubscriptions(context.Context) (int, error)
	DistinctEndpoints(context.Context) ([]string, error)
}

// CleanupReport summarizes a de-duplication pass.
type CleanupReport struct {
	Removed       int64 `json:"removed"`
	Remaining     int   `json:"remaining"`
	UniqueDevices int   `json:"uniqueDevices"`
}

// Stats describes the current subscriber population.
type Stats struct {
	TotalSubscriptions int `json:"totalSubscriptions"`
	UniqueDevices      int `json:"uniqueDevices"`
	Duplicates         int `json:"duplicates"`
}

type Service struct {
	repo subscriptionRepository
}

func NewService(repo subscriptionRepository) *Service {
	return &Service{repo: repo}
}

// Subscribe stores sub, replacing any earlier record for the same endpoint,
// and returns the total number of stored subscriptions.
func (s *Service) Subscribe(ctx context.Context, strategy retry.Strategy, sub model.Subscription) (int, error) {
	if strings.TrimSpace(sub.Endpoint) == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return 0, ErrInvalidSubscription
	}

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, fmt.Errorf("create subscription: %w", err)
	}

	total, err := s.count(ctx, strategy)
	if err != nil {
		return 0, err
	}

	zlog.Logger.Info().Str("id", id.String()).Int("total", total).Msg("subscription saved")

	return total, nil
}

// Unsubscribe removes every record registered for endpoint.
func (s *Service) Unsubscribe(ctx context.Context, endpoint string) (int64, error) {
	removed, err := s.repo.DeleteByEndpoint(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("delete subscription: %w", err)
	}

	return removed, nil
}

// Cleanup keeps only the most recently created subscription for every
// endpoint and deletes the rest.
func (s *Service) Cleanup(ctx context.Context, strategy retry.Strategy) (CleanupReport, error) {
	endpoints, err := s.distinct(ctx, strategy)
	if err != nil {
		return CleanupReport{}, err
	}

	var removed int64
	for _, endpoint := range endpoints {
		subs, err := s.repo.GetByEndpoint(ctx, endpoint)
		if err != nil {
			return CleanupReport{}, fmt.Errorf("get subscriptions by endpoint: %w", err)
		}

		if len(subs) < 2 {
			continue
		}

		// subs is ordered newest first.
		ids := make([]uuid.UUID, 0, len(subs)-1)
		for _, sub := range subs[1:] {
			ids = append(ids, sub.ID)
		}

		n, err := s.repo.DeleteSubscriptions(ctx, ids)
		if err != nil {
			return CleanupReport{}, fmt.Errorf("delete duplicate subscriptions: %w", err)
		}
		removed += n
	}

	remaining, err := s.count(ctx, strategy)
	if err != nil {
		return CleanupReport{}, err
	}

	zlog.Logger.Info().
		Int64("removed", removed).
		Int("remaining", remaining).
		Msg("subscription cleanup completed")

	return CleanupReport{
		Removed:       removed,
		Remaining:     remaining,
		UniqueDevices: len(endpoints),
	}, nil
}

func (s *Service) Stats(ctx context.Context, strategy retry.Strategy) (Stats, error) {
	total, err := s.count(ctx, strategy)
	if err != nil {
		return Stats{}, err
	}

	endpoints, err := s.distinct(ctx, strategy)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalSubscriptions: total,
		UniqueDevices:      len(endpoints),
		Duplicates:         total - len(endpoints),
	}, nil
}

func (s *Service) count(ctx context.Context, strategy retry.Strategy) (int, error) {
	var total int

	err := retry.Do(func() error {
		var err error
		total, err = s.repo.CountSubscriptions(ctx)
		return err
	}, strategy)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}

	return total, nil
}

func (s *Service) distinct(ctx context.Context, strategy retry.Strategy) ([]string, error) {
	var endpoints []string

	err := retry.Do(func() error {
		var err error
		endpoints, err = s.repo.DistinctEndpoints(ctx)
		return err
	}, strategy)
	if err != nil {
		return nil, fmt.Errorf("get distinct endpoints: %w", err)
	}

	return endpoints, nil
}
