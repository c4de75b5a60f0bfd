package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/push-notifier/internal/model"
)

// pendingLimit caps the number of notifications returned by GetPending.
const pendingLimit = 100

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrTimeInPast   = errors.New("scheduled time must be in the future")
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks
type notificationRepository interface {
	CreateNotification(context.Context, model.Notification) (uuid.UUID, error)
	GetPendingNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	UpdateNotification(ctx context.Context, id uuid.UUID, message string, at time.Time) error
	DeleteNotification(context.Context, uuid.UUID) error
}

type Service struct {
	repo notificationRepository
	now  func() time.Time
}

func NewService(repo notificationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Schedule stores a new reminder. The message is trimmed and must not be
// empty, and at must be strictly in the future.
func (s *Service) Schedule(ctx context.Context, message string, at time.Time) (uuid.UUID, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return uuid.Nil, ErrEmptyMessage
	}

	if !at.After(s.now()) {
		return uuid.Nil, ErrTimeInPast
	}

	id, err := s.repo.CreateNotification(ctx, model.Notification{Message: message, Time: at})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create notification: %w", err)
	}

	zlog.Logger.Info().Str("id", id.String()).Time("time", at).Msg("notification scheduled")

	return id, nil
}

// Edit replaces message and time and re-arms the notification for delivery.
//
// Unlike Schedule, a time in the past is accepted: the notification simply
// becomes due on the next scheduler pass.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, message string, at time.Time) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	if err := s.repo.UpdateNotification(ctx, id, message, at); err != nil {
		return fmt.Errorf("update notification: %w", err)
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	return nil
}

// GetPending returns unsent notifications ordered by due time.
func (s *Service) GetPending(ctx context.Context, strategy retry.Strategy) ([]model.Notification, error) {
	var notifications []model.Notification

	err := retry.Do(func() error {
		var err error
		notifications, err = s.repo.GetPendingNotifications(ctx, pendingLimit)
		return err
	}, strategy)
	if err != nil {
		return nil, fmt.Errorf("get pending notifications: %w", err)
	}

	return notifications, nil
}
