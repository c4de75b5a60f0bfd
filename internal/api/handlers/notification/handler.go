package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/push-notifier/internal/api/respond"
	"github.com/aliskhannn/push-notifier/internal/config"
	"github.com/aliskhannn/push-notifier/internal/model"
	"github.com/aliskhannn/push-notifier/internal/repository/notification"
	service "github.com/aliskhannn/push-notifier/internal/service/notification"
)

// dateTimeLayouts are the accepted formats of the dateTime field. Values
// without an offset are interpreted in the configured timezone.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
}

// notificationService defines the interface that the Handler depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	Schedule(ctx context.Context, message string, at time.Time) (uuid.UUID, error)
	Edit(ctx context.Context, id uuid.UUID, message string, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetPending(ctx context.Context, strategy retry.Strategy) ([]model.Notification, error)
}

// Handler handles HTTP requests related to notifications.
type Handler struct {
	service   notificationService
	validator *validator.Validate
	cfg       *config.Config
	loc       *time.Location
}

// NewHandler creates a new Handler instance.
//
// The configured timezone has already been validated by config.Load, so an
// unknown name falls back to UTC.
func NewHandler(
	s notificationService,
	v *validator.Validate,
	cfg *config.Config,
) *Handler {
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return &Handler{service: s, validator: v, cfg: cfg, loc: loc}
}

// ScheduleRequest is the JSON body of schedule and edit requests.
type ScheduleRequest struct {
	Message  string `json:"message" validate:"required"`
	DateTime string `json:"dateTime" validate:"required"`
}

// ScheduleResponse is returned after a notification has been scheduled.
type ScheduleResponse struct {
	Status string    `json:"status"`
	ID     uuid.UUID `json:"id"`
}

// StatusResponse is returned after an edit or delete.
type StatusResponse struct {
	Status string `json:"status"`
}

// Schedule handles POST /schedule.
func (h *Handler) Schedule(c *ginext.Context) {
	req, at, ok := h.decode(c)
	if !ok {
		return
	}

	id, err := h.service.Schedule(c.Request.Context(), req.Message, at)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("message and dateTime are required"))
		case errors.Is(err, service.ErrTimeInPast):
			respond.Fail(c.Writer, http.StatusBadRequest, service.ErrTimeInPast)
		default:
			zlog.Logger.Error().Err(err).Msg("failed to schedule notification")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to schedule notification"))
		}
		return
	}

	respond.OK(c.Writer, ScheduleResponse{Status: "scheduled", ID: id})
}

// GetPending handles GET /notifications and returns unsent notifications.
func (h *Handler) GetPending(c *ginext.Context) {
	notifications, err := h.service.GetPending(c.Request.Context(), h.cfg.Retry)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get notifications")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to get notifications"))
		return
	}

	respond.OK(c.Writer, notifications)
}

// Update handles PUT /notifications/:id. The notification is re-armed for
// delivery even if it has already been sent.
func (h *Handler) Update(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, at, ok := h.decode(c)
	if !ok {
		return
	}

	err := h.service.Edit(c.Request.Context(), id, req.Message, at)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("message and dateTime are required"))
		case errors.Is(err, notification.ErrNotificationNotFound):
			zlog.Logger.Warn().Str("id", id.String()).Msg("notification not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
		default:
			zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to update notification")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to update notification"))
		}
		return
	}

	respond.OK(c.Writer, StatusResponse{Status: "updated"})
}

// Delete handles DELETE /notifications/:id.
func (h *Handler) Delete(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			zlog.Logger.Warn().Str("id", id.String()).Msg("notification not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to delete notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to delete notification"))
		return
	}

	respond.OK(c.Writer, StatusResponse{Status: "deleted"})
}

// decode reads and validates a ScheduleRequest and parses its dateTime. On
// failure the error response has already been written.
func (h *Handler) decode(c *ginext.Context) (ScheduleRequest, time.Time, bool) {
	var req ScheduleRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return req, time.Time{}, false
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("message and dateTime are required"))
		return req, time.Time{}, false
	}

	at, err := h.parseDateTime(req.DateTime)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("dateTime", req.DateTime).Msg("failed to parse dateTime")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid dateTime format"))
		return req, time.Time{}, false
	}

	return req, at, true
}

func (h *Handler) parseDateTime(s string) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, h.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, err
}

func parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")

	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		zlog.Logger.Warn().Str("idStr", idStr).Msg("invalid id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	return id, true
}
