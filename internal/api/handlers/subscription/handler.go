package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/push-notifier/internal/api/respond"
	"github.com/aliskhannn/push-notifier/internal/config"
	"github.com/aliskhannn/push-notifier/internal/model"
	service "github.com/aliskhannn/push-notifier/internal/service/subscription"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/subscription/mock.go -package=mocks
type subscriptionService interface {
	Subscribe(ctx context.Context, strategy retry.Strategy, sub model.Subscription) (int, error)
	Unsubscribe(ctx context.Context, endpoint string) (int64, error)
	Cleanup(ctx context.Context, strategy retry.Strategy) (service.CleanupReport, error)
	Stats(ctx context.Context, strategy retry.Strategy) (service.Stats, error)
}

// Handler serves subscription registration and maintenance endpoints.
type Handler struct {
	service   subscriptionService
	validator *validator.Validate
	cfg       *config.Config
}

func NewHandler(s subscriptionService, v *validator.Validate, cfg *config.Config) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

// SubscribeRequest mirrors the browser PushSubscription JSON.
type SubscribeRequest struct {
	Endpoint       string   `json:"endpoint" validate:"required,url"`
	ExpirationTime *float64 `json:"expirationTime"` // milliseconds since epoch, or null
	Keys           struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

// UnsubscribeRequest identifies the endpoint to forget.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type SubscribeResponse struct {
	Success            bool `json:"success"`
	TotalSubscriptions int  `json:"totalSubscriptions"`
}

type UnsubscribeResponse struct {
	Removed int64 `json:"removed"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// Subscribe handles POST /subscribe.
func (h *Handler) Subscribe(c *ginext.Context) {
	var req SubscribeRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to decode subscription")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate subscription")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	sub := model.Subscription{
		Endpoint: req.Endpoint,
		Keys:     model.Keys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
	}
	if req.ExpirationTime != nil {
		exp := time.UnixMilli(int64(*req.ExpirationTime)).UTC()
		sub.ExpirationTime = &exp
	}

	total, err := h.service.Subscribe(c.Request.Context(), h.cfg.Retry, sub)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			respond.Fail(c.Writer, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to save subscription")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to save subscription"))
		return
	}

	respond.Created(c.Writer, SubscribeResponse{Success: true, TotalSubscriptions: total})
}

// Unsubscribe handles POST /unsubscribe.
func (h *Handler) Unsubscribe(c *ginext.Context) {
	var req UnsubscribeRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("endpoint is required"))
		return
	}

	removed, err := h.service.Unsubscribe(c.Request.Context(), req.Endpoint)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to remove subscription")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to remove subscription"))
		return
	}

	respond.OK(c.Writer, UnsubscribeResponse{Removed: removed})
}

// Cleanup handles POST /cleanup-subscriptions.
func (h *Handler) Cleanup(c *ginext.Context) {
	report, err := h.service.Cleanup(c.Request.Context(), h.cfg.Retry)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("subscription cleanup failed")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("cleanup failed"))
		return
	}

	respond.OK(c.Writer, report)
}

// Stats handles GET /subscription-stats.
func (h *Handler) Stats(c *ginext.Context) {
	stats, err := h.service.Stats(c.Request.Context(), h.cfg.Retry)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get subscription stats")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to get stats"))
		return
	}

	respond.OK(c.Writer, stats)
}

// VAPIDPublicKey handles GET /vapid-public-key so the browser can subscribe
// with the key the server signs with.
func (h *Handler) VAPIDPublicKey(c *ginext.Context) {
	respond.OK(c.Writer, VAPIDKeyResponse{PublicKey: h.cfg.Push.VAPIDPublicKey})
}
