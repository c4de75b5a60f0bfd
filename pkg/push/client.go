// Package push delivers encrypted Web Push messages to browser subscriptions.
//
// It wraps github.com/SherClockHolmes/webpush-go with VAPID credentials and
// classifies every delivery as a success, a transient failure or a permanent
// failure. The client never retries; retry policy belongs to the caller.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Outcome classifies the result of a single delivery.
type Outcome int

const (
	Success          Outcome = iota // the push service accepted the message
	TransientFailure                // network or server error, the endpoint may work later
	PermanentFailure                // the endpoint is gone and will never succeed again
)

// String returns a readable outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case TransientFailure:
		return "transient_failure"
	case PermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of delivering one payload to one subscription.
type Result struct {
	Outcome    Outcome
	StatusCode int   // HTTP status returned by the push service, 0 if none
	Err        error // failure reason, nil on success
}

// Gone reports whether the subscription should be removed.
func (r Result) Gone() bool {
	return r.Outcome == PermanentFailure
}

// Subscription holds the endpoint and key material of a browser subscription.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Options configures VAPID identity and message delivery.
type Options struct {
	Subscriber      string        // contact email or URL sent in the VAPID claim
	VAPIDPublicKey  string        // base64url-encoded VAPID public key
	VAPIDPrivateKey string        // base64url-encoded VAPID private key
	TTL             int           // seconds the push service keeps an undelivered message
	Urgency         string        // very-low, low, normal or high
	Timeout         time.Duration // per-request timeout
}

// Client sends web push messages.
type Client struct {
	opts       Options
	httpClient webpush.HTTPClient
}

// ErrMissingVAPIDKeys is returned by NewClient when the VAPID key pair is incomplete.
var ErrMissingVAPIDKeys = errors.New("vapid key pair is required")

// NewClient creates a new push Client.
//
// A nil httpClient falls back to an http.Client with opts.Timeout.
func NewClient(opts Options, httpClient webpush.HTTPClient) (*Client, error) {
	if opts.VAPIDPublicKey == "" || opts.VAPIDPrivateKey == "" {
		return nil, ErrMissingVAPIDKeys
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{opts: opts, httpClient: httpClient}, nil
}

// Deliver encrypts payload for sub and posts it to the subscription endpoint.
//
// 404 and 410 responses mean the subscription has expired or was revoked and
// are reported as PermanentFailure. Any other non-2xx status, as well as
// request errors, are TransientFailure.
func (c *Client) Deliver(ctx context.Context, sub Subscription, payload []byte) Result {
	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &webpush.Options{
		HTTPClient:      c.httpClient,
		Subscriber:      c.opts.Subscriber,
		VAPIDPublicKey:  c.opts.VAPIDPublicKey,
		VAPIDPrivateKey: c.opts.VAPIDPrivateKey,
		TTL:             c.opts.TTL,
		Urgency:         webpush.Urgency(c.opts.Urgency),
	})
	if err != nil {
		return Result{Outcome: TransientFailure, Err: fmt.Errorf("send push: %w", err)}
	}
	defer resp.Body.Close()

	return classify(resp)
}

func classify(resp *http.Response) Result {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Outcome: Success, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return Result{
			Outcome:    PermanentFailure,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("push service: subscription gone: %s", resp.Status),
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{
			Outcome:    TransientFailure,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("push service error: %s: %s", resp.Status, body),
		}
	}
}
