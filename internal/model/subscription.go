package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a browser push endpoint together with its encryption keys.
//
// The JSON shape follows the standard web-push subscription object.
type Subscription struct {
	ID             uuid.UUID  `json:"id"`
	Endpoint       string     `json:"endpoint"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
	Keys           Keys       `json:"keys"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Keys holds the client key material required for payload encryption.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}
