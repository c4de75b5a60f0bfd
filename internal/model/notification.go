package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification represents a scheduled reminder in the system.
type Notification struct {
	ID        uuid.UUID  `json:"id"`               // unique identifier for the notification
	Message   string     `json:"message"`          // reminder text pushed to subscribers
	Time      time.Time  `json:"time"`             // time when the notification becomes due
	Sent      bool       `json:"sent"`             // set once a scheduler pass has claimed it
	SentAt    *time.Time `json:"sentAt,omitempty"` // time of the claim, nil until claimed
	Attempts  int        `json:"attempts"`         // number of delivery passes that claimed it
	CreatedAt time.Time  `json:"createdAt"`        // timestamp when the notification was created
	UpdatedAt time.Time  `json:"updatedAt"`        // timestamp when the notification was last updated
}

// Payload is the JSON body pushed to every subscriber.
type Payload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewPayload builds the push payload for a notification claimed at the given time.
func NewPayload(message string, at time.Time) Payload {
	return Payload{
		Message:   message,
		Timestamp: at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
