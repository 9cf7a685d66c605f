// Package domain contains core concepts of the social network.
// This file defines direct messages and their state rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two distinct users.
// Content is immutable after creation; only the read flag (receiver-owned)
// and UpdatedAt may change.
type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	Content    string
	ImageRef   string
	Lang       string // ISO 639-1 code detected at send time, may be empty
	IsRead     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
