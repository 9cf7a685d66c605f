package domain

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind discriminates what a notification points at.
type TargetKind string

const (
	TargetMessage TargetKind = "message"
	TargetUser    TargetKind = "user"
)

// Target is a tagged reference to the entity a notification is about.
type Target struct {
	Kind TargetKind
	ID   string
}

const (
	VerbDirectMessage = "Direct message"
	VerbFollowedYou   = "followed you"
)

// Notification records that an actor did something concerning a recipient.
// Notifications are written once and never mutated by this system.
type Notification struct {
	ID          uuid.UUID
	RecipientID string
	ActorID     string
	Verb        string
	Target      Target
	CreatedAt   time.Time
}

func MessageTarget(id uuid.UUID) Target {
	return Target{Kind: TargetMessage, ID: id.String()}
}

func UserTarget(id string) Target {
	return Target{Kind: TargetUser, ID: id}
}
