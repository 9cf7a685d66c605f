package errors

import "fmt"

var (
	// ErrNotFound covers both a missing entity and a message the actor is
	// not allowed to see. The two cases are deliberately indistinguishable
	// so an actor cannot probe for messages addressed to someone else.
	ErrNotFound = fmt.Errorf("not found")

	ErrSelfTarget       = fmt.Errorf("actor and target are the same user")
	ErrAlreadyFollowing = fmt.Errorf("already following this user")
	ErrNotFollowing     = fmt.Errorf("not following this user")
	ErrNotOwner         = fmt.Errorf("not the owner of this profile")
	ErrProfileExists    = fmt.Errorf("profile already exists")
	ErrEmptyContent     = fmt.Errorf("message content is empty")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnsupportedImage   = fmt.Errorf("unsupported image format")

	ErrWorkerPanic = fmt.Errorf("worker panicked")
)
