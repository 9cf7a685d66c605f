// Package domain contains core concepts of the social network.
// This file holds the access policy: pure decision functions with no I/O.
// Callers resolve state (edges, profiles) first and pass it in.
package domain

import "social-lab/errors"

// CanSendMessage rejects self-addressed messages.
func CanSendMessage(actorID, receiverID string) error {
	if actorID == receiverID {
		return errors.ErrSelfTarget
	}
	return nil
}

// CanMarkRead allows only the receiver to flip the read flag.
// A mismatch is reported as ErrNotFound, not a permission error, so the
// response is identical whether the message exists or belongs to someone
// else.
func CanMarkRead(actorID string, msg Message) error {
	if msg.ReceiverID != actorID {
		return errors.ErrNotFound
	}
	return nil
}

// CanFollow takes the current edge state alongside the identities.
func CanFollow(actorID, targetID string, alreadyFollowing bool) error {
	if actorID == targetID {
		return errors.ErrSelfTarget
	}
	if alreadyFollowing {
		return errors.ErrAlreadyFollowing
	}
	return nil
}

func CanUnfollow(actorID, targetID string, following bool) error {
	if actorID == targetID {
		return errors.ErrSelfTarget
	}
	if !following {
		return errors.ErrNotFollowing
	}
	return nil
}

// CanMutateProfile guards update and delete on extended profiles.
func CanMutateProfile(actorID string, profile Profile) error {
	if profile.OwnerID != actorID {
		return errors.ErrNotOwner
	}
	return nil
}

// CanCreateProfile enforces the one-profile-per-user invariant.
func CanCreateProfile(hasProfile bool) error {
	if hasProfile {
		return errors.ErrProfileExists
	}
	return nil
}
