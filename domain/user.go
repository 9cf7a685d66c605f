// Package domain contains core concepts of the social network.
// This file defines User entities and related invariants.
// No storage, network, or UI logic should be added here.
package domain

import "time"

// User is an account holder. Username and Email are unique across the
// system; the follow graph lives outside this struct as explicit edges.
type User struct {
	ID           string
	Username     string
	Email        string
	Bio          string
	AvatarRef    string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
