package services

import (
	"social-lab/auth"
	"social-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newAuthService(env *testEnv) (*AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret-key", 24*time.Hour)
	return NewAuthService(env.users, tokens), tokens
}

func TestAuthService_Register(t *testing.T) {
	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc, tokens := newAuthService(env)

		token, user, err := svc.Register("alice", "alice@example.com", "ComplexPass123!", "hi, I am alice")
		req.NoError(err)
		req.NotEmpty(token)
		req.Equal("alice", user.Username)
		req.Equal("hi, I am alice", user.Bio)

		// The stored hash is never the plain password.
		stored, err := env.users.GetUserByUsername("alice")
		req.NoError(err)
		req.NotEqual("ComplexPass123!", stored.PasswordHash)
		req.Contains(stored.PasswordHash, "$argon2id$")

		claims, err := tokens.Validate(string(token))
		req.NoError(err)
		req.Equal(user.ID, claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc, _ := newAuthService(env)

		_, _, err := svc.Register("alice", "alice@example.com", "simple", "")
		req.ErrorIs(err, errors.ErrInvalidPassword)

		// Nothing was persisted.
		_, err = env.users.GetUserByUsername("alice")
		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("should fail when username is taken", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc, _ := newAuthService(env)

		_, _, err := svc.Register("alice", "alice@example.com", "ComplexPass123!", "")
		req.NoError(err)

		_, _, err = svc.Register("alice", "other@example.com", "ComplexPass123!", "")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("should login with correct credentials", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc, tokens := newAuthService(env)

		_, registered, err := svc.Register("alice", "alice@example.com", "Secret123456!", "")
		req.NoError(err)

		token, user, err := svc.Login("alice", "Secret123456!")
		req.NoError(err)
		req.Equal(registered.ID, user.ID)

		claims, err := tokens.Validate(string(token))
		req.NoError(err)
		req.Equal(registered.ID, claims.UserID)
	})

	t.Run("should return invalid credentials on wrong password", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc, _ := newAuthService(env)

		_, _, err := svc.Register("alice", "alice@example.com", "Secret123456!", "")
		req.NoError(err)

		_, _, err = svc.Login("alice", "WrongPassword123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials for unknown user", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc, _ := newAuthService(env)

		_, _, err := svc.Login("nobody", "anyPassword123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
