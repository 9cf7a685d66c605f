//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"social-lab/auth"
	"social-lab/domain"
	"social-lab/errors"
	"social-lab/repositories"
	"time"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(username, email, password, bio string) (Token, domain.User, error)
	Login(username, password string) (Token, domain.User, error)
}

type Token string

type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register validates the request, hashes the password and persists the
// account, then issues the first session token.
func (s *AuthService) Register(username, email, password, bio string) (Token, domain.User, error) {
	// 1. Validate business rules before any expensive crypto work.
	valReq := auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password here so the repository never sees plain text.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Bio:          bio,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 3. Persist; propagates ErrUserAlreadyExists when the name is taken.
	if err := s.users.CreateUser(user); err != nil {
		return "", domain.User{}, err
	}

	// 4. Issue the initial session token.
	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

// Login verifies credentials and returns a session token. Every failure
// path collapses to ErrInvalidCredentials to prevent user enumeration.
func (s *AuthService) Login(username, password string) (Token, domain.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}
