//go:generate go run go.uber.org/mock/mockgen -source=account_service.go -destination=../mocks/mock_account_service.go -package=mocks
package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"social-lab/auth"
	"social-lab/domain"
	"social-lab/errors"
	"social-lab/repositories"
	"time"
)

type IAccountService interface {
	Me(userID string) (AccountView, error)
	Update(userID string, fields AccountFields) (domain.User, error)
	Delete(userID string) error
	Notifications(userID string, limit int) ([]domain.Notification, error)
}

// AccountView is the user's own account plus their optional extended
// profile.
type AccountView struct {
	User    domain.User
	Profile *domain.Profile
}

// AccountFields carries optional account attributes for partial updates;
// nil means "leave unchanged".
type AccountFields struct {
	Username  *string
	Email     *string
	Password  *string
	Bio       *string
	AvatarRef *string
}

type AccountService struct {
	users         repositories.IUserRepository
	messages      repositories.IMessageRepository
	edges         repositories.IFollowRepository
	profiles      repositories.IProfileRepository
	notifications repositories.INotificationRepository
	log           *slog.Logger
}

func NewAccountService(
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	edges repositories.IFollowRepository,
	profiles repositories.IProfileRepository,
	notifications repositories.INotificationRepository,
	log *slog.Logger,
) *AccountService {
	return &AccountService{
		users:         users,
		messages:      messages,
		edges:         edges,
		profiles:      profiles,
		notifications: notifications,
		log:           log,
	}
}

func (s *AccountService) Me(userID string) (AccountView, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return AccountView{}, err
	}

	view := AccountView{User: user}
	profile, err := s.profiles.GetByOwner(userID)
	switch {
	case err == nil:
		view.Profile = &profile
	case stderrors.Is(err, errors.ErrNotFound):
		// No extended profile, nothing to attach.
	default:
		return AccountView{}, err
	}
	return view, nil
}

// Update applies a partial account update. A new password is re-hashed
// before it reaches the repository.
func (s *AccountService) Update(userID string, fields AccountFields) (domain.User, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return domain.User{}, err
	}

	if fields.Username != nil {
		user.Username = *fields.Username
	}
	if fields.Email != nil {
		user.Email = *fields.Email
	}
	if fields.Bio != nil {
		user.Bio = *fields.Bio
	}
	if fields.AvatarRef != nil {
		user.AvatarRef = *fields.AvatarRef
	}
	if fields.Password != nil {
		hashed, err := auth.HashPassword(*fields.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hashing failed: %w", err)
		}
		user.PasswordHash = hashed
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUser(user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Delete removes the account and everything it owns: messages in both
// directions, follow edges in both directions, the extended profile and
// pending notifications. The user record goes last so a partial failure
// leaves the account discoverable for a retry.
func (s *AccountService) Delete(userID string) error {
	if err := s.messages.DeleteForUser(userID); err != nil {
		return err
	}
	if err := s.edges.DeleteAllFor(userID); err != nil {
		return err
	}

	profile, err := s.profiles.GetByOwner(userID)
	switch {
	case err == nil:
		if err := s.profiles.Delete(profile); err != nil {
			return err
		}
	case stderrors.Is(err, errors.ErrNotFound):
	default:
		return err
	}

	if err := s.notifications.DeleteForRecipient(userID); err != nil {
		return err
	}
	return s.users.DeleteUser(userID)
}

func (s *AccountService) Notifications(userID string, limit int) ([]domain.Notification, error) {
	return s.notifications.ListForRecipient(userID, limit)
}
