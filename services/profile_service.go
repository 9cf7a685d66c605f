//go:generate go run go.uber.org/mock/mockgen -source=profile_service.go -destination=../mocks/mock_profile_service.go -package=mocks
package services

import (
	stderrors "errors"
	"social-lab/domain"
	"social-lab/errors"
	"social-lab/repositories"
	"time"

	"github.com/google/uuid"
)

type IProfileService interface {
	Create(userID string, fields ProfileFields) (domain.Profile, error)
	List(userID string) ([]domain.Profile, error)
	Get(userID string, profileID uuid.UUID) (domain.Profile, error)
	Update(userID string, profileID uuid.UUID, fields ProfileFields) (domain.Profile, error)
	Delete(userID string, profileID uuid.UUID) error
}

// ProfileFields carries optional extended-profile attributes; nil means
// "leave unchanged" on update and "empty" on create.
type ProfileFields struct {
	Location *string
	Website  *string
	CoverRef *string
}

type ProfileService struct {
	profiles repositories.IProfileRepository
}

func NewProfileService(profiles repositories.IProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Create attaches an extended profile to the user. At most one per user;
// the repository enforces the same rule under its transaction.
func (s *ProfileService) Create(userID string, fields ProfileFields) (domain.Profile, error) {
	_, err := s.profiles.GetByOwner(userID)
	hasProfile := err == nil
	if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
		return domain.Profile{}, err
	}
	if err := domain.CanCreateProfile(hasProfile); err != nil {
		return domain.Profile{}, err
	}

	now := time.Now().UTC()
	profile := domain.Profile{
		ID:        uuid.New(),
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProfileFields(&profile, fields)

	if err := s.profiles.Create(profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// List returns the requesting user's own profile, zero or one entries.
func (s *ProfileService) List(userID string) ([]domain.Profile, error) {
	profile, err := s.profiles.GetByOwner(userID)
	if stderrors.Is(err, errors.ErrNotFound) {
		return []domain.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []domain.Profile{profile}, nil
}

func (s *ProfileService) Get(userID string, profileID uuid.UUID) (domain.Profile, error) {
	profile, err := s.profiles.GetByID(profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := domain.CanMutateProfile(userID, profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *ProfileService) Update(userID string, profileID uuid.UUID, fields ProfileFields) (domain.Profile, error) {
	profile, err := s.profiles.GetByID(profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := domain.CanMutateProfile(userID, profile); err != nil {
		return domain.Profile{}, err
	}

	applyProfileFields(&profile, fields)
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Update(profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *ProfileService) Delete(userID string, profileID uuid.UUID) error {
	profile, err := s.profiles.GetByID(profileID)
	if err != nil {
		return err
	}
	if err := domain.CanMutateProfile(userID, profile); err != nil {
		return err
	}
	return s.profiles.Delete(profile)
}

func applyProfileFields(profile *domain.Profile, fields ProfileFields) {
	if fields.Location != nil {
		profile.Location = *fields.Location
	}
	if fields.Website != nil {
		profile.Website = *fields.Website
	}
	if fields.CoverRef != nil {
		profile.CoverRef = *fields.CoverRef
	}
}
