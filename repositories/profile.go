//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"social-lab/domain"
	"social-lab/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IProfileRepository interface {
	Create(profile domain.Profile) error
	GetByOwner(ownerID string) (domain.Profile, error)
	GetByID(id uuid.UUID) (domain.Profile, error)
	Update(profile domain.Profile) error
	Delete(profile domain.Profile) error
}

// ProfileRepository keys extended profiles by their owner
// ("profile:{owner}"), which makes the one-profile-per-user invariant a
// plain key-uniqueness property. "idx:profileid:{id}" maps the profile id
// back to the owner for item routes.
type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type diskProfile struct {
	ID        string `cbor:"1,keyasint"`
	OwnerID   string `cbor:"2,keyasint"`
	Location  string `cbor:"3,keyasint"`
	Website   string `cbor:"4,keyasint"`
	CoverRef  string `cbor:"5,keyasint"`
	CreatedAt int64  `cbor:"6,keyasint"`
	UpdatedAt int64  `cbor:"7,keyasint"`
}

func profileKey(ownerID string) []byte {
	return []byte("profile:" + ownerID)
}

func profileIDKey(id uuid.UUID) []byte {
	return []byte("idx:profileid:" + id.String())
}

// Create persists the profile; the existence check shares the write
// transaction so concurrent creates cannot both pass. On a badger conflict
// the retry observes the committed profile and reports ErrProfileExists.
func (p *ProfileRepository) Create(profile domain.Profile) error {
	data, err := cbor.Marshal(fromProfile(profile))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return withConflictRetry(func() error {
		return p.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(profileKey(profile.OwnerID)); err == nil {
				return errors.ErrProfileExists
			} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(profileKey(profile.OwnerID), data); err != nil {
				return err
			}
			return txn.Set(profileIDKey(profile.ID), []byte(profile.OwnerID))
		})
	})
}

func (p *ProfileRepository) GetByOwner(ownerID string) (domain.Profile, error) {
	var stored diskProfile
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(ownerID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &stored)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Profile{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return toProfile(stored)
}

func (p *ProfileRepository) GetByID(id uuid.UUID) (domain.Profile, error) {
	var ownerID string
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileIDKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ownerID = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Profile{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return p.GetByOwner(ownerID)
}

func (p *ProfileRepository) Update(profile domain.Profile) error {
	data, err := cbor.Marshal(fromProfile(profile))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(profileKey(profile.OwnerID)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		return txn.Set(profileKey(profile.OwnerID), data)
	})
}

func (p *ProfileRepository) Delete(profile domain.Profile) error {
	return p.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(profileIDKey(profile.ID)); err != nil {
			return err
		}
		return txn.Delete(profileKey(profile.OwnerID))
	})
}

func fromProfile(profile domain.Profile) diskProfile {
	return diskProfile{
		ID:        profile.ID.String(),
		OwnerID:   profile.OwnerID,
		Location:  profile.Location,
		Website:   profile.Website,
		CoverRef:  profile.CoverRef,
		CreatedAt: profile.CreatedAt.UnixNano(),
		UpdatedAt: profile.UpdatedAt.UnixNano(),
	}
}

func toProfile(stored diskProfile) (domain.Profile, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		ID:        parsedID,
		OwnerID:   stored.OwnerID,
		Location:  stored.Location,
		Website:   stored.Website,
		CoverRef:  stored.CoverRef,
		CreatedAt: time.Unix(0, stored.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, stored.UpdatedAt).UTC(),
	}, nil
}
