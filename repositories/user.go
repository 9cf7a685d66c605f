//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"social-lab/domain"
	"social-lab/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IUserRepository interface {
	CreateUser(user domain.User) error
	GetUserByID(id string) (domain.User, error)
	GetUserByUsername(username string) (domain.User, error)
	UserExists(id string) (bool, error)
	UpdateUser(user domain.User) error
	DeleteUser(id string) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// diskUser is the stored representation of a user.
// Keys: "user:{id}" holds the record; "idx:username:{username}" and
// "idx:email:{email}" hold the id for uniqueness and lookup.
type diskUser struct {
	ID           string `cbor:"1,keyasint"`
	Username     string `cbor:"2,keyasint"`
	Email        string `cbor:"3,keyasint"`
	Bio          string `cbor:"4,keyasint"`
	AvatarRef    string `cbor:"5,keyasint"`
	PasswordHash string `cbor:"6,keyasint"`
	CreatedAt    int64  `cbor:"7,keyasint"`
	UpdatedAt    int64  `cbor:"8,keyasint"`
}

func userKey(id string) []byte       { return []byte("user:" + id) }
func usernameKey(name string) []byte { return []byte("idx:username:" + name) }
func emailKey(email string) []byte   { return []byte("idx:email:" + email) }

// CreateUser persists a user. Username and email uniqueness are checked
// inside the same transaction that writes the record, so two concurrent
// registrations cannot both claim the same name.
func (u *UserRepository) CreateUser(user domain.User) error {
	data, err := cbor.Marshal(fromUser(user))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	// Retried once on conflict so the loser of a racing registration
	// re-reads the winner's index entry and reports ErrUserAlreadyExists.
	return withConflictRetry(func() error {
		return u.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(usernameKey(user.Username)); err == nil {
				return errors.ErrUserAlreadyExists
			}
			if _, err := txn.Get(emailKey(user.Email)); err == nil {
				return errors.ErrUserAlreadyExists
			}
			if err := txn.Set(userKey(user.ID), data); err != nil {
				return err
			}
			if err := txn.Set(usernameKey(user.Username), []byte(user.ID)); err != nil {
				return err
			}
			return txn.Set(emailKey(user.Email), []byte(user.ID))
		})
	})
}

func (u *UserRepository) GetUserByID(id string) (domain.User, error) {
	var stored diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &stored)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(stored), nil
}

func (u *UserRepository) GetUserByUsername(username string) (domain.User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u.GetUserByID(id)
}

func (u *UserRepository) UserExists(id string) (bool, error) {
	err := u.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(id))
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateUser rewrites the record and moves the username/email indexes when
// those fields changed, all in one transaction.
func (u *UserRepository) UpdateUser(user domain.User) error {
	data, err := cbor.Marshal(fromUser(user))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(user.ID))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}

		var previous diskUser
		if err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &previous)
		}); err != nil {
			return err
		}

		if previous.Username != user.Username {
			if _, err := txn.Get(usernameKey(user.Username)); err == nil {
				return errors.ErrUserAlreadyExists
			}
			if err := txn.Delete(usernameKey(previous.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameKey(user.Username), []byte(user.ID)); err != nil {
				return err
			}
		}
		if previous.Email != user.Email {
			if _, err := txn.Get(emailKey(user.Email)); err == nil {
				return errors.ErrUserAlreadyExists
			}
			if err := txn.Delete(emailKey(previous.Email)); err != nil {
				return err
			}
			if err := txn.Set(emailKey(user.Email), []byte(user.ID)); err != nil {
				return err
			}
		}

		return txn.Set(userKey(user.ID), data)
	})
}

// DeleteUser removes the record and its indexes. Cascading deletes of
// messages, edges and profiles are orchestrated by the account service.
func (u *UserRepository) DeleteUser(id string) error {
	return u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored diskUser
		if err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &stored)
		}); err != nil {
			return err
		}

		if err := txn.Delete(usernameKey(stored.Username)); err != nil {
			return err
		}
		if err := txn.Delete(emailKey(stored.Email)); err != nil {
			return err
		}
		return txn.Delete(userKey(id))
	})
}

func fromUser(user domain.User) diskUser {
	return diskUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Bio:          user.Bio,
		AvatarRef:    user.AvatarRef,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UnixNano(),
		UpdatedAt:    user.UpdatedAt.UnixNano(),
	}
}

func toUser(stored diskUser) domain.User {
	return domain.User{
		ID:           stored.ID,
		Username:     stored.Username,
		Email:        stored.Email,
		Bio:          stored.Bio,
		AvatarRef:    stored.AvatarRef,
		PasswordHash: stored.PasswordHash,
		CreatedAt:    time.Unix(0, stored.CreatedAt).UTC(),
		UpdatedAt:    time.Unix(0, stored.UpdatedAt).UTC(),
	}
}
