//go:generate go run go.uber.org/mock/mockgen -source=follow.go -destination=../mocks/mock_follow_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"social-lab/errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IFollowRepository interface {
	AddEdge(actorID, targetID string) error
	RemoveEdge(actorID, targetID string) error
	IsFollowing(actorID, targetID string) (bool, error)
	Following(actorID string) ([]string, error)
	Followers(targetID string) ([]string, error)
	DeleteAllFor(userID string) error
}

// FollowRepository stores the follow graph as explicit directed edges.
// Keys: "follow:{actor}:{target}" plus a reverse index
// "idx:follower:{target}:{actor}" for follower listings. Values hold the
// creation time in nanoseconds.
type FollowRepository struct {
	db *badger.DB
}

func NewFollowRepository(db *badger.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func edgeKey(actorID, targetID string) []byte {
	return []byte(fmt.Sprintf("follow:%s:%s", actorID, targetID))
}

func followerKey(targetID, actorID string) []byte {
	return []byte(fmt.Sprintf("idx:follower:%s:%s", targetID, actorID))
}

// AddEdge creates the directed edge actor->target. The existence check and
// the write share one transaction; when two concurrent calls race, badger
// aborts the loser with ErrConflict and the retry observes the committed
// edge, so the caller gets ErrAlreadyFollowing instead of a duplicate.
func (f *FollowRepository) AddEdge(actorID, targetID string) error {
	return withConflictRetry(func() error {
		return f.db.Update(func(txn *badger.Txn) error {
			key := edgeKey(actorID, targetID)
			if _, err := txn.Get(key); err == nil {
				return errors.ErrAlreadyFollowing
			} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			at := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
			if err := txn.Set(key, at); err != nil {
				return err
			}
			return txn.Set(followerKey(targetID, actorID), at)
		})
	})
}

// RemoveEdge deletes the edge, failing with ErrNotFollowing when absent.
func (f *FollowRepository) RemoveEdge(actorID, targetID string) error {
	return withConflictRetry(func() error {
		return f.db.Update(func(txn *badger.Txn) error {
			key := edgeKey(actorID, targetID)
			if _, err := txn.Get(key); err != nil {
				if stderrors.Is(err, badger.ErrKeyNotFound) {
					return errors.ErrNotFollowing
				}
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			return txn.Delete(followerKey(targetID, actorID))
		})
	})
}

func (f *FollowRepository) IsFollowing(actorID, targetID string) (bool, error) {
	err := f.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(edgeKey(actorID, targetID))
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

// Following lists the ids the actor follows via a prefix scan.
func (f *FollowRepository) Following(actorID string) ([]string, error) {
	return f.scanSuffixes(fmt.Sprintf("follow:%s:", actorID))
}

// Followers lists the ids following the target via the reverse index.
func (f *FollowRepository) Followers(targetID string) ([]string, error) {
	return f.scanSuffixes(fmt.Sprintf("idx:follower:%s:", targetID))
}

func (f *FollowRepository) scanSuffixes(prefixStr string) ([]string, error) {
	var ids []string
	prefix := []byte(prefixStr)
	err := f.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteAllFor removes every edge touching the user, in both directions.
// Used by the account deletion cascade.
func (f *FollowRepository) DeleteAllFor(userID string) error {
	following, err := f.Following(userID)
	if err != nil {
		return err
	}
	followers, err := f.Followers(userID)
	if err != nil {
		return err
	}

	return f.db.Update(func(txn *badger.Txn) error {
		for _, target := range following {
			if err := txn.Delete(edgeKey(userID, target)); err != nil {
				return err
			}
			if err := txn.Delete(followerKey(target, userID)); err != nil {
				return err
			}
		}
		for _, actor := range followers {
			if err := txn.Delete(edgeKey(actor, userID)); err != nil {
				return err
			}
			if err := txn.Delete(followerKey(userID, actor)); err != nil {
				return err
			}
		}
		return nil
	})
}

// withConflictRetry reruns a read-modify-write transaction once when badger
// reports a serialization conflict. The rerun sees the winner's write and
// reports the proper state error.
func withConflictRetry(fn func() error) error {
	err := fn()
	if stderrors.Is(err, badger.ErrConflict) {
		return fn()
	}
	return err
}
