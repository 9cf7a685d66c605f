//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"fmt"
	"social-lab/domain"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type INotificationRepository interface {
	Store(notification domain.Notification) error
	ListForRecipient(recipientID string, limit int) ([]domain.Notification, error)
	DeleteForRecipient(recipientID string) error
}

// NotificationRepository is append-only storage for notification events.
// Key: "notif:{recipient}:{padded-nanos}:{id}".
type NotificationRepository struct {
	db *badger.DB
}

func NewNotificationRepository(db *badger.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type diskNotification struct {
	ID          string `cbor:"1,keyasint"`
	RecipientID string `cbor:"2,keyasint"`
	ActorID     string `cbor:"3,keyasint"`
	Verb        string `cbor:"4,keyasint"`
	TargetKind  string `cbor:"5,keyasint"`
	TargetID    string `cbor:"6,keyasint"`
	CreatedAt   int64  `cbor:"7,keyasint"`
}

func notificationKey(recipientID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("notif:%s:%019d:%s", recipientID, at.UnixNano(), id))
}

func (n *NotificationRepository) Store(notification domain.Notification) error {
	data, err := cbor.Marshal(fromNotification(notification))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return n.db.Update(func(txn *badger.Txn) error {
		return txn.Set(notificationKey(notification.RecipientID, notification.CreatedAt, notification.ID), data)
	})
}

// ListForRecipient returns notifications newest first. A limit <= 0 means
// unbounded.
func (n *NotificationRepository) ListForRecipient(recipientID string, limit int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	prefix := []byte(fmt.Sprintf("notif:%s:", recipientID))
	err := n.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999~")...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(notifications) == limit {
				break
			}
			var stored diskNotification
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			notification, err := toNotification(stored)
			if err != nil {
				return err
			}
			notifications = append(notifications, notification)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// DeleteForRecipient drops the recipient's notifications. Account deletion
// cascade.
func (n *NotificationRepository) DeleteForRecipient(recipientID string) error {
	prefix := []byte(fmt.Sprintf("notif:%s:", recipientID))
	var keys [][]byte
	err := n.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	return n.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func fromNotification(notification domain.Notification) diskNotification {
	return diskNotification{
		ID:          notification.ID.String(),
		RecipientID: notification.RecipientID,
		ActorID:     notification.ActorID,
		Verb:        notification.Verb,
		TargetKind:  string(notification.Target.Kind),
		TargetID:    notification.Target.ID,
		CreatedAt:   notification.CreatedAt.UnixNano(),
	}
}

func toNotification(stored diskNotification) (domain.Notification, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{
		ID:          parsedID,
		RecipientID: stored.RecipientID,
		ActorID:     stored.ActorID,
		Verb:        stored.Verb,
		Target: domain.Target{
			Kind: domain.TargetKind(stored.TargetKind),
			ID:   stored.TargetID,
		},
		CreatedAt: time.Unix(0, stored.CreatedAt).UTC(),
	}, nil
}
