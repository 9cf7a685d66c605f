//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"social-lab/domain"
	"social-lab/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	GetByID(id uuid.UUID) (domain.Message, error)
	ListSent(userID string, limit int) ([]domain.Message, error)
	ListReceived(userID string, limit int) ([]domain.Message, error)
	MarkRead(receiverID string, id uuid.UUID) (domain.Message, error)
	DeleteForUser(userID string) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID         string `cbor:"1,keyasint"`
	SenderID   string `cbor:"2,keyasint"`
	ReceiverID string `cbor:"3,keyasint"`
	Content    string `cbor:"4,keyasint"`
	ImageRef   string `cbor:"5,keyasint"`
	Lang       string `cbor:"6,keyasint"`
	IsRead     bool   `cbor:"7,keyasint"`
	CreatedAt  int64  `cbor:"8,keyasint"`
	UpdatedAt  int64  `cbor:"9,keyasint"`
}

func messageKey(id uuid.UUID) []byte {
	return []byte("msg:" + id.String())
}

// Direction indexes use 19-digit zero padding so lexicographic order equals
// chronological order; a reverse iteration then yields newest-first. The
// UUID suffix disambiguates two messages created in the same nanosecond.
func sentKey(userID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:sent:%s:%019d:%s", userID, at.UnixNano(), id))
}

func recvKey(userID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:recv:%s:%019d:%s", userID, at.UnixNano(), id))
}

// Store persists the primary record and both direction indexes in one
// transaction.
func (m *MessageRepository) Store(message domain.Message) error {
	data, err := cbor.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message.ID), data); err != nil {
			return err
		}
		idBytes := []byte(message.ID.String())
		if err := txn.Set(sentKey(message.SenderID, message.CreatedAt, message.ID), idBytes); err != nil {
			return err
		}
		return txn.Set(recvKey(message.ReceiverID, message.CreatedAt, message.ID), idBytes)
	})
}

func (m *MessageRepository) GetByID(id uuid.UUID) (domain.Message, error) {
	var stored diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		return readMessage(txn, id, &stored)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(stored)
}

// ListSent returns the user's outgoing messages, newest first.
// A limit <= 0 means unbounded.
func (m *MessageRepository) ListSent(userID string, limit int) ([]domain.Message, error) {
	return m.listByIndex(fmt.Sprintf("idx:sent:%s:", userID), limit)
}

// ListReceived returns the user's incoming messages, newest first.
func (m *MessageRepository) ListReceived(userID string, limit int) ([]domain.Message, error) {
	return m.listByIndex(fmt.Sprintf("idx:recv:%s:", userID), limit)
}

func (m *MessageRepository) listByIndex(prefixStr string, limit int) ([]domain.Message, error) {
	var records []diskMessage
	prefix := []byte(prefixStr)
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the highest possible timestamp, then walk backwards.
		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999~")...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			var id uuid.UUID
			err := it.Item().Value(func(val []byte) error {
				parsed, err := uuid.Parse(string(val))
				id = parsed
				return err
			})
			if err != nil {
				return err
			}

			var stored diskMessage
			if err := readMessage(txn, id, &stored); err != nil {
				return err
			}
			records = append(records, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(records))
	for _, stored := range records {
		message, err := toMessage(stored)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// MarkRead flips the read flag and refreshes UpdatedAt. The receiver check
// runs inside the transaction; a missing message and a receiver mismatch
// are both ErrNotFound. Marking an already-read message again is a no-op
// that still succeeds.
func (m *MessageRepository) MarkRead(receiverID string, id uuid.UUID) (domain.Message, error) {
	var stored diskMessage
	err := m.db.Update(func(txn *badger.Txn) error {
		if err := readMessage(txn, id, &stored); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		if stored.ReceiverID != receiverID {
			return errors.ErrNotFound
		}
		if stored.IsRead {
			return nil
		}

		stored.IsRead = true
		stored.UpdatedAt = time.Now().UnixNano()
		data, err := cbor.Marshal(stored)
		if err != nil {
			return err
		}
		return txn.Set(messageKey(id), data)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(stored)
}

// DeleteForUser removes every message the user sent or received, including
// the counterparty's direction index. Account deletion cascade.
func (m *MessageRepository) DeleteForUser(userID string) error {
	sent, err := m.ListSent(userID, 0)
	if err != nil {
		return err
	}
	received, err := m.ListReceived(userID, 0)
	if err != nil {
		return err
	}

	return m.db.Update(func(txn *badger.Txn) error {
		for _, msg := range append(sent, received...) {
			if err := txn.Delete(messageKey(msg.ID)); err != nil {
				return err
			}
			if err := txn.Delete(sentKey(msg.SenderID, msg.CreatedAt, msg.ID)); err != nil {
				return err
			}
			if err := txn.Delete(recvKey(msg.ReceiverID, msg.CreatedAt, msg.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func readMessage(txn *badger.Txn, id uuid.UUID, out *diskMessage) error {
	item, err := txn.Get(messageKey(id))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, out)
	})
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:         message.ID.String(),
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		ImageRef:   message.ImageRef,
		Lang:       message.Lang,
		IsRead:     message.IsRead,
		CreatedAt:  message.CreatedAt.UnixNano(),
		UpdatedAt:  message.UpdatedAt.UnixNano(),
	}
}

func toMessage(stored diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         parsedID,
		SenderID:   stored.SenderID,
		ReceiverID: stored.ReceiverID,
		Content:    stored.Content,
		ImageRef:   stored.ImageRef,
		Lang:       stored.Lang,
		IsRead:     stored.IsRead,
		CreatedAt:  time.Unix(0, stored.CreatedAt).UTC(),
		UpdatedAt:  time.Unix(0, stored.UpdatedAt).UTC(),
	}, nil
}
