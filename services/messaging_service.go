//go:generate go run go.uber.org/mock/mockgen -source=messaging_service.go -destination=../mocks/mock_messaging_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"social-lab/domain"
	"social-lab/errors"
	"social-lab/moderation"
	"social-lab/projection"
	"social-lab/repositories"
	"social-lab/sink"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IMessagingService interface {
	Send(ctx context.Context, senderID, receiverID, content, imageRef string) (domain.Message, error)
	List(userID string, limit int) (MessageBox, error)
	Conversation(userID, peerID string, limit int) ([]domain.Message, error)
	MarkRead(userID string, id uuid.UUID) (domain.Message, error)
	Search(ctx context.Context, userID, terms string, limit int) ([]domain.Message, error)
}

// MessageBox splits a user's messages by direction, both newest first.
type MessageBox struct {
	Sent     []domain.Message
	Received []domain.Message
}

// MessageIndex is the slice of the search index the service needs.
type MessageIndex interface {
	IndexMessage(message domain.Message) error
	Search(ctx context.Context, actorID, terms string, limit int) ([]uuid.UUID, error)
}

type MessagingService struct {
	messages  repositories.IMessageRepository
	users     repositories.IUserRepository
	events    sink.EventSink
	index     MessageIndex
	moderator *moderation.Moderator
	log       *slog.Logger
}

// NewMessagingService wires the messaging workflow. moderator may be nil
// when no banned word list is configured.
func NewMessagingService(
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	events sink.EventSink,
	index MessageIndex,
	moderator *moderation.Moderator,
	log *slog.Logger,
) *MessagingService {
	return &MessagingService{
		messages:  messages,
		users:     users,
		events:    events,
		index:     index,
		moderator: moderator,
		log:       log,
	}
}

// Send creates a direct message from sender to receiver.
// The message row is the primary mutation; indexing and notification
// emission are side effects that must never fail it.
func (s *MessagingService) Send(ctx context.Context, senderID, receiverID, content, imageRef string) (domain.Message, error) {
	// 1. Policy: no self-addressed messages.
	if err := domain.CanSendMessage(senderID, receiverID); err != nil {
		return domain.Message{}, err
	}

	// 2. The receiver must resolve to a real account.
	exists, err := s.users.UserExists(receiverID)
	if err != nil {
		return domain.Message{}, err
	}
	if !exists {
		return domain.Message{}, errors.ErrNotFound
	}

	// 3. Content is required.
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}

	// 4. Censor banned words and detect the language before persisting.
	if s.moderator != nil {
		censored, foundWords := s.moderator.Censor(content)
		if len(foundWords) > 0 {
			s.log.Warn("censored outgoing message",
				"sender", senderID,
				"words", foundWords)
		}
		content = censored
	}

	now := time.Now().UTC()
	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		ImageRef:   imageRef,
		Lang:       moderation.DetectLanguage(content),
		IsRead:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// 5. Persist. This is the only step allowed to fail the operation.
	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, err
	}

	// 6. Index for search, best-effort.
	if err := s.index.IndexMessage(message); err != nil {
		s.log.Error("message indexing failed", "message_id", message.ID, "error", err)
	}

	// 7. Notify the receiver, best-effort.
	s.emit(ctx, domain.Notification{
		ID:          uuid.New(),
		RecipientID: receiverID,
		ActorID:     senderID,
		Verb:        domain.VerbDirectMessage,
		Target:      domain.MessageTarget(message.ID),
		CreatedAt:   now,
	})

	return message, nil
}

// List returns the user's sent and received messages, newest first.
func (s *MessagingService) List(userID string, limit int) (MessageBox, error) {
	sent, err := s.messages.ListSent(userID, limit)
	if err != nil {
		return MessageBox{}, err
	}
	received, err := s.messages.ListReceived(userID, limit)
	if err != nil {
		return MessageBox{}, err
	}
	return MessageBox{Sent: sent, Received: received}, nil
}

// Conversation returns the user's history with one peer, oldest first.
func (s *MessagingService) Conversation(userID, peerID string, limit int) ([]domain.Message, error) {
	box, err := s.List(userID, limit)
	if err != nil {
		return nil, err
	}

	conv := projection.NewConversation(userID, peerID)
	for _, message := range box.Sent {
		conv.Consume(message)
	}
	for _, message := range box.Received {
		conv.Consume(message)
	}
	return conv.Messages(), nil
}

// MarkRead flips the read flag for the receiver. Any other actor, and any
// unknown id, gets ErrNotFound. Idempotent.
func (s *MessagingService) MarkRead(userID string, id uuid.UUID) (domain.Message, error) {
	message, err := s.messages.GetByID(id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := domain.CanMarkRead(userID, message); err != nil {
		return domain.Message{}, err
	}
	// The repository repeats the receiver check inside its transaction.
	return s.messages.MarkRead(userID, id)
}

// Search finds the user's own messages matching the terms.
func (s *MessagingService) Search(ctx context.Context, userID, terms string, limit int) ([]domain.Message, error) {
	ids, err := s.index.Search(ctx, userID, terms, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.messages.GetByID(id)
		if err != nil {
			// Index entries can outlive deleted rows; skip them.
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *MessagingService) emit(ctx context.Context, notification domain.Notification) {
	if err := s.events.Emit(ctx, notification); err != nil {
		s.log.Error("notification emission failed",
			"recipient", notification.RecipientID,
			"verb", notification.Verb,
			"error", err)
	}
}
