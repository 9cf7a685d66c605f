package services

import (
	"context"
	"social-lab/domain"
	"social-lab/errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessagingService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("should deliver and appear in both directions newest first", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")
		bob := env.addUser(t, "bob")

		first, err := svc.Send(ctx, alice.ID, bob.ID, "hello bob", "")
		req.NoError(err)
		req.False(first.IsRead)

		second, err := svc.Send(ctx, alice.ID, bob.ID, "hello again", "")
		req.NoError(err)

		aliceBox, err := svc.List(alice.ID, 0)
		req.NoError(err)
		req.Len(aliceBox.Sent, 2)
		req.Equal(second.ID, aliceBox.Sent[0].ID)
		req.Equal(first.ID, aliceBox.Sent[1].ID)
		req.Empty(aliceBox.Received)

		bobBox, err := svc.List(bob.ID, 0)
		req.NoError(err)
		req.Len(bobBox.Received, 2)
		req.Equal(second.ID, bobBox.Received[0].ID)
		req.Empty(bobBox.Sent)
	})

	t.Run("should emit a notification to the receiver", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")
		bob := env.addUser(t, "bob")

		msg, err := svc.Send(ctx, alice.ID, bob.ID, "hello", "")
		req.NoError(err)

		notifications := env.sink.all()
		req.Len(notifications, 1)
		req.Equal(bob.ID, notifications[0].RecipientID)
		req.Equal(alice.ID, notifications[0].ActorID)
		req.Equal(domain.VerbDirectMessage, notifications[0].Verb)
		req.Equal(domain.MessageTarget(msg.ID), notifications[0].Target)
	})

	t.Run("should fail on self target for any user", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")

		_, err := svc.Send(ctx, alice.ID, alice.ID, "hi me", "")
		req.ErrorIs(err, errors.ErrSelfTarget)
	})

	t.Run("should fail when receiver does not exist", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")

		_, err := svc.Send(ctx, alice.ID, uuid.NewString(), "hi", "")
		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("should fail on empty content", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")
		bob := env.addUser(t, "bob")

		_, err := svc.Send(ctx, alice.ID, bob.ID, "   ", "")
		req.ErrorIs(err, errors.ErrEmptyContent)
	})

	t.Run("should censor banned words before persisting", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")
		bob := env.addUser(t, "bob")

		msg, err := svc.Send(ctx, alice.ID, bob.ID, "what a badger move", "")
		req.NoError(err)
		req.Equal("what a ****** move", msg.Content)

		stored, err := env.messages.GetByID(msg.ID)
		req.NoError(err)
		req.Equal("what a ****** move", stored.Content)
	})

	t.Run("should not fail the send when notification emission fails", func(t *testing.T) {
		req := require.New(t)
		env := newTestEnv(t)
		env.sink.fail = true
		svc := env.messagingService(t)
		alice := env.addUser(t, "alice")
		bob := env.addUser(t, "bob")

		msg, err := svc.Send(ctx, alice.ID, bob.ID, "still delivered", "")
		req.NoError(err)

		stored, err := env.messages.GetByID(msg.ID)
		req.NoError(err)
		req.Equal("still delivered", stored.Content)
	})
}

func TestMessagingService_MarkRead(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	env := newTestEnv(t)
	svc := env.messagingService(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	carol := env.addUser(t, "carol")

	msg, err := svc.Send(ctx, alice.ID, bob.ID, "read me", "")
	req.NoError(err)

	t.Run("receiver marks read, sender and third party get not found", func(t *testing.T) {
		req := require.New(t)

		_, err := svc.MarkRead(alice.ID, msg.ID)
		req.ErrorIs(err, errors.ErrNotFound)

		_, err = svc.MarkRead(carol.ID, msg.ID)
		req.ErrorIs(err, errors.ErrNotFound)

		updated, err := svc.MarkRead(bob.ID, msg.ID)
		req.NoError(err)
		req.True(updated.IsRead)
	})

	t.Run("second mark read is idempotent", func(t *testing.T) {
		req := require.New(t)
		updated, err := svc.MarkRead(bob.ID, msg.ID)
		req.NoError(err)
		req.True(updated.IsRead)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.MarkRead(bob.ID, uuid.New())
		require.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestMessagingService_Search(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	env := newTestEnv(t)
	svc := env.messagingService(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	carol := env.addUser(t, "carol")

	mine, err := svc.Send(ctx, alice.ID, bob.ID, "the quarterly invoice is attached", "")
	req.NoError(err)
	_, err = svc.Send(ctx, bob.ID, carol.ID, "a different invoice for carol", "")
	req.NoError(err)

	results, err := svc.Search(ctx, alice.ID, "invoice", 10)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal(mine.ID, results[0].ID)

	// Bob participates in both conversations.
	results, err = svc.Search(ctx, bob.ID, "invoice", 10)
	req.NoError(err)
	req.Len(results, 2)
}

func TestMessagingService_Conversation(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	env := newTestEnv(t)
	svc := env.messagingService(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	carol := env.addUser(t, "carol")

	first, err := svc.Send(ctx, alice.ID, bob.ID, "hello bob", "")
	req.NoError(err)
	second, err := svc.Send(ctx, bob.ID, alice.ID, "hello alice", "")
	req.NoError(err)
	_, err = svc.Send(ctx, alice.ID, carol.ID, "hello carol", "")
	req.NoError(err)

	conversation, err := svc.Conversation(alice.ID, bob.ID, 0)
	req.NoError(err)
	req.Len(conversation, 2)
	req.Equal(first.ID, conversation[0].ID)
	req.Equal(second.ID, conversation[1].ID)
}
