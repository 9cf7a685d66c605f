package services

import (
	"context"
	"fmt"
	"log/slog"
	"social-lab/domain"
	"social-lab/moderation"
	"social-lab/repositories"
	"social-lab/search"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingSink captures emitted notifications; it can be switched to
// failure mode to verify that emission stays best-effort.
type recordingSink struct {
	mu            sync.Mutex
	notifications []domain.Notification
	fail          bool
}

func (r *recordingSink) Emit(_ context.Context, notification domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("sink is down")
	}
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *recordingSink) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification{}, r.notifications...)
}

type testEnv struct {
	users         *repositories.UserRepository
	messages      *repositories.MessageRepository
	edges         *repositories.FollowRepository
	profiles      *repositories.ProfileRepository
	notifications *repositories.NotificationRepository
	index         *search.Index
	sink          *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	index, err := search.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return &testEnv{
		users:         repositories.NewUserRepository(db),
		messages:      repositories.NewMessageRepository(db, slog.Default()),
		edges:         repositories.NewFollowRepository(db),
		profiles:      repositories.NewProfileRepository(db),
		notifications: repositories.NewNotificationRepository(db),
		index:         index,
		sink:          &recordingSink{},
	}
}

func (e *testEnv) addUser(t *testing.T, username string) domain.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$fake",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.users.CreateUser(user))
	return user
}

func (e *testEnv) messagingService(t *testing.T) *MessagingService {
	t.Helper()
	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	require.NoError(t, err)
	return NewMessagingService(e.messages, e.users, e.sink, e.index, &moderator, slog.Default())
}

func (e *testEnv) socialService() *SocialService {
	return NewSocialService(e.edges, e.users, e.sink, slog.Default())
}
