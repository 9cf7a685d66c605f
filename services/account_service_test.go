package services

import (
	"context"
	"log/slog"
	"social-lab/errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newAccountService(env *testEnv) *AccountService {
	return NewAccountService(env.users, env.messages, env.edges, env.profiles, env.notifications, slog.Default())
}

func TestAccountService_Me(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newAccountService(env)
	alice := env.addUser(t, "alice")

	view, err := svc.Me(alice.ID)
	req.NoError(err)
	req.Equal(alice.ID, view.User.ID)
	req.Nil(view.Profile)

	profile, err := NewProfileService(env.profiles).Create(alice.ID, ProfileFields{Location: lo.ToPtr("Paris")})
	req.NoError(err)

	view, err = svc.Me(alice.ID)
	req.NoError(err)
	req.NotNil(view.Profile)
	req.Equal(profile.ID, view.Profile.ID)
}

func TestAccountService_Update(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newAccountService(env)
	alice := env.addUser(t, "alice")

	updated, err := svc.Update(alice.ID, AccountFields{
		Bio:      lo.ToPtr("new bio"),
		Password: lo.ToPtr("FreshSecret123!"),
	})
	req.NoError(err)
	req.Equal("new bio", updated.Bio)
	req.Contains(updated.PasswordHash, "$argon2id$")
	// Username untouched by the partial update.
	req.Equal("alice", updated.Username)
}

func TestAccountService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	env := newTestEnv(t)
	svc := newAccountService(env)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	messaging := env.messagingService(t)
	_, err := messaging.Send(ctx, alice.ID, bob.ID, "from alice", "")
	req.NoError(err)
	_, err = messaging.Send(ctx, bob.ID, alice.ID, "to alice", "")
	req.NoError(err)

	social := env.socialService()
	req.NoError(social.Follow(ctx, alice.ID, bob.ID))
	req.NoError(social.Follow(ctx, bob.ID, alice.ID))

	_, err = NewProfileService(env.profiles).Create(alice.ID, ProfileFields{Location: lo.ToPtr("Paris")})
	req.NoError(err)

	req.NoError(svc.Delete(alice.ID))

	_, err = env.users.GetUserByID(alice.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	// Bob's inbox no longer holds alice's messages.
	received, err := env.messages.ListReceived(bob.ID, 0)
	req.NoError(err)
	req.Empty(received)

	// Edges in both directions are gone.
	followers, err := env.edges.Followers(bob.ID)
	req.NoError(err)
	req.Empty(followers)
	following, err := env.edges.Following(bob.ID)
	req.NoError(err)
	req.Empty(following)

	_, err = env.profiles.GetByOwner(alice.ID)
	req.ErrorIs(err, errors.ErrNotFound)
}
