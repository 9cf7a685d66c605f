//go:generate go run go.uber.org/mock/mockgen -source=social_service.go -destination=../mocks/mock_social_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"social-lab/domain"
	"social-lab/errors"
	"social-lab/repositories"
	"social-lab/sink"
	"time"

	"github.com/google/uuid"
)

type ISocialService interface {
	Follow(ctx context.Context, actorID, targetID string) error
	Unfollow(ctx context.Context, actorID, targetID string) error
	Following(actorID string) ([]string, error)
	Followers(actorID string) ([]string, error)
}

type SocialService struct {
	edges  repositories.IFollowRepository
	users  repositories.IUserRepository
	events sink.EventSink
	log    *slog.Logger
}

func NewSocialService(
	edges repositories.IFollowRepository,
	users repositories.IUserRepository,
	events sink.EventSink,
	log *slog.Logger,
) *SocialService {
	return &SocialService{edges: edges, users: users, events: events, log: log}
}

// Follow adds the directed edge actor->target and notifies the target.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID string) error {
	// 1. The target must resolve before any graph-state answer.
	exists, err := s.users.UserExists(targetID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrNotFound
	}

	// 2. Policy on current edge state.
	following, err := s.edges.IsFollowing(actorID, targetID)
	if err != nil {
		return err
	}
	if err := domain.CanFollow(actorID, targetID, following); err != nil {
		return err
	}

	// 3. The repository re-checks under its transaction, so a concurrent
	// duplicate surfaces here as ErrAlreadyFollowing.
	if err := s.edges.AddEdge(actorID, targetID); err != nil {
		return err
	}

	// 4. Notify the target, best-effort.
	if err := s.events.Emit(ctx, domain.Notification{
		ID:          uuid.New(),
		RecipientID: targetID,
		ActorID:     actorID,
		Verb:        domain.VerbFollowedYou,
		Target:      domain.UserTarget(targetID),
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		s.log.Error("notification emission failed",
			"recipient", targetID,
			"verb", domain.VerbFollowedYou,
			"error", err)
	}

	return nil
}

// Unfollow removes the edge. No notification is emitted.
func (s *SocialService) Unfollow(_ context.Context, actorID, targetID string) error {
	exists, err := s.users.UserExists(targetID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrNotFound
	}

	following, err := s.edges.IsFollowing(actorID, targetID)
	if err != nil {
		return err
	}
	if err := domain.CanUnfollow(actorID, targetID, following); err != nil {
		return err
	}

	return s.edges.RemoveEdge(actorID, targetID)
}

func (s *SocialService) Following(actorID string) ([]string, error) {
	return s.edges.Following(actorID)
}

func (s *SocialService) Followers(actorID string) ([]string, error) {
	return s.edges.Followers(actorID)
}
