//go:generate go run go.uber.org/mock/mockgen -source=notification_sink.go -destination=../mocks/mock_notification_sink.go -package=mocks
// Package sink delivers notification events produced as side effects of
// the primary mutations. Emission is best-effort from the caller's point
// of view: a sink failure must never roll back or mask the mutation.
package sink

import (
	"context"
	"log/slog"
	"social-lab/domain"
	"social-lab/repositories"
)

type EventSink interface {
	Emit(ctx context.Context, notification domain.Notification) error
}

// DiskSink persists notifications through the notification repository.
type DiskSink struct {
	repository repositories.INotificationRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.INotificationRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Emit(ctx context.Context, notification domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.repository.Store(notification)
}
