package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
)

// Local keeps pending notifications in the local database outbox.
// Delivery is left to whatever reads the outbox.
type Local struct {
	repo  contract.NotificationRepo
	scope string
	log   *logrus.Entry
}

var (
	_ contract.Notifier      = (*Local)(nil)
	_ contract.PendingLister = (*Local)(nil)
)

// NewLocal returns an outbox notifier that files new rows under scope
func NewLocal(repo contract.NotificationRepo, scope string) *Local {
	return &Local{
		repo:  repo,
		scope: scope,
		log:   logger.Component("notifier.local"),
	}
}

func (l *Local) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (l *Local) ScheduleAt(ctx context.Context, fireAt time.Time, n entity.Notification) (string, error) {
	row := &entity.ScheduledNotification{
		ID:        uuid.NewString(),
		Scope:     l.scope,
		FireAt:    fireAt,
		Title:     n.Title,
		Subtitle:  n.Subtitle,
		Body:      n.Body,
		SnippetID: n.Payload.SnippetID,
		WeekID:    n.Payload.WeekID,
	}

	if err := l.repo.Create(ctx, row); err != nil {
		return "", err
	}

	return row.ID, nil
}

func (l *Local) CancelAll(ctx context.Context, scope string) error {
	deleted, err := l.repo.DeleteByScope(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to cancel notifications: %w", err)
	}

	l.log.WithFields(logrus.Fields{"scope": scope, "deleted": deleted}).Debug("pending notifications cancelled")
	return nil
}

func (l *Local) Pending(ctx context.Context, scope string) ([]*entity.ScheduledNotification, error) {
	return l.repo.ListByScope(ctx, scope)
}
