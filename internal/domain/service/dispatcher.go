package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

type dispatcher struct {
	notifier contract.Notifier
	scope    string
	log      *logrus.Entry
}

func newDispatcher(notifier contract.Notifier, scope string, log *logrus.Entry) *dispatcher {
	return &dispatcher{
		notifier: notifier,
		scope:    scope,
		log:      log,
	}
}

// Dispatch clears the scope and schedules one notification per occurrence.
// A failed occurrence is logged and skipped; the count excludes it.
func (d *dispatcher) Dispatch(ctx context.Context, occurrences []entity.PlannedOccurrence) (int, error) {
	if err := d.notifier.CancelAll(ctx, d.scope); err != nil {
		return 0, fmt.Errorf("failed to cancel scheduled notifications: %w", err)
	}

	scheduled := 0
	for _, occ := range occurrences {
		handle, err := d.notifier.ScheduleAt(ctx, occ.FireAt, toNotification(occ))
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"snippet_id": occ.Snippet.ID,
				"fire_at":    occ.FireAt,
			}).Warn("failed to schedule notification")
			continue
		}

		scheduled++
		d.log.WithFields(logrus.Fields{
			"handle":     handle,
			"snippet_id": occ.Snippet.ID,
			"fire_at":    occ.FireAt,
		}).Debug("notification scheduled")
	}

	return scheduled, nil
}

func toNotification(occ entity.PlannedOccurrence) entity.Notification {
	return entity.Notification{
		Title:    occ.Snippet.Title,
		Subtitle: occ.Snippet.Subtitle,
		Body:     occ.Snippet.Body,
		Payload: entity.Payload{
			SnippetID: occ.Snippet.ID,
			WeekID:    occ.WeekID,
		},
	}
}
