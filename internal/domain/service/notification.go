package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"golang.org/x/sync/errgroup"
)

// notificationService is the eligibility gate in front of the
// fetch -> plan -> dispatch pipeline
type notificationService struct {
	kv           contract.KeyValueRepo
	entitlement  contract.Entitlement
	notifier     contract.Notifier
	content      contract.ContentReader
	cursor       contract.CursorStore
	dispatcher   contract.Dispatcher
	scope        string
	quiet        entity.QuietHours
	horizonWeeks int
	now          func() time.Time
	log          *logrus.Entry

	running atomic.Bool
}

func (s *notificationService) Run(ctx context.Context) (*entity.RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrRunInProgress
	}
	defer s.running.Store(false)

	optedIn, err := s.optedIn(ctx)
	if err != nil {
		return nil, err
	}
	if !optedIn {
		return s.close(ctx, entity.RunStatusDisabled)
	}

	entitled, err := s.entitlement.IsEntitled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check entitlement: %w", err)
	}
	if !entitled {
		return s.close(ctx, entity.RunStatusNotEntitled)
	}

	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to request notification permission: %w", err)
	}
	if !granted {
		s.log.Info("notification permission denied, not scheduling")
		return &entity.RunResult{Status: entity.RunStatusPermissionDenied}, nil
	}

	schedule, pool, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if schedule == nil || pool.Len() == 0 {
		s.log.WithFields(logrus.Fields{
			"has_schedule": schedule != nil,
			"pool_size":    pool.Len(),
		}).Info("nothing to schedule")
		return &entity.RunResult{Status: entity.RunStatusNothingToSchedule}, nil
	}

	cursor, err := s.cursor.Load(ctx)
	if err != nil {
		return nil, err
	}

	occurrences, _ := Plan(schedule, s.quiet, pool, cursor, s.now(), s.horizonWeeks)

	scheduled, err := s.dispatcher.Dispatch(ctx, occurrences)
	if err != nil {
		return nil, err
	}

	next := advanceCursor(cursor, scheduled, pool.Len())
	if err := s.cursor.Save(ctx, next); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"week_id":   pool.WeekID,
		"planned":   len(occurrences),
		"scheduled": scheduled,
		"cursor":    next,
	}).Info("notifications scheduled")

	return &entity.RunResult{
		Status:    entity.RunStatusScheduled,
		Planned:   len(occurrences),
		Scheduled: scheduled,
		Cursor:    next,
	}, nil
}

// close cancels everything this subsystem scheduled
func (s *notificationService) close(ctx context.Context, status entity.RunStatus) (*entity.RunResult, error) {
	if err := s.notifier.CancelAll(ctx, s.scope); err != nil {
		return nil, fmt.Errorf("failed to cancel scheduled notifications: %w", err)
	}

	s.log.WithField("status", status).Info("scheduling gate closed, pending notifications cancelled")
	return &entity.RunResult{Status: status}, nil
}

// fetch reads the schedule and the content pool concurrently
func (s *notificationService) fetch(ctx context.Context) (*entity.DeliverySchedule, *entity.ContentPool, error) {
	var (
		schedule *entity.DeliverySchedule
		pool     *entity.ContentPool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schedule, err = s.content.FetchSchedule(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pool, err = s.content.FetchContentPool(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return schedule, pool, nil
}

func (s *notificationService) optedIn(ctx context.Context) (bool, error) {
	value, ok, err := s.kv.GetItem(ctx, domain.KeyNotificationsEnabled)
	if err != nil {
		return false, fmt.Errorf("failed to read opt-in flag: %w", err)
	}
	if !ok {
		return false, nil
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		s.log.WithField("value", value).Warn("invalid opt-in flag, treating as disabled")
		return false, nil
	}

	return enabled, nil
}

func (s *notificationService) SetOptIn(ctx context.Context, enabled bool) error {
	if err := s.kv.SetItem(ctx, domain.KeyNotificationsEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("failed to store opt-in flag: %w", err)
	}
	return nil
}

func (s *notificationService) Status(ctx context.Context) (*entity.NotifierStatus, error) {
	optedIn, err := s.optedIn(ctx)
	if err != nil {
		return nil, err
	}

	entitled, err := s.entitlement.IsEntitled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check entitlement: %w", err)
	}

	cursor, err := s.cursor.Load(ctx)
	if err != nil {
		return nil, err
	}

	status := &entity.NotifierStatus{
		Eligibility: entity.EligibilityState{UserOptedIn: optedIn, IsEntitled: entitled},
		Cursor:      cursor,
	}

	if lister, ok := s.notifier.(contract.PendingLister); ok {
		pending, err := lister.Pending(ctx, s.scope)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending notifications: %w", err)
		}
		status.Pending = pending
		status.CanList = true
	}

	return status, nil
}
