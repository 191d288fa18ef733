package contract

//go:generate mockgen -source=notifier.go -destination=../../../mocks/notifier_mock.go -package=mocks

import (
	"context"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// Notifier is the local notification primitive the engine schedules against
type Notifier interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
	ScheduleAt(ctx context.Context, fireAt time.Time, n entity.Notification) (handle string, err error)
	// CancelAll removes every pending notification of scope; a no-op when nothing is pending
	CancelAll(ctx context.Context, scope string) error
}

// PendingLister is implemented by notifiers that can list what they hold
type PendingLister interface {
	Pending(ctx context.Context, scope string) ([]*entity.ScheduledNotification, error)
}

// Entitlement reports whether the user holds the premium capability
type Entitlement interface {
	IsEntitled(ctx context.Context) (bool, error)
}
