package contract

//go:generate mockgen -source=service.go -destination=../../../mocks/service_mock.go -package=mocks

import (
	"context"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// NotificationService is the scheduling pipeline behind the eligibility gate
type NotificationService interface {
	Run(ctx context.Context) (*entity.RunResult, error)
	SetOptIn(ctx context.Context, enabled bool) error
	Status(ctx context.Context) (*entity.NotifierStatus, error)
}

// Trigger asks the scheduler loop for a run without blocking
type Trigger interface {
	Trigger()
}

// CursorStore persists the rotation cursor between runs
type CursorStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, cursor int) error
}

// ContentReader reads the admin-authored schedule and content pool
type ContentReader interface {
	// FetchSchedule returns nil, nil when no schedule is configured
	FetchSchedule(ctx context.Context) (*entity.DeliverySchedule, error)
	// FetchContentPool returns nil, nil when nothing is published
	FetchContentPool(ctx context.Context) (*entity.ContentPool, error)
}

// Dispatcher replaces the scheduled notifications with a fresh plan
type Dispatcher interface {
	Dispatch(ctx context.Context, occurrences []entity.PlannedOccurrence) (int, error)
}
