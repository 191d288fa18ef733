package contract

//go:generate mockgen -source=repo.go -destination=../../../mocks/repo_mock.go -package=mocks

import (
	"context"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// DataManager aggregates all repositories of the device-local database
type DataManager interface {
	KeyValue() KeyValueRepo
	Notification() NotificationRepo
	Document() DocumentStore
}

// KeyValueRepo is the device-local persistent key/value store
type KeyValueRepo interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// NotificationRepo stores notifications scheduled on the local outbox
type NotificationRepo interface {
	Create(ctx context.Context, n *entity.ScheduledNotification) error
	DeleteByScope(ctx context.Context, scope string) (int64, error)
	ListByScope(ctx context.Context, scope string) ([]*entity.ScheduledNotification, error)
}
