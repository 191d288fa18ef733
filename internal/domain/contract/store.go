package contract

//go:generate mockgen -source=store.go -destination=../../../mocks/store_mock.go -package=mocks

import (
	"context"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// DocumentReader is the read side of the managed document database
type DocumentReader interface {
	// Get returns nil, nil when the document does not exist
	Get(ctx context.Context, collection, id string) (*entity.Document, error)
	Query(ctx context.Context, collection string, q entity.Query) ([]*entity.Document, error)
	// Subscribe calls onChange whenever the collection changes until unsubscribe is called
	Subscribe(ctx context.Context, collection string, onChange func()) (unsubscribe func(), err error)
}

// DocumentStore adds the write side used by the admin publisher
type DocumentStore interface {
	DocumentReader
	Set(ctx context.Context, collection, id string, data any) error
}
