package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
)

type cursorStore struct {
	kv  contract.KeyValueRepo
	log *logrus.Entry
}

func newCursorStore(kv contract.KeyValueRepo, log *logrus.Entry) *cursorStore {
	return &cursorStore{kv: kv, log: log}
}

// Load returns 0 when no cursor has been stored yet
func (c *cursorStore) Load(ctx context.Context) (int, error) {
	value, ok, err := c.kv.GetItem(ctx, domain.KeyRotationCursor)
	if err != nil {
		return 0, fmt.Errorf("failed to load rotation cursor: %w", err)
	}
	if !ok {
		return 0, nil
	}

	cursor, err := strconv.Atoi(value)
	if err != nil || cursor < 0 {
		c.log.WithField("value", value).Warn("invalid rotation cursor, restarting rotation")
		return 0, nil
	}

	return cursor, nil
}

func (c *cursorStore) Save(ctx context.Context, cursor int) error {
	if cursor < 0 {
		return fmt.Errorf("rotation cursor cannot be negative: %d", cursor)
	}

	if err := c.kv.SetItem(ctx, domain.KeyRotationCursor, strconv.Itoa(cursor)); err != nil {
		return fmt.Errorf("failed to save rotation cursor: %w", err)
	}

	return nil
}
