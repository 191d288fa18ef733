package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veonhoon/bible-reader-sub000/internal/database"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	return NewLocal(database.NewInstance(db, time.Second).Notification(), "devotional")
}

func TestLocal_RequestPermission(t *testing.T) {
	granted, err := newTestLocal(t).RequestPermission(context.Background())

	require.NoError(t, err)
	assert.True(t, granted)
}

func TestLocal_ScheduleAndCancel(t *testing.T) {
	ctx := context.Background()
	local := newTestLocal(t)

	// Cancelling an empty outbox is a no-op
	require.NoError(t, local.CancelAll(ctx, "devotional"))

	fireAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	handle, err := local.ScheduleAt(ctx, fireAt, entity.Notification{
		Title:    "Grace",
		Subtitle: "Day 1",
		Body:     "Short text",
		Payload:  entity.Payload{SnippetID: "a", WeekID: "2024-W01"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(handle)
	require.NoError(t, err, "Expected a uuid handle")

	_, err = local.ScheduleAt(ctx, fireAt.Add(11*time.Hour), entity.Notification{Title: "Hope", Payload: entity.Payload{SnippetID: "b"}})
	require.NoError(t, err)

	pending, err := local.Pending(ctx, "devotional")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, handle, pending[0].ID)
	assert.Equal(t, "devotional", pending[0].Scope)
	assert.Equal(t, "Grace", pending[0].Title)
	assert.Equal(t, "a", pending[0].SnippetID)
	assert.Equal(t, "2024-W01", pending[0].WeekID)
	assert.True(t, fireAt.Equal(pending[0].FireAt))

	require.NoError(t, local.CancelAll(ctx, "devotional"))
	require.NoError(t, local.CancelAll(ctx, "devotional"))

	pending, err = local.Pending(ctx, "devotional")
	require.NoError(t, err)
	assert.Empty(t, pending)
}
