package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

type testWeek struct {
	WeekID      string `json:"weekId"`
	PublishedAt string `json:"publishedAt"`
}

func TestDocumentRepository_SetAndGet(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	ctx := context.Background()
	repo := newDocumentRepo(db.conn, time.Second)

	missing, err := repo.Get(ctx, "settings", "notificationSchedule")
	require.NoError(t, err)
	assert.Nil(t, missing, "Expected nil when document not found")

	schedule := entity.ScheduleDocument{PerDay: 2, Days: []string{"Mon", "Wed"}, Times: []string{"09:00", "20:00"}}
	require.NoError(t, repo.Set(ctx, "settings", "notificationSchedule", schedule))

	found, err := repo.Get(ctx, "settings", "notificationSchedule")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "settings", found.Collection)
	assert.Equal(t, "notificationSchedule", found.ID)
	assert.False(t, found.UpdatedAt.IsZero())

	var decoded entity.ScheduleDocument
	require.NoError(t, found.Decode(&decoded))
	assert.Equal(t, schedule, decoded)

	// Overwrite keeps a single document
	schedule.PerDay = 1
	require.NoError(t, repo.Set(ctx, "settings", "notificationSchedule", schedule))

	all, err := repo.Query(ctx, "settings", entity.Query{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NoError(t, all[0].Decode(&decoded))
	assert.Equal(t, 1, decoded.PerDay)
}

func TestDocumentRepository_Query(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	ctx := context.Background()
	repo := newDocumentRepo(db.conn, time.Second)

	weeks := []testWeek{
		{WeekID: "2024-W02", PublishedAt: "2024-01-08T06:00:00Z"},
		{WeekID: "2024-W01", PublishedAt: "2024-01-01T06:00:00Z"},
		{WeekID: "2024-W03", PublishedAt: "2024-01-15T06:00:00Z"},
	}
	for _, w := range weeks {
		require.NoError(t, repo.Set(ctx, "weeklyContent", w.WeekID, w))
	}
	require.NoError(t, repo.Set(ctx, "settings", "other", testWeek{WeekID: "2099-W01", PublishedAt: "2099-01-01T00:00:00Z"}))

	tests := []struct {
		name    string
		query   entity.Query
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "Should return the latest published week",
			query:   entity.Query{OrderBy: "publishedAt", Descending: true, Limit: 1},
			wantIDs: []string{"2024-W03"},
		},
		{
			name:    "Should order ascending",
			query:   entity.Query{OrderBy: "publishedAt"},
			wantIDs: []string{"2024-W01", "2024-W02", "2024-W03"},
		},
		{
			name: "Should filter by field",
			query: entity.Query{
				Filters: []entity.Filter{{Field: "weekId", Op: entity.OpEqual, Value: "2024-W02"}},
			},
			wantIDs: []string{"2024-W02"},
		},
		{
			name: "Should combine range filters with order",
			query: entity.Query{
				Filters:    []entity.Filter{{Field: "publishedAt", Op: entity.OpGreaterEqual, Value: "2024-01-08T00:00:00Z"}},
				OrderBy:    "publishedAt",
				Descending: true,
			},
			wantIDs: []string{"2024-W03", "2024-W02"},
		},
		{
			name:    "Should reject an invalid field",
			query:   entity.Query{Filters: []entity.Filter{{Field: "weekId') OR 1=1 --", Op: entity.OpEqual, Value: "x"}}},
			wantErr: true,
		},
		{
			name:    "Should reject an invalid operator",
			query:   entity.Query{Filters: []entity.Filter{{Field: "weekId", Op: "LIKE", Value: "x"}}},
			wantErr: true,
		},
		{
			name:    "Should reject an invalid order field",
			query:   entity.Query{OrderBy: "published At"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := repo.Query(ctx, "weeklyContent", tt.query)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			var ids []string
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDocumentRepository_Subscribe(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	ctx := context.Background()
	repo := newDocumentRepo(db.conn, 10*time.Millisecond)

	changes := make(chan struct{}, 10)
	unsubscribe, err := repo.Subscribe(ctx, "weeklyContent", func() {
		changes <- struct{}{}
	})
	require.NoError(t, err)
	defer unsubscribe()

	// Unrelated collections do not notify
	require.NoError(t, repo.Set(ctx, "settings", "notificationSchedule", map[string]int{"perDay": 1}))

	select {
	case <-changes:
		t.Fatal("unexpected change notification")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, repo.Set(ctx, "weeklyContent", "2024-W01", testWeek{WeekID: "2024-W01"}))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	unsubscribe()
	unsubscribe()
}
