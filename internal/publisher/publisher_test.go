package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veonhoon/bible-reader-sub000/internal/database"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/mocks"
	"go.uber.org/mock/gomock"
)

var publishedAt = time.Date(2026, 10, 12, 8, 30, 0, 0, time.UTC)

func newTestPublisher(t *testing.T) (*Publisher, contract.DocumentStore) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	docs := database.NewInstance(db, time.Second).Document()
	p := New(docs, Options{})
	p.now = func() time.Time { return publishedAt }

	return p, docs
}

type fakeExtractor struct {
	snippets []entity.SnippetDocument
	err      error
}

func (f fakeExtractor) Snippets(context.Context, string, int, int) ([]entity.SnippetDocument, error) {
	return f.snippets, f.err
}

func TestPublisher_PublishSchedule(t *testing.T) {
	ctx := context.Background()
	p, docs := newTestPublisher(t)

	got, err := p.PublishSchedule(ctx, 2, []string{"monday", "Wed", "fri"}, []string{"9:00", "20:00"})
	require.NoError(t, err)
	assert.Equal(t, &entity.ScheduleDocument{
		PerDay: 2,
		Days:   []string{"Mon", "Wed", "Fri"},
		Times:  []string{"09:00", "20:00"},
	}, got)

	doc, err := docs.Get(ctx, domain.DefaultScheduleCollection, domain.DefaultScheduleDocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)

	var stored entity.ScheduleDocument
	require.NoError(t, doc.Decode(&stored))
	assert.Equal(t, *got, stored)
}

func TestPublisher_PublishScheduleValidation(t *testing.T) {
	tests := []struct {
		name   string
		perDay int
		days   []string
		times  []string
	}{
		{name: "Should reject zero per day", perDay: 0, days: []string{"Mon"}, times: []string{"09:00"}},
		{name: "Should reject unknown weekdays", perDay: 1, days: []string{"Someday"}, times: []string{"09:00"}},
		{name: "Should reject empty days", perDay: 1, times: []string{"09:00"}},
		{name: "Should reject invalid times", perDay: 1, days: []string{"Mon"}, times: []string{"25:00"}},
		{name: "Should reject too few times", perDay: 2, days: []string{"Mon"}, times: []string{"09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			docs := mocks.NewMockDocumentStore(ctrl)
			docs.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := New(docs, Options{}).PublishSchedule(context.Background(), tt.perDay, tt.days, tt.times)
			require.Error(t, err)
		})
	}
}

func TestPublisher_PublishContent(t *testing.T) {
	ctx := context.Background()
	p, docs := newTestPublisher(t)

	got, err := p.PublishContent(ctx, " 2026-W42 ", []entity.SnippetDocument{
		{ID: "a", Title: "Grace", Snippet: "Grace is a gift."},
		{ID: "blank", Title: "Nothing"},
		{ID: "b", Title: "Hope", Body: "Hope does not disappoint."},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-W42", got.WeekID)
	assert.Equal(t, "2026-10-12T08:30:00Z", got.PublishedAt)
	require.Len(t, got.Snippets, 2)

	doc, err := docs.Get(ctx, domain.DefaultContentCollection, "2026-W42")
	require.NoError(t, err)
	require.NotNil(t, doc)

	var stored entity.ContentDocument
	require.NoError(t, doc.Decode(&stored))
	assert.Equal(t, *got, stored)
}

func TestPublisher_PublishContentErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Should require a week id", func(t *testing.T) {
		p, _ := newTestPublisher(t)
		_, err := p.PublishContent(ctx, "  ", []entity.SnippetDocument{{ID: "a", Snippet: "x"}})
		require.Error(t, err)
	})

	t.Run("Should require at least one snippet with text", func(t *testing.T) {
		p, _ := newTestPublisher(t)
		_, err := p.PublishContent(ctx, "2026-W42", []entity.SnippetDocument{{ID: "a"}})
		require.Error(t, err)
	})

	t.Run("Should reject snippets without an id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		docs := mocks.NewMockDocumentStore(ctrl)
		docs.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := New(docs, Options{}).PublishContent(ctx, "2026-W42", []entity.SnippetDocument{
			{ID: "a", Snippet: "One"},
			{ID: "  ", Snippet: "Two"},
		})
		require.ErrorContains(t, err, "has no id")
	})

	t.Run("Should reject duplicate ids", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		docs := mocks.NewMockDocumentStore(ctrl)
		docs.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := New(docs, Options{}).PublishContent(ctx, "2026-W42", []entity.SnippetDocument{
			{ID: "x", Snippet: "One"},
			{ID: "x ", Body: "Two"},
		})
		require.ErrorContains(t, err, `duplicate snippet id "x"`)
	})

	t.Run("Should wrap store errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		docs := mocks.NewMockDocumentStore(ctrl)
		docs.EXPECT().Set(gomock.Any(), domain.DefaultContentCollection, "2026-W42", gomock.Any()).Return(assert.AnError)

		_, err := New(docs, Options{}).PublishContent(ctx, "2026-W42", []entity.SnippetDocument{{ID: "a", Snippet: "x"}})
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestPublisher_PublishContentJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("Should accept a bare snippet array", func(t *testing.T) {
		p, _ := newTestPublisher(t)
		got, err := p.PublishContentJSON(ctx, "2026-W42", []byte(`[{"id":"a","title":"Grace","snippet":"Grace is a gift."}]`))
		require.NoError(t, err)
		assert.Equal(t, "2026-W42", got.WeekID)
		assert.Len(t, got.Snippets, 1)
	})

	t.Run("Should take the week id from a full document", func(t *testing.T) {
		p, _ := newTestPublisher(t)
		got, err := p.PublishContentJSON(ctx, "", []byte(`{"weekId":"2026-W43","snippets":[{"id":"a","snippet":"x"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "2026-W43", got.WeekID)
	})

	t.Run("Should reject malformed input", func(t *testing.T) {
		p, _ := newTestPublisher(t)
		_, err := p.PublishContentJSON(ctx, "2026-W42", []byte(`not json`))
		require.Error(t, err)
	})
}

func TestPublisher_PublishTeaching(t *testing.T) {
	ctx := context.Background()

	t.Run("Should publish extracted snippets", func(t *testing.T) {
		p, _ := newTestPublisher(t)
		got, err := p.PublishTeaching(ctx, fakeExtractor{snippets: []entity.SnippetDocument{
			{ID: "a", Snippet: "One"},
			{ID: "b", Snippet: "Two"},
		}}, "2026-W42", "long teaching", 3, 5)
		require.NoError(t, err)
		assert.Len(t, got.Snippets, 2)
	})

	t.Run("Should not publish when extraction fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		docs := mocks.NewMockDocumentStore(ctrl)
		docs.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := New(docs, Options{}).PublishTeaching(ctx, fakeExtractor{err: errors.New("quota")}, "2026-W42", "text", 3, 5)
		require.Error(t, err)
	})
}
