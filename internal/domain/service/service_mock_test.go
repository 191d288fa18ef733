package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
	"github.com/veonhoon/bible-reader-sub000/mocks"
	"go.uber.org/mock/gomock"
)

type allMocks struct {
	mockDataManager      *mocks.MockDataManager
	mockKeyValueRepo     *mocks.MockKeyValueRepo
	mockNotificationRepo *mocks.MockNotificationRepo
	mockDocumentReader   *mocks.MockDocumentReader
	mockNotifier         *mocks.MockNotifier
	mockEntitlement      *mocks.MockEntitlement
	mockContentReader    *mocks.MockContentReader
	mockCursorStore      *mocks.MockCursorStore
	mockDispatcher       *mocks.MockDispatcher
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	dm := mocks.NewMockDataManager(ctrl)

	kvRepo := mocks.NewMockKeyValueRepo(ctrl)
	dm.EXPECT().KeyValue().Return(kvRepo).AnyTimes()

	notificationRepo := mocks.NewMockNotificationRepo(ctrl)
	dm.EXPECT().Notification().Return(notificationRepo).AnyTimes()

	m = allMocks{
		mockDataManager:      dm,
		mockKeyValueRepo:     kvRepo,
		mockNotificationRepo: notificationRepo,
		mockDocumentReader:   mocks.NewMockDocumentReader(ctrl),
		mockNotifier:         mocks.NewMockNotifier(ctrl),
		mockEntitlement:      mocks.NewMockEntitlement(ctrl),
		mockContentReader:    mocks.NewMockContentReader(ctrl),
		mockCursorStore:      mocks.NewMockCursorStore(ctrl),
		mockDispatcher:       mocks.NewMockDispatcher(ctrl),
	}

	// validate service creation
	instance := NewInstance(dm, m.mockDocumentReader, m.mockNotifier, Options{Entitlement: m.mockEntitlement})
	require.NotNil(t, instance.Notification)
	require.NotNil(t, instance.Scheduler)

	return
}

// newTestNotificationService wires the gate to the mocked pipeline stages
func newTestNotificationService(m allMocks, now time.Time) *notificationService {
	return &notificationService{
		kv:           m.mockKeyValueRepo,
		entitlement:  m.mockEntitlement,
		notifier:     m.mockNotifier,
		content:      m.mockContentReader,
		cursor:       m.mockCursorStore,
		dispatcher:   m.mockDispatcher,
		scope:        domain.NotificationScope,
		quiet:        defaultQuietHours(),
		horizonWeeks: domain.PlanningHorizonWeeks,
		now:          func() time.Time { return now },
		log:          logger.Component("test"),
	}
}

func defaultQuietHours() entity.QuietHours {
	return entity.QuietHours{
		Start: entity.MustLocalTime(domain.DefaultQuietHoursStart),
		End:   entity.MustLocalTime(domain.DefaultQuietHoursEnd),
	}
}

func testPool(ids ...string) *entity.ContentPool {
	pool := &entity.ContentPool{WeekID: "2024-W01"}
	for _, id := range ids {
		pool.Items = append(pool.Items, entity.Snippet{ID: id, Title: "Title " + id, Body: "Body " + id})
	}
	return pool
}

func testSchedule(perDay int, days []time.Weekday, times ...string) *entity.DeliverySchedule {
	schedule := &entity.DeliverySchedule{PerDay: perDay, ActiveDays: days}
	for _, t := range times {
		schedule.Times = append(schedule.Times, entity.MustLocalTime(t))
	}
	return schedule
}
