package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/internal/handlers/test"
	"go.uber.org/mock/gomock"
)

func decodeMsg(t *testing.T, resp *httptest.ResponseRecorder) slack.Msg {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.Code)

	var msg slack.Msg
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &msg))
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)

	return msg
}

func TestSlackHandler_HandleSlashCommand(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		buildMocks    func(m test.ServiceMocks)
		checkResponse func(t *testing.T, msg slack.Msg)
	}{
		{
			name: "Should opt in and trigger a run",
			text: "on",
			buildMocks: func(m test.ServiceMocks) {
				gomock.InOrder(
					m.NotificationServiceMock.EXPECT().SetOptIn(gomock.Any(), true).Return(nil),
					m.TriggerMock.EXPECT().Trigger(),
				)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "notifications are on")
			},
		},
		{
			name: "Should opt out and trigger a run",
			text: "off",
			buildMocks: func(m test.ServiceMocks) {
				gomock.InOrder(
					m.NotificationServiceMock.EXPECT().SetOptIn(gomock.Any(), false).Return(nil),
					m.TriggerMock.EXPECT().Trigger(),
				)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "notifications are off")
			},
		},
		{
			name: "Should not trigger when the opt-in cannot be stored",
			text: "on",
			buildMocks: func(m test.ServiceMocks) {
				m.NotificationServiceMock.EXPECT().SetOptIn(gomock.Any(), true).Return(errors.New("disk full"))
				m.TriggerMock.EXPECT().Trigger().Times(0)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "❌")
			},
		},
		{
			name: "Should trigger a run",
			text: "run",
			buildMocks: func(m test.ServiceMocks) {
				m.TriggerMock.EXPECT().Trigger().Times(1)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "Rebuilding")
			},
		},
		{
			name: "Should show the pending schedule",
			text: "status",
			buildMocks: func(m test.ServiceMocks) {
				m.NotificationServiceMock.EXPECT().Status(gomock.Any()).Return(&entity.NotifierStatus{
					Eligibility: entity.EligibilityState{UserOptedIn: true, IsEntitled: true},
					Cursor:      2,
					CanList:     true,
					Pending: []*entity.ScheduledNotification{
						{ID: "Q1", Title: "Grace", FireAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
						{ID: "Q2", Title: "Hope", FireAt: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)},
					},
				}, nil)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "Opted in: yes")
				assert.Contains(t, msg.Text, "Subscription active: yes")
				assert.Contains(t, msg.Text, "Next snippet position: 2")
				assert.Contains(t, msg.Text, "Scheduled (2)")
				assert.Contains(t, msg.Text, "Mon Jan 1 09:00 - Grace")
				assert.Contains(t, msg.Text, "Mon Jan 1 20:00 - Hope")
			},
		},
		{
			name: "Should explain why nothing is scheduled",
			text: "status",
			buildMocks: func(m test.ServiceMocks) {
				m.NotificationServiceMock.EXPECT().Status(gomock.Any()).Return(&entity.NotifierStatus{
					Eligibility: entity.EligibilityState{UserOptedIn: true, IsEntitled: false},
				}, nil)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "Subscription active: no")
				assert.Contains(t, msg.Text, "Nothing will be scheduled")
				assert.NotContains(t, msg.Text, "Scheduled (")
			},
		},
		{
			name: "Should report an empty schedule",
			text: "status",
			buildMocks: func(m test.ServiceMocks) {
				m.NotificationServiceMock.EXPECT().Status(gomock.Any()).Return(&entity.NotifierStatus{
					Eligibility: entity.EligibilityState{UserOptedIn: true, IsEntitled: true},
					CanList:     true,
				}, nil)
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "No notifications are scheduled.")
			},
		},
		{
			name: "Should fail gracefully when status cannot load",
			text: "status",
			buildMocks: func(m test.ServiceMocks) {
				m.NotificationServiceMock.EXPECT().Status(gomock.Any()).Return(nil, errors.New("boom"))
			},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "Could not load notification status")
			},
		},
		{
			name:       "Should show help by default",
			text:       "",
			buildMocks: func(m test.ServiceMocks) {},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "Available Commands")
			},
		},
		{
			name:       "Should reject unknown commands",
			text:       "dance",
			buildMocks: func(m test.ServiceMocks) {},
			checkResponse: func(t *testing.T, msg slack.Msg) {
				assert.Contains(t, msg.Text, "unknown command: dance")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, handler, ctrl := test.GetHandlerTest(t)
			defer ctrl.Finish()

			tt.buildMocks(m)

			req := test.CreateSlackRequest(t, "/devotional", tt.text, "U123456789", test.SigningSecret)
			recorder := test.CreateTestRecorder()

			handler.HandleSlashCommand(recorder, req)

			tt.checkResponse(t, decodeMsg(t, recorder))
		})
	}
}

func TestSlackHandler_HandleSlashCommand_BadSignature(t *testing.T) {
	_, handler, ctrl := test.GetHandlerTest(t)
	defer ctrl.Finish()

	req := test.CreateSlackRequest(t, "/devotional", "on", "U123456789", "wrong-secret")
	recorder := test.CreateTestRecorder()

	handler.HandleSlashCommand(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSlackHandler_HandleSlashCommand_MissingHeaders(t *testing.T) {
	_, handler, ctrl := test.GetHandlerTest(t)
	defer ctrl.Finish()

	req := test.CreateSlackRequest(t, "/devotional", "on", "U123456789", test.SigningSecret)
	req.Header.Del("X-Slack-Signature")
	recorder := test.CreateTestRecorder()

	handler.HandleSlashCommand(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSlackHandler_HandleHealth(t *testing.T) {
	_, handler, ctrl := test.GetHandlerTest(t)
	defer ctrl.Finish()

	recorder := test.CreateTestRecorder()
	handler.HandleHealth(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}
