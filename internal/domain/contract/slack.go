package contract

//go:generate mockgen -source=slack.go -destination=../../../mocks/slack_mock.go -package=mocks

import (
	"context"

	"github.com/slack-go/slack"
)

// SlackClient defines the Slack operations used to schedule notifications
// This allows mocking in tests while keeping the real implementation simple
type SlackClient interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)

	// ScheduleMessageContext returns the channel and the scheduled message id
	ScheduleMessageContext(ctx context.Context, channelID, postAt string, options ...slack.MsgOption) (string, string, error)

	GetScheduledMessagesContext(ctx context.Context, params *slack.GetScheduledMessagesParameters) ([]slack.ScheduledMessage, string, error)
	DeleteScheduledMessageContext(ctx context.Context, params *slack.DeleteScheduledMessageParameters) (bool, error)
}
