package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
	"golang.org/x/time/rate"
)

// MetadataEventType tags every message this notifier schedules
const MetadataEventType = "devotional_snippet"

var deniedAuthErrors = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"account_inactive": true,
	"token_revoked":    true,
	"missing_scope":    true,
}

// Slack schedules notifications as Slack scheduled messages in one channel.
// Handles are mirrored into the outbox so CancelAll only touches messages
// this notifier created.
type Slack struct {
	client    contract.SlackClient
	repo      contract.NotificationRepo
	channelID string
	scope     string
	limiter   *rate.Limiter
	log       *logrus.Entry
}

var (
	_ contract.Notifier      = (*Slack)(nil)
	_ contract.PendingLister = (*Slack)(nil)
)

func NewSlack(client contract.SlackClient, repo contract.NotificationRepo, channelID, scope string, ratePerMin int) *Slack {
	limit := rate.Inf
	if ratePerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(ratePerMin))
	}

	return &Slack{
		client:    client,
		repo:      repo,
		channelID: channelID,
		scope:     scope,
		limiter:   rate.NewLimiter(limit, 1),
		log:       logger.Component("notifier.slack"),
	}
}

// RequestPermission reports whether the bot token is usable
func (s *Slack) RequestPermission(ctx context.Context) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}

	resp, err := s.client.AuthTestContext(ctx)
	if err != nil {
		if isAuthError(err) {
			s.log.WithError(err).Warn("slack token rejected")
			return false, nil
		}
		return false, fmt.Errorf("failed to verify slack token: %w", err)
	}

	s.log.WithFields(logrus.Fields{"team": resp.Team, "user": resp.User}).Debug("slack token verified")
	return true, nil
}

func (s *Slack) ScheduleAt(ctx context.Context, fireAt time.Time, n entity.Notification) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	_, messageID, err := s.client.ScheduleMessageContext(ctx, s.channelID,
		strconv.FormatInt(fireAt.Unix(), 10),
		slack.MsgOptionText(formatMessage(n), false),
		slack.MsgOptionMetadata(slack.SlackMetadata{
			EventType: MetadataEventType,
			EventPayload: map[string]interface{}{
				"snippetId": n.Payload.SnippetID,
				"weekId":    n.Payload.WeekID,
			},
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to schedule slack message: %w", err)
	}

	row := &entity.ScheduledNotification{
		ID:        messageID,
		Scope:     s.scope,
		FireAt:    fireAt,
		Title:     n.Title,
		Subtitle:  n.Subtitle,
		Body:      n.Body,
		SnippetID: n.Payload.SnippetID,
		WeekID:    n.Payload.WeekID,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, row); err != nil {
		// an unrecorded message would be invisible to CancelAll
		if messageID != "" {
			if _, delErr := s.client.DeleteScheduledMessageContext(ctx, &slack.DeleteScheduledMessageParameters{
				Channel:            s.channelID,
				ScheduledMessageID: messageID,
			}); delErr != nil && !isGoneError(delErr) {
				s.log.WithError(delErr).WithField("message_id", messageID).Error("failed to withdraw unrecorded slack message")
			}
		}
		return "", fmt.Errorf("failed to record scheduled slack message: %w", err)
	}

	return messageID, nil
}

// CancelAll deletes every still-pending Slack message recorded under scope
func (s *Slack) CancelAll(ctx context.Context, scope string) error {
	recorded, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to list recorded slack messages: %w", err)
	}
	if len(recorded) == 0 {
		return nil
	}

	known := make(map[string]bool, len(recorded))
	for _, n := range recorded {
		known[n.ID] = true
	}

	pending, err := s.scheduledMessages(ctx)
	if err != nil {
		return err
	}

	deleted := 0
	for _, msg := range pending {
		if !known[msg.ID] {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		_, err := s.client.DeleteScheduledMessageContext(ctx, &slack.DeleteScheduledMessageParameters{
			Channel:            s.channelID,
			ScheduledMessageID: msg.ID,
		})
		if err != nil && !isGoneError(err) {
			return fmt.Errorf("failed to delete scheduled slack message %s: %w", msg.ID, err)
		}
		deleted++
	}

	if _, err := s.repo.DeleteByScope(ctx, scope); err != nil {
		return fmt.Errorf("failed to clear recorded slack messages: %w", err)
	}

	s.log.WithFields(logrus.Fields{"scope": scope, "deleted": deleted}).Debug("scheduled slack messages cancelled")
	return nil
}

func (s *Slack) Pending(ctx context.Context, scope string) ([]*entity.ScheduledNotification, error) {
	return s.repo.ListByScope(ctx, scope)
}

func (s *Slack) scheduledMessages(ctx context.Context) ([]slack.ScheduledMessage, error) {
	var (
		all    []slack.ScheduledMessage
		cursor string
	)

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, next, err := s.client.GetScheduledMessagesContext(ctx, &slack.GetScheduledMessagesParameters{
			Channel: s.channelID,
			Cursor:  cursor,
			Limit:   100,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list scheduled slack messages: %w", err)
		}

		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func formatMessage(n entity.Notification) string {
	var b strings.Builder
	if n.Title != "" {
		b.WriteString("*" + n.Title + "*\n")
	}
	if n.Subtitle != "" {
		b.WriteString("_" + n.Subtitle + "_\n")
	}
	b.WriteString(n.Body)
	return strings.TrimRight(b.String(), "\n")
}

func slackErrorCode(err error) string {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return slackErr.Err
	}
	return err.Error()
}

func isAuthError(err error) bool {
	return deniedAuthErrors[slackErrorCode(err)]
}

// isGoneError reports a message that was already posted or deleted
func isGoneError(err error) bool {
	return slackErrorCode(err) == "invalid_scheduled_message_id"
}
