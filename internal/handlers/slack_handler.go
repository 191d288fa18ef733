package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	slackcmd "github.com/veonhoon/bible-reader-sub000/internal/domain/slack"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
)

// maxPendingShown caps the pending list in the status reply
const maxPendingShown = 10

type SlackHandler struct {
	service       contract.NotificationService
	trigger       contract.Trigger
	signingSecret string
	location      *time.Location
	log           *logrus.Entry
}

func New(service contract.NotificationService, trigger contract.Trigger, signingSecret string, location *time.Location) *SlackHandler {
	if location == nil {
		location = time.Local
	}

	return &SlackHandler{
		service:       service,
		trigger:       trigger,
		signingSecret: signingSecret,
		location:      location,
		log:           logger.Component("slack_handler"),
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	// Verify request from Slack
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		h.log.WithError(err).Warn("Rejected slash command with a bad signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respondWithError(w, err.Error())
		return
	}

	h.log.WithFields(logrus.Fields{
		"command": cmd.Type,
		"user_id": s.UserID,
		"channel": s.ChannelID,
	}).Info("Handling slash command")

	response := h.handleCommand(r.Context(), cmd)

	h.writeJSON(w, response)
}

// HandleHealth reports liveness for load balancers and systemd watchdogs
func (h *SlackHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *SlackHandler) handleCommand(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdOn:
		return h.handleOptIn(ctx, true)
	case slackcmd.CmdOff:
		return h.handleOptIn(ctx, false)
	case slackcmd.CmdRun:
		return h.handleRun()
	case slackcmd.CmdStatus:
		return h.handleStatus(ctx)
	case slackcmd.CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Unknown command")
	}
}

func (h *SlackHandler) handleOptIn(ctx context.Context, enabled bool) *slack.Msg {
	if err := h.service.SetOptIn(ctx, enabled); err != nil {
		h.log.WithError(err).Error("Failed to update opt-in")
		return h.createErrorResponse("Could not update your notification preference")
	}

	// The scheduler picks up the new flag; turning off cancels everything pending
	h.trigger.Trigger()

	if enabled {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         "✅ Devotional notifications are on. Your next two weeks are being scheduled.",
		}
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "🔕 Devotional notifications are off. Pending notifications are being cancelled.",
	}
}

func (h *SlackHandler) handleRun() *slack.Msg {
	h.trigger.Trigger()

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "🔄 Rebuilding your notification schedule.",
	}
}

func (h *SlackHandler) handleStatus(ctx context.Context) *slack.Msg {
	status, err := h.service.Status(ctx)
	if err != nil {
		h.log.WithError(err).Error("Failed to load status")
		return h.createErrorResponse("Could not load notification status")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         h.formatStatus(status),
	}
}

func (h *SlackHandler) formatStatus(status *entity.NotifierStatus) string {
	var b strings.Builder

	b.WriteString("*Devotional notifications*\n")
	fmt.Fprintf(&b, "• Opted in: %s\n", yesNo(status.Eligibility.UserOptedIn))
	fmt.Fprintf(&b, "• Subscription active: %s\n", yesNo(status.Eligibility.IsEntitled))
	fmt.Fprintf(&b, "• Next snippet position: %d\n", status.Cursor)

	if !status.Eligibility.Open() {
		b.WriteString("\nNothing will be scheduled until notifications are on and the subscription is active.")
		return b.String()
	}

	if !status.CanList {
		return b.String()
	}

	if len(status.Pending) == 0 {
		b.WriteString("\nNo notifications are scheduled.")
		return b.String()
	}

	fmt.Fprintf(&b, "\n*Scheduled (%d):*\n", len(status.Pending))
	for i, n := range status.Pending {
		if i == maxPendingShown {
			fmt.Fprintf(&b, "…and %d more\n", len(status.Pending)-maxPendingShown)
			break
		}
		fmt.Fprintf(&b, "• %s - %s\n", n.FireAt.In(h.location).Format("Mon Jan 2 15:04"), n.Title)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(),
	}
}

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("❌ %s", message),
	}
}

func (h *SlackHandler) respondWithError(w http.ResponseWriter, message string) {
	h.writeJSON(w, h.createErrorResponse(message))
}

func (h *SlackHandler) writeJSON(w http.ResponseWriter, response *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.WithError(err).Error("Failed to write response")
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
