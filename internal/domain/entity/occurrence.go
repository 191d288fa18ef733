package entity

import "time"

// PlannedOccurrence pairs a snippet with the moment it should fire
type PlannedOccurrence struct {
	FireAt  time.Time
	Snippet Snippet
	WeekID  string
}

// Payload is what the receiving UI needs to deep-link into the content
type Payload struct {
	SnippetID string `json:"snippetId"`
	WeekID    string `json:"weekId"`
}

// Notification is the content handed to a notification primitive
type Notification struct {
	Title    string
	Subtitle string
	Body     string
	Payload  Payload
}

// ScheduledNotification is a notification waiting in the local outbox
type ScheduledNotification struct {
	ID        string
	Scope     string
	FireAt    time.Time
	Title     string
	Subtitle  string
	Body      string
	SnippetID string
	WeekID    string
	CreatedAt time.Time
}

// RunStatus describes how a scheduling run ended
type RunStatus string

const (
	RunStatusScheduled         RunStatus = "scheduled"
	RunStatusDisabled          RunStatus = "disabled"
	RunStatusNotEntitled       RunStatus = "not_entitled"
	RunStatusPermissionDenied  RunStatus = "permission_denied"
	RunStatusNothingToSchedule RunStatus = "nothing_to_schedule"
)

// RunResult summarises a scheduling run
type RunResult struct {
	Status    RunStatus
	Planned   int
	Scheduled int
	Cursor    int
}

// EligibilityState is the opt-in plus entitlement pair checked by the gate
type EligibilityState struct {
	UserOptedIn bool
	IsEntitled  bool
}

// Open reports whether scheduling may produce output
func (e EligibilityState) Open() bool {
	return e.UserOptedIn && e.IsEntitled
}

// NotifierStatus is a snapshot shown by the status command
type NotifierStatus struct {
	Eligibility EligibilityState
	Cursor      int
	Pending     []*ScheduledNotification
	CanList     bool
}
