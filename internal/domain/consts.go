package domain

import (
	"strings"
	"time"
)

// WeekdayNames maps Go weekdays to the abbreviations used by the admin console
var WeekdayNames = map[time.Weekday]string{
	time.Sunday:    "Sun",
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
}

// weekdayLookup accepts both abbreviations and full English names
var weekdayLookup = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday resolves a weekday name, case-insensitive
func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayLookup[strings.ToLower(strings.TrimSpace(name))]
	return day, ok
}

// PlanningHorizonWeeks is how many weeks ahead a single run plans
const PlanningHorizonWeeks = 2

// NotificationScope identifies notifications owned by the devotional scheduler
const NotificationScope = "devotional"

// Keys in the device-local key/value store
const (
	KeyNotificationsEnabled = "notifications_enabled"
	KeyRotationCursor       = "rotation_cursor"
	KeySubscriptionStatus   = "subscription_status"
)

// Default document locations written by the admin console
const (
	DefaultScheduleCollection = "settings"
	DefaultScheduleDocumentID = "notificationSchedule"
	DefaultContentCollection  = "weeklyContent"
)

// Default quiet hours policy
const (
	DefaultQuietHoursStart = "22:00"
	DefaultQuietHoursEnd   = "08:00"
)

// Entitlement modes
const (
	EntitlementModeStore  = "store"
	EntitlementModeAlways = "always"
)
