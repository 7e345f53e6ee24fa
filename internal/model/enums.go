package model

import (
	"encoding/json"
	"time"
)

// Priority orders tasks and appointments by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank returns the position of p in Priorities, or -1 when p is unknown.
func (p Priority) Rank() int {
	for i, candidate := range Priorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// ReminderLead is how long before an occurrence a reminder is sent.
type ReminderLead string

const (
	Reminder15Min ReminderLead = "15min"
	Reminder1Hour ReminderLead = "1hour"
	Reminder1Day  ReminderLead = "1day"
)

// Duration converts the lead to a time.Duration. Unknown leads fall back to 15 minutes.
func (l ReminderLead) Duration() time.Duration {
	switch l {
	case Reminder1Hour:
		return time.Hour
	case Reminder1Day:
		return 24 * time.Hour
	default:
		return 15 * time.Minute
	}
}

// Recurrence is the repeat period of a recurring item.
type Recurrence string

const (
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	return r == RecurDaily || r == RecurWeekly || r == RecurMonthly
}

// Layouts used by the plain string date and time columns.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// SortField names the column a list is ordered by.
type SortField string

const (
	SortByDate     SortField = "date"
	SortByPriority SortField = "priority"
	SortByTitle    SortField = "title"
	SortByCreated  SortField = "created"
)

// SortOrder is the list direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// EncodeTags renders tags the way the json serializer stores them.
func EncodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return string(raw)
}
