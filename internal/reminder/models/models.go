// Package models defines comp reminders.
package models

import (
	"time"

	id "comphub/pkg/domain"
)

// Reminder is a dated follow-up attached to one comp. A reminder is pending
// until CompletedAt is set; NotificationSent flips once the notifier has
// fired for it.
type Reminder struct {
	ID               id.ReminderID
	CompID           id.CompID
	TeamID           id.TeamID
	Title            string
	AssignedTo       id.UserID
	RemindAt         time.Time
	Notes            *string
	CompletedAt      *time.Time
	NotificationSent bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CreatedBy        id.UserID
	UpdatedBy        id.UserID
}

// Pending reports whether the reminder is still awaiting completion.
func (r Reminder) Pending() bool { return r.CompletedAt == nil }
