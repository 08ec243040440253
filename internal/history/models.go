// Package history is the change-audit engine for lease comps.
//
// Every mutation to a comp or one of its sub-entities (options, tasks,
// reminders, files) is recorded as one immutable Event carrying zero or more
// field-level Diffs. Events are append-only: they are never updated or
// deleted, and an Event and its Diffs are always written in a single
// transaction. The Logger in this package is the only legal write path;
// direct inserts into the event tables are a contract violation.
package history

import (
	"time"

	id "comphub/pkg/domain"
)

// EventType classifies one history event. The set is closed: the store
// rejects unknown types, and consumers (the history tab, the Kafka feed)
// switch on it.
type EventType string

const (
	EventCompCreated            EventType = "comp_created"
	EventCompDuplicated         EventType = "comp_duplicated"
	EventStatusChanged          EventType = "status_changed"
	EventConfidentialityChanged EventType = "confidentiality_changed"
	EventExportLevelChanged     EventType = "export_level_changed"
	EventOptionAdded            EventType = "option_added"
	EventOptionEdited           EventType = "option_edited"
	EventOptionRemoved          EventType = "option_removed"
	EventFileAdded              EventType = "file_added"
	EventFileRemoved            EventType = "file_removed"
	EventTaskCreated            EventType = "task_created"
	EventTaskCompleted          EventType = "task_completed"
	EventReminderCreated        EventType = "reminder_created"
	EventReminderCompleted      EventType = "reminder_completed"
	EventFieldsEdited           EventType = "fields_edited"
)

// eventTypeLabels maps each event type to its display name.
var eventTypeLabels = map[EventType]string{
	EventCompCreated:            "Comp Created",
	EventCompDuplicated:         "Comp Duplicated",
	EventStatusChanged:          "Status Changed",
	EventConfidentialityChanged: "Confidentiality Changed",
	EventExportLevelChanged:     "Export Level Changed",
	EventOptionAdded:            "Option Added",
	EventOptionEdited:           "Option Edited",
	EventOptionRemoved:          "Option Removed",
	EventFileAdded:              "File Added",
	EventFileRemoved:            "File Removed",
	EventTaskCreated:            "Task Created",
	EventTaskCompleted:          "Task Completed",
	EventReminderCreated:        "Reminder Created",
	EventReminderCompleted:      "Reminder Completed",
	EventFieldsEdited:           "Fields Edited",
}

// IsValid reports whether t belongs to the closed event type set.
func (t EventType) IsValid() bool {
	_, ok := eventTypeLabels[t]
	return ok
}

// Label returns the human-readable name for the event type, falling back to
// the raw tag for forward compatibility on the read side.
func (t EventType) Label() string {
	if label, ok := eventTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Event is one immutable audit-log entry describing a single mutation.
//
// Invariants:
//   - An Event and all its Diffs are created in one atomic transaction;
//     no Event exists with a partially written diff set.
//   - Events are never updated or deleted after creation.
//   - TeamID duplicates the comp's team scope on the event row itself,
//     so isolation holds even when the event is read without its comp.
type Event struct {
	ID          id.EventID `json:"id"`
	CompID      id.CompID  `json:"lease_comp_id"`
	TeamID      id.TeamID  `json:"team_id"`
	Type        EventType  `json:"event_type"`
	Summary     string     `json:"summary"`
	ActorUserID id.UserID  `json:"actor_user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Diffs       []Diff     `json:"diffs"`
}

// Diff is one field-level before/after change attached to an Event.
// Nil values mean "no value", which is distinct from the literal string "null".
type Diff struct {
	ID         int64      `json:"id"`
	EventID    id.EventID `json:"event_id"`
	FieldLabel string     `json:"field_label"`
	OldValue   *string    `json:"old_value"`
	NewValue   *string    `json:"new_value"`
}

// DiffInput is the write-side shape of a diff, before the store assigns IDs.
type DiffInput struct {
	FieldLabel string  `json:"field_label"`
	OldValue   *string `json:"old_value"`
	NewValue   *string `json:"new_value"`
}

// Entry is the input to Logger.LogEvent: one mutation to be recorded.
type Entry struct {
	CompID      id.CompID
	TeamID      id.TeamID
	Type        EventType
	Summary     string
	ActorUserID id.UserID
	Diffs       []DiffInput
}

// OutboxRow is one staged history notification awaiting publication. The row
// is written in the same transaction as its event, so the topic never sees an
// event the database does not have.
type OutboxRow struct {
	ID        int64
	EventID   id.EventID
	Payload   []byte
	CreatedAt time.Time
}
