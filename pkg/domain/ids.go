// Package domain holds typed identifiers shared across modules.
//
// Each entity family gets its own UUID-backed type so the compiler rejects
// cross-wiring (passing a TaskID where a CompID is expected). Parse functions
// enforce the invariant that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "comphub/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated team member.
	UserID uuid.UUID
	// TeamID scopes every record for tenant isolation.
	TeamID uuid.UUID
	// CompID identifies a lease comp, the root entity under audit.
	CompID uuid.UUID
	// BuildingID links a comp to its building record.
	BuildingID uuid.UUID
	// OptionID identifies one lease option row (any kind).
	OptionID uuid.UUID
	// TaskID identifies a comp task.
	TaskID uuid.UUID
	// ReminderID identifies a comp reminder.
	ReminderID uuid.UUID
	// FileID identifies a comp file attachment.
	FileID uuid.UUID
	// EventID identifies one immutable history event.
	EventID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id must not be nil", kind)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

func ParseTeamID(s string) (TeamID, error) {
	u, err := parseUUID(s, "team")
	return TeamID(u), err
}

func ParseCompID(s string) (CompID, error) {
	u, err := parseUUID(s, "comp")
	return CompID(u), err
}

func ParseBuildingID(s string) (BuildingID, error) {
	u, err := parseUUID(s, "building")
	return BuildingID(u), err
}

func ParseOptionID(s string) (OptionID, error) {
	u, err := parseUUID(s, "option")
	return OptionID(u), err
}

func ParseTaskID(s string) (TaskID, error) {
	u, err := parseUUID(s, "task")
	return TaskID(u), err
}

func ParseReminderID(s string) (ReminderID, error) {
	u, err := parseUUID(s, "reminder")
	return ReminderID(u), err
}

func ParseFileID(s string) (FileID, error) {
	u, err := parseUUID(s, "file")
	return FileID(u), err
}

func NewCompID() CompID         { return CompID(uuid.New()) }
func NewOptionID() OptionID     { return OptionID(uuid.New()) }
func NewTaskID() TaskID         { return TaskID(uuid.New()) }
func NewReminderID() ReminderID { return ReminderID(uuid.New()) }
func NewFileID() FileID         { return FileID(uuid.New()) }
func NewEventID() EventID       { return EventID(uuid.New()) }

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id TeamID) String() string     { return uuid.UUID(id).String() }
func (id CompID) String() string     { return uuid.UUID(id).String() }
func (id BuildingID) String() string { return uuid.UUID(id).String() }
func (id OptionID) String() string   { return uuid.UUID(id).String() }
func (id TaskID) String() string     { return uuid.UUID(id).String() }
func (id ReminderID) String() string { return uuid.UUID(id).String() }
func (id FileID) String() string     { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TeamID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id CompID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id BuildingID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OptionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ReminderID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FileID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
