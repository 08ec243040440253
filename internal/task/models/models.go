// Package models defines comp tasks.
package models

import (
	"time"

	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
)

// Priority orders a task for the assignee.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid task priority %q", s)
}

// Status is the task lifecycle state.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
)

// Task is a to-do attached to one comp.
type Task struct {
	ID          id.TaskID
	CompID      id.CompID
	TeamID      id.TeamID
	Title       string
	AssignedTo  id.UserID
	Priority    Priority
	Status      Status
	Notes       *string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   id.UserID
	UpdatedBy   id.UserID
}
