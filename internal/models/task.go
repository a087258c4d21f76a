package models

import (
	"time"

	"github.com/mmynk/roommates/internal/frequency"
	"github.com/mmynk/roommates/internal/rotation"
)

// Task is a recurring household chore.
//
// Completing a task either advances it in place (next due date, next person in
// the rotation) or, for a one-shot frequency, removes it after logging a
// CompletedTask.
type Task struct {
	// ID is the unique identifier for the task (UUID format).
	ID string

	Name        string
	Description string

	// DueDate is the calendar date the task is next due.
	DueDate time.Time

	// Frequency controls how DueDate advances on completion.
	Frequency frequency.Frequency

	// Complete is only true transiently while a completion is processed.
	Complete bool

	// CurrentID is the member currently responsible. Empty when unassigned.
	CurrentID string

	// Rotation is the ordered assignment ring of user IDs.
	Rotation rotation.Ring

	// HouseholdID is the owning household.
	HouseholdID string
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Rotation = t.Rotation.Clone()
	return &c
}

// CompletedTask is an immutable record of one completion. It outlives the task.
type CompletedTask struct {
	ID string

	// Name is copied from the task at completion time.
	Name string

	// RoommateID is the user credited with the completion.
	RoommateID string

	// Date is the calendar date of completion.
	Date time.Time

	HouseholdID string
}
