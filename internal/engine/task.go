package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/roommates/internal/frequency"
	"github.com/mmynk/roommates/internal/models"
)

const (
	maxNameLength        = 64
	maxDescriptionLength = 128
)

// TaskParams are the inputs for a new task.
type TaskParams struct {
	Name        string
	Description string
	DueDate     time.Time
	Frequency   string
	HouseholdID string

	// CurrentID is optional. When empty and Rotation is not, the first
	// rotation member starts out responsible.
	CurrentID string
	Rotation  []string
}

// NewTask builds a validated, pending task.
func NewTask(p TaskParams) (*models.Task, error) {
	freq, err := frequency.Parse(p.Frequency)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		DueDate:     models.DateOf(p.DueDate),
		Frequency:   freq,
		CurrentID:   p.CurrentID,
		HouseholdID: p.HouseholdID,
	}
	AddRotationMembers(t, p.Rotation)
	if t.CurrentID == "" && len(t.Rotation) > 0 {
		t.CurrentID = t.Rotation[0]
	}

	if err := ValidateTask(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateTask checks the task's field invariants.
func ValidateTask(t *models.Task) error {
	if t.Name == "" {
		return invalidf("name", "is required")
	}
	if utf8.RuneCountInString(t.Name) > maxNameLength {
		return invalidf("name", "must be at most %d characters", maxNameLength)
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return invalidf("description", "must be at most %d characters", maxDescriptionLength)
	}
	if t.DueDate.IsZero() {
		return invalidf("due_date", "is required")
	}
	if t.HouseholdID == "" {
		return invalidf("household", "is required")
	}
	return t.Frequency.Validate()
}

// Completion is the outcome of completing a task.
type Completion struct {
	// Record is the history entry to append.
	Record models.CompletedTask

	// Archived is set for one-shot tasks, which must be deleted. Task then
	// holds the final snapshot.
	Archived bool

	// Task is the task after completion.
	Task *models.Task
}

// CompleteTask logs a completion of t and moves it on.
//
// The record credits the current assignee, or actorID when nobody is assigned.
// One-shot tasks come back Archived. Recurring tasks get the next due date,
// return to pending, and hand responsibility to the next rotation member.
func CompleteTask(t *models.Task, actorID string, today time.Time) (*Completion, error) {
	roommate := t.CurrentID
	if roommate == "" {
		roommate = actorID
	}
	if roommate == "" {
		return nil, invalidf("current", "task has nobody to credit")
	}

	c := &Completion{
		Record: models.CompletedTask{
			Name:        t.Name,
			RoommateID:  roommate,
			Date:        models.DateOf(today),
			HouseholdID: t.HouseholdID,
		},
		Task: t,
	}

	if t.Frequency.IsOnce() {
		t.Complete = true
		c.Archived = true
		return c, nil
	}

	next, err := t.Frequency.Next(t.DueDate)
	if err != nil {
		return nil, err
	}
	t.DueDate = next
	t.Complete = false
	if member, ok := t.Rotation.Advance(t.CurrentID); ok {
		t.CurrentID = member
	}
	return c, nil
}

// MarkIncomplete clears the complete flag and nothing else.
func MarkIncomplete(t *models.Task) {
	t.Complete = false
}

// TaskPatch is a partial update. Nil fields are left alone.
type TaskPatch struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	Frequency   *string
	CurrentID   *string

	// Complete routes through CompleteTask (true) or MarkIncomplete (false)
	// after all other fields are applied.
	Complete *bool
}

// ApplyTaskPatch applies p to t. A non-nil Completion is returned when the
// patch completed the task; rotation then advanced exactly once no matter how
// many other fields changed.
func ApplyTaskPatch(t *models.Task, p TaskPatch, actorID string, today time.Time) (*Completion, error) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = models.DateOf(*p.DueDate)
	}
	if p.Frequency != nil {
		freq, err := frequency.Parse(*p.Frequency)
		if err != nil {
			return nil, err
		}
		t.Frequency = freq
	}
	if p.CurrentID != nil {
		// Reassigning hands over an unfinished task.
		t.CurrentID = *p.CurrentID
		t.Complete = false
	}

	if err := ValidateTask(t); err != nil {
		return nil, err
	}

	if p.Complete == nil {
		return nil, nil
	}
	if !*p.Complete {
		MarkIncomplete(t)
		return nil, nil
	}
	return CompleteTask(t, actorID, today)
}

// AddRotationMembers appends each user to the rotation, ignoring existing
// members. It returns how many were added.
func AddRotationMembers(t *models.Task, userIDs []string) int {
	added := 0
	for _, id := range userIDs {
		if t.Rotation.Add(id) {
			added++
		}
	}
	return added
}

// RemoveRotationMembers drops each user from the rotation, ignoring
// non-members. It returns how many were removed. The current assignee keeps
// the task until the next completion even when removed from the rotation.
func RemoveRotationMembers(t *models.Task, userIDs []string) int {
	removed := 0
	for _, id := range userIDs {
		if t.Rotation.Remove(id) {
			removed++
		}
	}
	return removed
}
