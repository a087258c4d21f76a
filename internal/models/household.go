package models

// Household is the group that owns tasks, bills and their history.
// Deleting a household cascades to all of them.
type Household struct {
	// ID is the unique identifier for the household (UUID format).
	ID string

	// Name is the display name of the household (e.g., "Maple Street").
	Name string

	// CreatedAt is the Unix timestamp when the household was created.
	CreatedAt int64
}
