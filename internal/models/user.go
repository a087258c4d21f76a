package models

// User represents a registered user account.
//
// Membership in a household is exclusive: a user belongs to at most one
// household at a time. Deleting the household detaches its users rather than
// deleting them.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// FirstName and LastName are required display names.
	FirstName string
	LastName  string

	// Status is an optional free-form note shown to roommates ("away until Friday").
	Status string

	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash string

	// HouseholdID is the household the user belongs to. Empty when the user
	// has not joined one.
	HouseholdID string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// HasHousehold reports whether the user currently belongs to a household.
func (u *User) HasHousehold() bool {
	return u.HouseholdID != ""
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
