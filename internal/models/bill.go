package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roommates/internal/frequency"
)

// Bill is a recurring shared expense.
//
// A bill alternates between inactive and active once per billing period.
// Activation fans the balance out into one BillCycle per participant;
// deactivation settles the period and reschedules the bill.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	Name string

	// TotalBalance is the amount due for the current period.
	TotalBalance decimal.Decimal

	DueDate   time.Time
	Frequency frequency.Frequency

	IsActive bool

	// ManagerID is the user who pays the provider and collects shares.
	// The manager is always counted in the split but never billed a cycle.
	ManagerID string

	// Participants are the user IDs billed a share, in the order they joined.
	Participants []string

	// Period counts activations. Cycles created by the latest activation carry
	// the same value.
	Period int

	HouseholdID string
}

// NumSplit is the number of people sharing the balance: every participant
// plus the manager.
func (b *Bill) NumSplit() int {
	return len(b.Participants) + 1
}

// HasParticipant reports whether userID is billed a share.
func (b *Bill) HasParticipant(userID string) bool {
	return slices.Contains(b.Participants, userID)
}

// Clone returns a deep copy of the bill.
func (b *Bill) Clone() *Bill {
	c := *b
	c.Participants = slices.Clone(b.Participants)
	return &c
}

// BillCycle is one participant's share of a bill for one activation period.
// Cycles are created in a batch on activation and afterwards only change when
// marked paid.
type BillCycle struct {
	ID     string
	BillID string

	// Period is the bill activation that produced this cycle.
	Period int

	RecipientID string
	Amount      decimal.Decimal

	IsPaid bool

	// DatePaid is nil until the cycle is paid.
	DatePaid *time.Time
}
