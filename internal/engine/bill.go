package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roommates/internal/calculator"
	"github.com/mmynk/roommates/internal/frequency"
	"github.com/mmynk/roommates/internal/models"
)

// maxBalance is the first amount that no longer fits eight digits with two
// decimal places.
var maxBalance = decimal.New(1, 6)

// BillParams are the inputs for a new bill.
type BillParams struct {
	Name         string
	TotalBalance decimal.Decimal
	DueDate      time.Time
	Frequency    string
	ManagerID    string
	Participants []string
	HouseholdID  string
}

// NewBill builds a validated, inactive bill. The manager is never a
// participant; listing them is ignored.
func NewBill(p BillParams) (*models.Bill, error) {
	freq, err := frequency.Parse(p.Frequency)
	if err != nil {
		return nil, err
	}

	b := &models.Bill{
		Name:         strings.TrimSpace(p.Name),
		TotalBalance: p.TotalBalance,
		DueDate:      models.DateOf(p.DueDate),
		Frequency:    freq,
		ManagerID:    p.ManagerID,
		HouseholdID:  p.HouseholdID,
	}
	AddParticipants(b, p.Participants)

	if err := ValidateBill(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ValidateBill checks the bill's field invariants.
func ValidateBill(b *models.Bill) error {
	if b.Name == "" {
		return invalidf("name", "is required")
	}
	if utf8.RuneCountInString(b.Name) > maxNameLength {
		return invalidf("name", "must be at most %d characters", maxNameLength)
	}
	if b.TotalBalance.IsNegative() {
		return invalidf("total_balance", "must not be negative")
	}
	if !b.TotalBalance.Equal(b.TotalBalance.Truncate(calculator.CurrencyPlaces)) {
		return invalidf("total_balance", "must have at most %d decimal places", calculator.CurrencyPlaces)
	}
	if b.TotalBalance.GreaterThanOrEqual(maxBalance) {
		return invalidf("total_balance", "must be below %s", maxBalance)
	}
	if b.DueDate.IsZero() {
		return invalidf("due_date", "is required")
	}
	if b.ManagerID == "" {
		return invalidf("manager", "is required")
	}
	if b.HouseholdID == "" {
		return invalidf("household", "is required")
	}
	return b.Frequency.Validate()
}

// AddParticipants adds each user not already sharing the bill and returns how
// many were added. Duplicates, blanks and the manager are no-ops, so the split
// count changes by exactly the returned amount.
func AddParticipants(b *models.Bill, userIDs []string) int {
	added := 0
	for _, id := range userIDs {
		if id == "" || id == b.ManagerID || b.HasParticipant(id) {
			continue
		}
		b.Participants = append(b.Participants, id)
		added++
	}
	return added
}

// RemoveParticipants drops each current participant and returns how many were
// removed. Open cycles of removed participants are left untouched.
func RemoveParticipants(b *models.Bill, userIDs []string) int {
	removed := 0
	for _, id := range userIDs {
		for i, p := range b.Participants {
			if p == id {
				b.Participants = append(b.Participants[:i], b.Participants[i+1:]...)
				removed++
				break
			}
		}
	}
	return removed
}

// ActivateBill opens a new billing period and returns one cycle per
// participant. Each share is the balance split across NumSplit people, rounded
// up to the cent; the manager absorbs the remainder.
func ActivateBill(b *models.Bill) ([]models.BillCycle, error) {
	if b.IsActive {
		return nil, fmt.Errorf("%w: bill %s is already active", ErrInvalidTransition, b.ID)
	}
	if len(b.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	share, err := calculator.SplitEvenly(b.TotalBalance, b.NumSplit())
	if err != nil {
		return nil, err
	}

	b.IsActive = true
	b.Period++

	cycles := make([]models.BillCycle, 0, len(b.Participants))
	for _, id := range b.Participants {
		cycles = append(cycles, models.BillCycle{
			BillID:      b.ID,
			Period:      b.Period,
			RecipientID: id,
			Amount:      share,
		})
	}
	return cycles, nil
}

// DeactivateBill settles the open period. One-shot bills come back archived
// and must be deleted; recurring bills move to their next due date with a
// zero balance. Existing cycles are not touched.
func DeactivateBill(b *models.Bill) (archived bool, err error) {
	if !b.IsActive {
		return false, fmt.Errorf("%w: bill %s is not active", ErrInvalidTransition, b.ID)
	}
	if b.Frequency.IsOnce() {
		b.IsActive = false
		return true, nil
	}

	next, err := b.Frequency.Next(b.DueDate)
	if err != nil {
		return false, err
	}
	b.DueDate = next
	b.TotalBalance = decimal.Zero
	b.IsActive = false
	return false, nil
}

// PayCycle marks recipientID's share of the open period as paid and returns
// it. Paying an already paid share keeps the original payment date.
func PayCycle(b *models.Bill, cycles []models.BillCycle, recipientID string, today time.Time) (*models.BillCycle, error) {
	if !b.IsActive {
		return nil, fmt.Errorf("%w: bill %s has no open period", ErrCycleNotFound, b.ID)
	}
	for i := range cycles {
		c := &cycles[i]
		if c.BillID != b.ID || c.Period != b.Period || c.RecipientID != recipientID {
			continue
		}
		if !c.IsPaid {
			paid := models.DateOf(today)
			c.IsPaid = true
			c.DatePaid = &paid
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: no share for user %s on bill %s", ErrCycleNotFound, recipientID, b.ID)
}

// BillPatch is a partial update. Nil fields are left alone.
type BillPatch struct {
	Name         *string
	TotalBalance *decimal.Decimal
	DueDate      *time.Time
	Frequency    *string
	ManagerID    *string
}

// ApplyBillPatch applies p to b. A new manager who was a participant stops
// being billed. Changing the balance of an active bill does not rewrite the
// open period's cycles.
func ApplyBillPatch(b *models.Bill, p BillPatch) error {
	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
	}
	if p.TotalBalance != nil {
		b.TotalBalance = *p.TotalBalance
	}
	if p.DueDate != nil {
		b.DueDate = models.DateOf(*p.DueDate)
	}
	if p.Frequency != nil {
		freq, err := frequency.Parse(*p.Frequency)
		if err != nil {
			return err
		}
		b.Frequency = freq
	}
	if p.ManagerID != nil {
		b.ManagerID = *p.ManagerID
		RemoveParticipants(b, []string{b.ManagerID})
	}
	return ValidateBill(b)
}
