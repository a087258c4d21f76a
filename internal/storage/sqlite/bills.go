package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/roommates/internal/frequency"
	"github.com/mmynk/roommates/internal/models"
)

const billColumns = `id, household_id, name, total_balance, due_date, frequency, is_active, manager_id, period`

const cycleColumns = `c.id, c.bill_id, c.period, c.recipient_id, c.amount, c.is_paid, c.date_paid`

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var dueDate, freq string
	if err := row.Scan(
		&bill.ID, &bill.HouseholdID, &bill.Name, &bill.TotalBalance,
		&dueDate, &freq, &bill.IsActive, &bill.ManagerID, &bill.Period,
	); err != nil {
		return nil, err
	}

	var err error
	if bill.DueDate, err = parseDate(dueDate); err != nil {
		return nil, err
	}
	if bill.Frequency, err = frequency.Parse(freq); err != nil {
		return nil, fmt.Errorf("bill %s: %w", bill.ID, err)
	}
	return bill, nil
}

func scanCycle(row scanner) (models.BillCycle, error) {
	var c models.BillCycle
	var datePaid sql.NullString
	if err := row.Scan(&c.ID, &c.BillID, &c.Period, &c.RecipientID, &c.Amount, &c.IsPaid, &datePaid); err != nil {
		return c, err
	}
	if datePaid.Valid {
		d, err := parseDate(datePaid.String)
		if err != nil {
			return c, err
		}
		c.DatePaid = &d
	}
	return c, nil
}

// CreateBill persists a new bill with its participants.
func (t *sqliteTx) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.HouseholdID, bill.Name, bill.TotalBalance.StringFixed(2),
		formatDate(bill.DueDate), bill.Frequency.String(), bill.IsActive, bill.ManagerID, bill.Period,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return t.writeParticipants(ctx, bill)
}

// UpdateBill overwrites the bill's fields and participant set.
func (t *sqliteTx) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE bills
		 SET name = ?, total_balance = ?, due_date = ?, frequency = ?, is_active = ?, manager_id = ?, period = ?
		 WHERE id = ?`,
		bill.Name, bill.TotalBalance.StringFixed(2), formatDate(bill.DueDate), bill.Frequency.String(),
		bill.IsActive, bill.ManagerID, bill.Period, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if err := expectRow(res, "bill", bill.ID); err != nil {
		return err
	}

	if _, err := t.q.ExecContext(ctx, "DELETE FROM bill_participants WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	return t.writeParticipants(ctx, bill)
}

func (t *sqliteTx) writeParticipants(ctx context.Context, bill *models.Bill) error {
	for i, userID := range bill.Participants {
		_, err := t.q.ExecContext(ctx,
			"INSERT INTO bill_participants (bill_id, user_id, position) VALUES (?, ?, ?)",
			bill.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// DeleteBill removes a bill and, through the foreign key, its cycles.
func (t *sqliteTx) DeleteBill(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return expectRow(res, "bill", id)
}

// CreateBillCycles inserts a batch of cycles, assigning IDs in place.
func (t *sqliteTx) CreateBillCycles(ctx context.Context, cycles []models.BillCycle) error {
	for i := range cycles {
		c := &cycles[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := t.q.ExecContext(ctx,
			`INSERT INTO bill_cycles (id, bill_id, period, recipient_id, amount, is_paid, date_paid)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.BillID, c.Period, c.RecipientID, c.Amount.StringFixed(2), c.IsPaid, datePaidValue(c),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill cycle: %w", err)
		}
	}
	return nil
}

// UpdateBillCycle records a payment.
func (t *sqliteTx) UpdateBillCycle(ctx context.Context, cycle *models.BillCycle) error {
	res, err := t.q.ExecContext(ctx,
		"UPDATE bill_cycles SET is_paid = ?, date_paid = ? WHERE id = ?",
		cycle.IsPaid, datePaidValue(cycle), cycle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill cycle: %w", err)
	}
	return expectRow(res, "bill cycle", cycle.ID)
}

func datePaidValue(c *models.BillCycle) any {
	if c.DatePaid == nil {
		return nil
	}
	return formatDate(*c.DatePaid)
}

// GetBill retrieves a bill by ID, including its participants.
func (s queries) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := scanBill(s.q.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("bill", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if err := s.loadParticipants(ctx, []*models.Bill{bill}); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills retrieves a household's bills by due date.
func (s queries) ListBills(ctx context.Context, householdID string) ([]*models.Bill, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE household_id = ? ORDER BY due_date, name, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	rows.Close()

	if err := s.loadParticipants(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (s queries) loadParticipants(ctx context.Context, bills []*models.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	byID := make(map[string]*models.Bill, len(bills))
	args := make([]any, len(bills))
	for i, bill := range bills {
		byID[bill.ID] = bill
		args[i] = bill.ID
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT bill_id, user_id FROM bill_participants
		 WHERE bill_id IN (`+placeholders(len(args))+`)
		 ORDER BY bill_id, position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var billID, userID string
		if err := rows.Scan(&billID, &userID); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		bill := byID[billID]
		bill.Participants = append(bill.Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}

// ListBillCycles retrieves every cycle of a bill, newest period first.
func (s queries) ListBillCycles(ctx context.Context, billID string) ([]models.BillCycle, error) {
	return s.listCycles(ctx,
		`SELECT `+cycleColumns+` FROM bill_cycles c
		 WHERE c.bill_id = ?
		 ORDER BY c.period DESC, c.rowid`,
		billID,
	)
}

// ListOpenCycles retrieves the current period's cycles of every active bill.
func (s queries) ListOpenCycles(ctx context.Context, householdID string) ([]models.BillCycle, error) {
	return s.listCycles(ctx,
		`SELECT `+cycleColumns+` FROM bill_cycles c
		 JOIN bills b ON b.id = c.bill_id
		 WHERE b.household_id = ? AND b.is_active = 1 AND c.period = b.period
		 ORDER BY b.due_date, c.bill_id, c.rowid`,
		householdID,
	)
}

// ListPaidCycles retrieves paid cycles, most recently paid first.
func (s queries) ListPaidCycles(ctx context.Context, householdID string) ([]models.BillCycle, error) {
	return s.listCycles(ctx,
		`SELECT `+cycleColumns+` FROM bill_cycles c
		 JOIN bills b ON b.id = c.bill_id
		 WHERE b.household_id = ? AND c.is_paid = 1
		 ORDER BY c.date_paid DESC, c.rowid DESC`,
		householdID,
	)
}

func (s queries) listCycles(ctx context.Context, query string, args ...any) ([]models.BillCycle, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill cycles: %w", err)
	}
	defer rows.Close()

	var cycles []models.BillCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill cycles: %w", err)
	}
	return cycles, nil
}
