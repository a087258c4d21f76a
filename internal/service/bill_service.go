package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/roommates/internal/calculator"
	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/metrics"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/storage"
)

// BillService manages shared bills and their billing periods.
type BillService struct {
	store   storage.Store
	clock   engine.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewBillService creates a new BillService.
func NewBillService(store storage.Store, clock engine.Clock, m *metrics.Metrics, logger *slog.Logger) *BillService {
	return &BillService{store: store, clock: clock, metrics: m, logger: orDefault(logger)}
}

// CreateBill adds an inactive bill to the actor's household. The actor
// manages it unless another member is named.
func (s *BillService) CreateBill(ctx context.Context, actorID string, p engine.BillParams) (*models.Bill, error) {
	var bill *models.Bill
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		p.HouseholdID = actor.HouseholdID
		if p.ManagerID == "" {
			p.ManagerID = actor.ID
		}

		if bill, err = engine.NewBill(p); err != nil {
			return err
		}
		if err := requireMembers(ctx, tx, actor.HouseholdID, append([]string{bill.ManagerID}, bill.Participants...)...); err != nil {
			return err
		}
		return tx.CreateBill(ctx, bill)
	})
	if err != nil {
		s.logger.Error("CreateBill failed", "actor_id", actorID, "error", err)
		return nil, err
	}

	s.metrics.Mutation("bill", "create")
	s.logger.Info("Bill created",
		"bill_id", bill.ID,
		"household_id", bill.HouseholdID,
		"total", bill.TotalBalance.StringFixed(2),
		"num_split", bill.NumSplit(),
	)
	return bill, nil
}

// UpdateBill applies a partial update. The open period's shares keep the
// amounts they were created with.
func (s *BillService) UpdateBill(ctx context.Context, actorID, billID string, p engine.BillPatch) (*models.Bill, error) {
	var bill *models.Bill
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, b, err := s.load(ctx, tx, actorID, billID)
		if err != nil {
			return err
		}
		if p.ManagerID != nil {
			if err := requireMembers(ctx, tx, actor.HouseholdID, *p.ManagerID); err != nil {
				return err
			}
		}
		if err := engine.ApplyBillPatch(b, p); err != nil {
			return err
		}
		bill = b
		return tx.UpdateBill(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Mutation("bill", "update")
	s.logger.Info("Bill updated", "bill_id", billID, "actor_id", actorID)
	return bill, nil
}

// DeleteBill removes a bill and all of its cycles.
func (s *BillService) DeleteBill(ctx context.Context, actorID, billID string) error {
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, _, err := s.load(ctx, tx, actorID, billID); err != nil {
			return err
		}
		return tx.DeleteBill(ctx, billID)
	})
	if err != nil {
		return err
	}

	s.metrics.Mutation("bill", "delete")
	s.logger.Info("Bill deleted", "bill_id", billID, "actor_id", actorID)
	return nil
}

// AddParticipants shares the bill with more household members and returns
// how many were added.
func (s *BillService) AddParticipants(ctx context.Context, actorID, billID string, userIDs []string) (*models.Bill, int, error) {
	var bill *models.Bill
	var added int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, b, err := s.load(ctx, tx, actorID, billID)
		if err != nil {
			return err
		}
		if err := requireMembers(ctx, tx, actor.HouseholdID, userIDs...); err != nil {
			return err
		}
		bill = b
		if added = engine.AddParticipants(bill, userIDs); added == 0 {
			return nil
		}
		return tx.UpdateBill(ctx, bill)
	})
	if err != nil {
		return nil, 0, err
	}

	if added > 0 {
		s.metrics.Mutation("bill", "participants_add")
	}
	s.logger.Info("Participants added", "bill_id", billID, "added", added, "num_split", bill.NumSplit())
	return bill, added, nil
}

// RemoveParticipants stops sharing the bill with the given users and returns
// how many were removed.
func (s *BillService) RemoveParticipants(ctx context.Context, actorID, billID string, userIDs []string) (*models.Bill, int, error) {
	var bill *models.Bill
	var removed int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if _, bill, err = s.load(ctx, tx, actorID, billID); err != nil {
			return err
		}
		if removed = engine.RemoveParticipants(bill, userIDs); removed == 0 {
			return nil
		}
		return tx.UpdateBill(ctx, bill)
	})
	if err != nil {
		return nil, 0, err
	}

	if removed > 0 {
		s.metrics.Mutation("bill", "participants_remove")
	}
	s.logger.Info("Participants removed", "bill_id", billID, "removed", removed, "num_split", bill.NumSplit())
	return bill, removed, nil
}

// ActivateBill opens a billing period and creates one share per participant.
func (s *BillService) ActivateBill(ctx context.Context, actorID, billID string) (*models.Bill, []models.BillCycle, error) {
	var bill *models.Bill
	var cycles []models.BillCycle
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if _, bill, err = s.load(ctx, tx, actorID, billID); err != nil {
			return err
		}
		if cycles, err = engine.ActivateBill(bill); err != nil {
			return err
		}
		if err := tx.UpdateBill(ctx, bill); err != nil {
			return err
		}
		return tx.CreateBillCycles(ctx, cycles)
	})
	if err != nil {
		s.logger.Error("ActivateBill failed", "bill_id", billID, "actor_id", actorID, "error", err)
		return nil, nil, err
	}

	s.metrics.Mutation("bill", "activate")
	s.metrics.BillActivated()
	s.logger.Info("Bill activated", "bill_id", billID, "period", bill.Period, "cycles", len(cycles))
	return bill, cycles, nil
}

// DeactivateBill closes the open period. One-shot bills are removed and
// reported archived; recurring ones move to their next due date.
func (s *BillService) DeactivateBill(ctx context.Context, actorID, billID string) (*models.Bill, bool, error) {
	var bill *models.Bill
	var archived bool
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if _, bill, err = s.load(ctx, tx, actorID, billID); err != nil {
			return err
		}
		if archived, err = engine.DeactivateBill(bill); err != nil {
			return err
		}
		if archived {
			return tx.DeleteBill(ctx, billID)
		}
		return tx.UpdateBill(ctx, bill)
	})
	if err != nil {
		return nil, false, err
	}

	s.metrics.Mutation("bill", "deactivate")
	s.logger.Info("Bill deactivated",
		"bill_id", billID,
		"archived", archived,
		"next_due", models.FormatDate(bill.DueDate),
	)
	return bill, archived, nil
}

// PayCycle marks a share of the open period as paid. The actor pays their
// own share when recipientID is empty.
func (s *BillService) PayCycle(ctx context.Context, actorID, billID, recipientID string) (*models.BillCycle, error) {
	if recipientID == "" {
		recipientID = actorID
	}

	var cycle *models.BillCycle
	var newlyPaid bool
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		_, bill, err := s.load(ctx, tx, actorID, billID)
		if err != nil {
			return err
		}
		cycles, err := tx.ListBillCycles(ctx, billID)
		if err != nil {
			return err
		}

		wasPaid := make(map[string]bool, len(cycles))
		for _, c := range cycles {
			wasPaid[c.ID] = c.IsPaid
		}
		if cycle, err = engine.PayCycle(bill, cycles, recipientID, engine.Today(s.clock)); err != nil {
			return err
		}
		if newlyPaid = !wasPaid[cycle.ID]; !newlyPaid {
			return nil
		}
		return tx.UpdateBillCycle(ctx, cycle)
	})
	if err != nil {
		return nil, err
	}

	if newlyPaid {
		s.metrics.Mutation("bill_cycle", "pay")
		s.metrics.CyclePaid(cycle.Amount)
	}
	s.logger.Info("Bill cycle paid",
		"bill_id", billID,
		"recipient_id", recipientID,
		"amount", cycle.Amount.StringFixed(2),
		"already_paid", !newlyPaid,
	)
	return cycle, nil
}

// ListBills returns the household's bills by due date.
func (s *BillService) ListBills(ctx context.Context, actorID string) ([]*models.Bill, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListBills(ctx, actor.HouseholdID)
}

// ListBillCycles returns every share of a bill, newest period first.
func (s *BillService) ListBillCycles(ctx context.Context, actorID, billID string) ([]models.BillCycle, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := scoped("bill", billID, bill.HouseholdID, actor); err != nil {
		return nil, err
	}
	return s.store.ListBillCycles(ctx, billID)
}

// ListPaidCycles returns the household's payments, most recent first.
func (s *BillService) ListPaidCycles(ctx context.Context, actorID string) ([]models.BillCycle, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListPaidCycles(ctx, actor.HouseholdID)
}

// BalanceSheet summarizes unpaid shares of the household's open periods.
type BalanceSheet struct {
	Members []calculator.MemberBalance
	Debts   []calculator.DebtEdge
}

// Balances aggregates who owes whom across every active bill. Each unpaid
// share is a debt from the participant to the bill's manager.
func (s *BillService) Balances(ctx context.Context, actorID string) (*BalanceSheet, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBills(ctx, actor.HouseholdID)
	if err != nil {
		return nil, err
	}
	cycles, err := s.store.ListOpenCycles(ctx, actor.HouseholdID)
	if err != nil {
		return nil, err
	}

	managers := make(map[string]string, len(bills))
	for _, b := range bills {
		managers[b.ID] = b.ManagerID
	}

	entries := make([]calculator.CycleForBalance, 0, len(cycles))
	for _, c := range cycles {
		entries = append(entries, calculator.CycleForBalance{
			DebtorID:   c.RecipientID,
			CreditorID: managers[c.BillID],
			Amount:     c.Amount,
			IsPaid:     c.IsPaid,
		})
	}

	members, debts := calculator.OutstandingBalances(entries)
	return &BalanceSheet{Members: members, Debts: debts}, nil
}

func (s *BillService) load(ctx context.Context, tx storage.Tx, actorID, billID string) (*models.User, *models.Bill, error) {
	actor, err := loadActor(ctx, tx, actorID)
	if err != nil {
		return nil, nil, err
	}
	bill, err := tx.GetBill(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	if err := scoped("bill", billID, bill.HouseholdID, actor); err != nil {
		return nil, nil, err
	}
	return actor, bill, nil
}
