package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBillService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Manager", "Alice", "Bob")
	manager, alice, bob := ids[0], ids[1], ids[2]

	bill, err := f.bills.CreateBill(ctx, manager, engine.BillParams{
		Name: "Rent", TotalBalance: dec("100.00"), DueDate: date(2024, 1, 31), Frequency: "M1",
		Participants: []string{alice, bob, manager},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.ManagerID != manager || bill.NumSplit() != 3 || bill.IsActive {
		t.Fatalf("bill = %+v", bill)
	}

	t.Run("activate splits rounding up", func(t *testing.T) {
		got, cycles, err := f.bills.ActivateBill(ctx, alice, bill.ID)
		if err != nil {
			t.Fatalf("ActivateBill failed: %v", err)
		}
		if !got.IsActive || got.Period != 1 || len(cycles) != 2 {
			t.Fatalf("activated %+v with %d cycles", got, len(cycles))
		}
		for _, c := range cycles {
			if !c.Amount.Equal(dec("33.34")) || c.IsPaid {
				t.Errorf("cycle = %+v", c)
			}
		}
		if _, _, err := f.bills.ActivateBill(ctx, alice, bill.ID); !errors.Is(err, engine.ErrInvalidTransition) {
			t.Errorf("second activation: %v", err)
		}
	})

	t.Run("pay is idempotent", func(t *testing.T) {
		c, err := f.bills.PayCycle(ctx, alice, bill.ID, "")
		if err != nil {
			t.Fatalf("PayCycle failed: %v", err)
		}
		if !c.IsPaid || c.RecipientID != alice || !c.DatePaid.Equal(today) {
			t.Fatalf("cycle = %+v", c)
		}
		again, err := f.bills.PayCycle(ctx, manager, bill.ID, alice)
		if err != nil || !again.DatePaid.Equal(today) {
			t.Errorf("second payment = %+v, %v", again, err)
		}
		if _, err := f.bills.PayCycle(ctx, manager, bill.ID, ""); !errors.Is(err, engine.ErrCycleNotFound) {
			t.Errorf("manager has no share: %v", err)
		}

		expected := `
# HELP roommates_bill_payments_total Bill shares marked paid.
# TYPE roommates_bill_payments_total counter
roommates_bill_payments_total 1
`
		if err := testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "roommates_bill_payments_total"); err != nil {
			t.Error(err)
		}
	})

	t.Run("balances", func(t *testing.T) {
		sheet, err := f.bills.Balances(ctx, bob)
		if err != nil {
			t.Fatalf("Balances failed: %v", err)
		}
		if len(sheet.Debts) != 1 {
			t.Fatalf("debts = %+v", sheet.Debts)
		}
		d := sheet.Debts[0]
		if d.From != bob || d.To != manager || !d.Amount.Equal(dec("33.34")) {
			t.Errorf("debt = %+v", d)
		}
	})

	t.Run("deactivate moves to next period", func(t *testing.T) {
		got, archived, err := f.bills.DeactivateBill(ctx, manager, bill.ID)
		if err != nil || archived {
			t.Fatalf("DeactivateBill = %v, %v", archived, err)
		}
		if got.IsActive || !got.TotalBalance.IsZero() || !got.DueDate.Equal(date(2024, 2, 29)) {
			t.Errorf("bill = %+v", got)
		}
		if _, err := f.bills.PayCycle(ctx, bob, bill.ID, ""); !errors.Is(err, engine.ErrCycleNotFound) {
			t.Errorf("paying a closed period: %v", err)
		}
		sheet, _ := f.bills.Balances(ctx, bob)
		if len(sheet.Debts) != 0 {
			t.Errorf("closed period still owed: %+v", sheet.Debts)
		}
	})

	t.Run("next period gets fresh cycles", func(t *testing.T) {
		if _, err := f.bills.UpdateBill(ctx, manager, bill.ID, engine.BillPatch{TotalBalance: ptr(dec("60"))}); err != nil {
			t.Fatal(err)
		}
		got, cycles, err := f.bills.ActivateBill(ctx, manager, bill.ID)
		if err != nil {
			t.Fatalf("ActivateBill failed: %v", err)
		}
		if got.Period != 2 || !cycles[0].Amount.Equal(dec("20")) {
			t.Errorf("period %d share %s", got.Period, cycles[0].Amount)
		}
		c, err := f.bills.PayCycle(ctx, alice, bill.ID, "")
		if err != nil || c.Period != 2 {
			t.Errorf("paid %+v, %v", c, err)
		}

		all, err := f.bills.ListBillCycles(ctx, bob, bill.ID)
		if err != nil || len(all) != 4 || all[0].Period != 2 {
			t.Errorf("cycles = %+v, %v", all, err)
		}
		paid, _ := f.bills.ListPaidCycles(ctx, bob)
		if len(paid) != 2 {
			t.Errorf("paid cycles = %d", len(paid))
		}
	})
}

func TestBillService_OneShotArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Manager", "Alice")

	bill, err := f.bills.CreateBill(ctx, ids[0], engine.BillParams{
		Name: "Couch", TotalBalance: dec("300"), DueDate: today, Frequency: "X1", Participants: []string{ids[1]},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.bills.ActivateBill(ctx, ids[0], bill.ID); err != nil {
		t.Fatal(err)
	}

	got, archived, err := f.bills.DeactivateBill(ctx, ids[0], bill.ID)
	if err != nil || !archived {
		t.Fatalf("DeactivateBill = %v, %v", archived, err)
	}
	if got.ID != bill.ID || !got.TotalBalance.Equal(dec("300")) {
		t.Errorf("snapshot = %+v", got)
	}
	if _, err := f.store.GetBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("archived bill still stored: %v", err)
	}
}

func TestBillService_Participants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Manager", "Alice", "Bob")
	_, others := f.house(t, "Mallory")

	bill, err := f.bills.CreateBill(ctx, ids[0], engine.BillParams{
		Name: "Power", TotalBalance: dec("45.50"), DueDate: today, Frequency: "M1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := f.bills.ActivateBill(ctx, ids[0], bill.ID); !errors.Is(err, engine.ErrNoParticipants) {
		t.Errorf("activating unshared bill: %v", err)
	}

	got, added, err := f.bills.AddParticipants(ctx, ids[0], bill.ID, []string{ids[0], ids[1], ids[2], ids[1]})
	if err != nil || added != 2 || got.NumSplit() != 3 {
		t.Fatalf("AddParticipants = %+v, %d, %v", got, added, err)
	}

	if _, _, err := f.bills.AddParticipants(ctx, ids[0], bill.ID, []string{others[0]}); !errors.Is(err, ErrNotMember) {
		t.Errorf("outsider: expected ErrNotMember, got %v", err)
	}

	got, removed, err := f.bills.RemoveParticipants(ctx, ids[0], bill.ID, []string{ids[2], others[0]})
	if err != nil || removed != 1 || got.NumSplit() != 2 {
		t.Fatalf("RemoveParticipants = %+v, %d, %v", got, removed, err)
	}

	t.Run("new manager stops being billed", func(t *testing.T) {
		got, err := f.bills.UpdateBill(ctx, ids[0], bill.ID, engine.BillPatch{ManagerID: ptr(ids[1])})
		if err != nil {
			t.Fatal(err)
		}
		if got.ManagerID != ids[1] || got.HasParticipant(ids[1]) {
			t.Errorf("bill = %+v", got)
		}
	})

	t.Run("invalid balance", func(t *testing.T) {
		_, err := f.bills.UpdateBill(ctx, ids[0], bill.ID, engine.BillPatch{TotalBalance: ptr(dec("10.005"))})
		if !errors.Is(err, engine.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("outsiders see nothing", func(t *testing.T) {
		if _, err := f.bills.ListBillCycles(ctx, others[0], bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := f.bills.DeleteBill(ctx, others[0], bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := f.bills.DeleteBill(ctx, ids[1], bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		bills, _ := f.bills.ListBills(ctx, ids[0])
		if len(bills) != 0 {
			t.Errorf("bills = %d", len(bills))
		}
	})
}
