package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roommates/internal/frequency"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/rotation"
	"github.com/mmynk/roommates/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seed creates a household with the given members and returns their IDs.
func seed(t *testing.T, store *SQLiteStore, names ...string) (string, []string) {
	t.Helper()
	ctx := context.Background()
	household := &models.Household{Name: "Maple Street"}
	var ids []string
	err := store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.CreateHousehold(ctx, household); err != nil {
			return err
		}
		for _, name := range names {
			u := &models.User{
				Email:        name + "@example.com",
				FirstName:    name,
				LastName:     "Test",
				PasswordHash: "x",
				HouseholdID:  household.ID,
			}
			if err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
			ids = append(ids, u.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return household.ID, ids
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	householdID, ids := seed(t, store, "Carol", "Alice", "Bob")

	t.Run("GetUser and GetUserByEmail", func(t *testing.T) {
		u, err := store.GetUser(ctx, ids[1])
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if u.FirstName != "Alice" || u.HouseholdID != householdID || u.CreatedAt == 0 {
			t.Errorf("user = %+v", u)
		}

		byEmail, err := store.GetUserByEmail(ctx, "Alice@example.com")
		if err != nil || byEmail.ID != u.ID {
			t.Errorf("GetUserByEmail = %+v, %v", byEmail, err)
		}
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		if _, err := store.GetUser(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListHouseholdUsers orders by name", func(t *testing.T) {
		users, err := store.ListHouseholdUsers(ctx, householdID)
		if err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, u := range users {
			names = append(names, u.FirstName)
		}
		if !slices.Equal(names, []string{"Alice", "Bob", "Carol"}) {
			t.Errorf("names = %v", names)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			return tx.CreateUser(ctx, &models.User{Email: "Alice@example.com", FirstName: "A", LastName: "B", PasswordHash: "x"})
		})
		if err == nil {
			t.Error("expected unique constraint error")
		}
	})
}

func TestSQLiteStore_TaskRoundTripAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	householdID, ids := seed(t, store, "Alice", "Bob", "Carol")

	later := &models.Task{
		Name: "Trash", DueDate: date(2024, 3, 10), Frequency: frequency.MustParse("W1"),
		HouseholdID: householdID, CurrentID: ids[2], Rotation: rotation.Ring{ids[2], ids[0], ids[1]},
	}
	sooner := &models.Task{
		Name: "Dishes", DueDate: date(2024, 3, 1), Frequency: frequency.MustParse("D1"),
		HouseholdID: householdID,
	}
	done := &models.Task{
		Name: "Oven", DueDate: date(2024, 1, 1), Frequency: frequency.MustParse("X1"),
		HouseholdID: householdID, Complete: true,
	}

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		for _, task := range []*models.Task{later, sooner, done} {
			if err := tx.CreateTask(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := store.GetTask(ctx, later.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !slices.Equal(got.Rotation, later.Rotation) {
		t.Errorf("rotation = %v, want %v", got.Rotation, later.Rotation)
	}
	if got.CurrentID != ids[2] || !got.DueDate.Equal(later.DueDate) || got.Frequency != later.Frequency {
		t.Errorf("task = %+v", got)
	}

	tasks, err := store.ListTasks(ctx, householdID)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	if !slices.Equal(names, []string{"Dishes", "Trash", "Oven"}) {
		t.Errorf("order = %v, want pending by due date then complete", names)
	}

	// Reordering the rotation survives an update.
	got.Rotation = rotation.Ring{ids[1], ids[2]}
	if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.UpdateTask(ctx, got) }); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	reloaded, _ := store.GetTask(ctx, later.ID)
	if !slices.Equal(reloaded.Rotation, rotation.Ring{ids[1], ids[2]}) {
		t.Errorf("rotation after update = %v", reloaded.Rotation)
	}
}

func TestSQLiteStore_RollbackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	householdID, ids := seed(t, store, "Alice")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx storage.Tx) error {
		task := &models.Task{Name: "Sweep", DueDate: date(2024, 1, 1), Frequency: frequency.MustParse("D1"), HouseholdID: householdID}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		if err := tx.CreateCompletedTask(ctx, &models.CompletedTask{
			Name: "Sweep", RoommateID: ids[0], Date: date(2024, 1, 1), HouseholdID: householdID,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	tasks, _ := store.ListTasks(ctx, householdID)
	history, _ := store.ListCompletedTasks(ctx, householdID)
	if len(tasks) != 0 || len(history) != 0 {
		t.Errorf("rolled back writes are visible: %d tasks, %d records", len(tasks), len(history))
	}
}

func TestSQLiteStore_BillsAndCycles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	householdID, ids := seed(t, store, "Manager", "Alice", "Bob")

	bill := &models.Bill{
		Name: "Rent", TotalBalance: decimal.RequireFromString("100.00"), DueDate: date(2024, 1, 1),
		Frequency: frequency.MustParse("M1"), ManagerID: ids[0], Participants: []string{ids[2], ids[1]},
		HouseholdID: householdID, IsActive: true, Period: 1,
	}
	paidOn := date(2024, 1, 5)
	cycles := []models.BillCycle{
		{Period: 1, RecipientID: ids[2], Amount: decimal.RequireFromString("33.34")},
		{Period: 1, RecipientID: ids[1], Amount: decimal.RequireFromString("33.34"), IsPaid: true, DatePaid: &paidOn},
	}

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.CreateBill(ctx, bill); err != nil {
			return err
		}
		for i := range cycles {
			cycles[i].BillID = bill.ID
		}
		return tx.CreateBillCycles(ctx, cycles)
	})
	if err != nil {
		t.Fatalf("create bill failed: %v", err)
	}

	got, err := store.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if !got.TotalBalance.Equal(bill.TotalBalance) || !slices.Equal(got.Participants, bill.Participants) {
		t.Errorf("bill = %+v", got)
	}
	if got.NumSplit() != 3 || !got.IsActive || got.Period != 1 {
		t.Errorf("bill state = split %d active %v period %d", got.NumSplit(), got.IsActive, got.Period)
	}

	open, err := store.ListOpenCycles(ctx, householdID)
	if err != nil || len(open) != 2 {
		t.Fatalf("ListOpenCycles = %d, %v", len(open), err)
	}
	if !open[0].Amount.Equal(decimal.RequireFromString("33.34")) {
		t.Errorf("amount = %s", open[0].Amount)
	}

	paid, err := store.ListPaidCycles(ctx, householdID)
	if err != nil || len(paid) != 1 || paid[0].RecipientID != ids[1] || !paid[0].DatePaid.Equal(paidOn) {
		t.Fatalf("ListPaidCycles = %+v, %v", paid, err)
	}

	// Closing the period hides its cycles from the open list but keeps them.
	got.IsActive = false
	if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.UpdateBill(ctx, got) }); err != nil {
		t.Fatal(err)
	}
	open, _ = store.ListOpenCycles(ctx, householdID)
	all, _ := store.ListBillCycles(ctx, bill.ID)
	if len(open) != 0 || len(all) != 2 {
		t.Errorf("open = %d, all = %d", len(open), len(all))
	}
}

func TestSQLiteStore_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	householdID, ids := seed(t, store, "Manager", "Alice")

	task := &models.Task{
		Name: "Trash", DueDate: date(2024, 1, 1), Frequency: frequency.MustParse("W1"),
		HouseholdID: householdID, CurrentID: ids[1], Rotation: rotation.Ring{ids[0], ids[1]},
	}
	bill := &models.Bill{
		Name: "Power", TotalBalance: decimal.RequireFromString("40"), DueDate: date(2024, 1, 1),
		Frequency: frequency.MustParse("M1"), ManagerID: ids[0], Participants: []string{ids[1]},
		HouseholdID: householdID,
	}
	err := store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		if err := tx.CreateCompletedTask(ctx, &models.CompletedTask{Name: "Trash", RoommateID: ids[1], Date: date(2024, 1, 1), HouseholdID: householdID}); err != nil {
			return err
		}
		return tx.CreateBill(ctx, bill)
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("deleting a user clears assignments", func(t *testing.T) {
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.DeleteUser(ctx, ids[1]) }); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		got, err := store.GetTask(ctx, task.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.CurrentID != "" || !slices.Equal(got.Rotation, rotation.Ring{ids[0]}) {
			t.Errorf("task after delete = current %q rotation %v", got.CurrentID, got.Rotation)
		}
		b, _ := store.GetBill(ctx, bill.ID)
		if len(b.Participants) != 0 || b.NumSplit() != 1 {
			t.Errorf("participants after delete = %v", b.Participants)
		}
		history, _ := store.ListCompletedTasks(ctx, householdID)
		if len(history) != 0 {
			t.Errorf("history of deleted user kept: %d", len(history))
		}
	})

	t.Run("deleting the household cascades", func(t *testing.T) {
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.DeleteHousehold(ctx, householdID) }); err != nil {
			t.Fatalf("DeleteHousehold failed: %v", err)
		}
		if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("task survived household delete: %v", err)
		}
		if _, err := store.GetBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("bill survived household delete: %v", err)
		}
		u, err := store.GetUser(ctx, ids[0])
		if err != nil || u.HasHousehold() {
			t.Errorf("member after household delete = %+v, %v", u, err)
		}
	})

	t.Run("deleting twice is ErrNotFound", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.DeleteHousehold(ctx, householdID) })
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
