package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestTaskService_RotationCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Alice", "Bob", "Carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	task, err := f.tasks.CreateTask(ctx, bob, engine.TaskParams{
		Name: "Trash", DueDate: date(2024, 3, 10), Frequency: "W1", Rotation: []string{alice, bob, carol},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.CurrentID != alice {
		t.Fatalf("current = %s, want first rotation member", task.CurrentID)
	}

	wantCurrent := []string{bob, carol, alice}
	wantDue := []time.Time{date(2024, 3, 17), date(2024, 3, 24), date(2024, 3, 31)}
	credited := []string{alice, bob, carol}
	for i := range wantCurrent {
		res, err := f.tasks.CompleteTask(ctx, bob, task.ID)
		if err != nil {
			t.Fatalf("CompleteTask #%d failed: %v", i+1, err)
		}
		if res.Archived || res.Task.Complete {
			t.Errorf("#%d: recurring task archived or left complete", i+1)
		}
		if res.Record.RoommateID != credited[i] || !res.Record.Date.Equal(today) {
			t.Errorf("#%d: record = %+v", i+1, res.Record)
		}
		if res.Task.CurrentID != wantCurrent[i] || !res.Task.DueDate.Equal(wantDue[i]) {
			t.Errorf("#%d: current %s due %s", i+1, res.Task.CurrentID, res.Task.DueDate)
		}
	}

	stored, err := f.store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.CurrentID != alice || !stored.DueDate.Equal(date(2024, 3, 31)) {
		t.Errorf("stored task = %+v", stored)
	}

	history, err := f.tasks.ListCompletedTasks(ctx, carol)
	if err != nil || len(history) != 3 {
		t.Fatalf("history = %d records, %v", len(history), err)
	}

	expected := `
# HELP roommates_task_completions_total Task completions by outcome (advanced or archived).
# TYPE roommates_task_completions_total counter
roommates_task_completions_total{outcome="advanced"} 3
`
	if err := testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "roommates_task_completions_total"); err != nil {
		t.Error(err)
	}
}

func TestTaskService_OneShotArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Alice")

	task, err := f.tasks.CreateTask(ctx, ids[0], engine.TaskParams{
		Name: "Clean oven", DueDate: today, Frequency: "X1",
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.tasks.CompleteTask(ctx, ids[0], task.ID)
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if !res.Archived || res.Record.RoommateID != ids[0] {
		t.Errorf("result = %+v, record %+v", res, res.Record)
	}
	if _, err := f.store.GetTask(ctx, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("one-shot task still stored: %v", err)
	}
	history, _ := f.tasks.ListCompletedTasks(ctx, ids[0])
	if len(history) != 1 || history[0].Name != "Clean oven" {
		t.Errorf("history = %+v", history)
	}
}

func TestTaskService_UpdateCompletesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Alice", "Bob", "Carol")

	task, err := f.tasks.CreateTask(ctx, ids[0], engine.TaskParams{
		Name: "Dishes", DueDate: date(2024, 3, 14), Frequency: "D2", Rotation: ids,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.tasks.UpdateTask(ctx, ids[0], task.ID, engine.TaskPatch{
		Name:        ptr("Dishes and counters"),
		Description: ptr("wipe the stove too"),
		Complete:    ptr(true),
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if res.Record == nil || res.Record.Name != "Dishes and counters" {
		t.Fatalf("record = %+v", res.Record)
	}
	if res.Task.CurrentID != ids[1] || !res.Task.DueDate.Equal(date(2024, 3, 16)) {
		t.Errorf("advanced to %s due %s, want one step", res.Task.CurrentID, res.Task.DueDate)
	}

	t.Run("reassign resets complete", func(t *testing.T) {
		res, err := f.tasks.UpdateTask(ctx, ids[0], task.ID, engine.TaskPatch{CurrentID: ptr(ids[2])})
		if err != nil {
			t.Fatal(err)
		}
		if res.Record != nil || res.Task.CurrentID != ids[2] || res.Task.Complete {
			t.Errorf("result = %+v", res.Task)
		}
	})

	t.Run("mark incomplete", func(t *testing.T) {
		got, err := f.tasks.MarkTaskIncomplete(ctx, ids[1], task.ID)
		if err != nil || got.Complete {
			t.Errorf("MarkTaskIncomplete = %+v, %v", got, err)
		}
	})

	t.Run("invalid patch leaves task untouched", func(t *testing.T) {
		_, err := f.tasks.UpdateTask(ctx, ids[0], task.ID, engine.TaskPatch{
			Frequency: ptr("Q1"), Complete: ptr(true),
		})
		if !errors.Is(err, engine.ErrInvalidFrequency) {
			t.Fatalf("expected ErrInvalidFrequency, got %v", err)
		}
		stored, _ := f.store.GetTask(ctx, task.ID)
		if stored.Frequency.String() != "D2" || stored.CurrentID != ids[2] {
			t.Errorf("stored task changed: %+v", stored)
		}
	})
}

func TestTaskService_Membership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, ids := f.house(t, "Alice", "Bob")
	_, others := f.house(t, "Mallory")

	task, err := f.tasks.CreateTask(ctx, ids[0], engine.TaskParams{
		Name: "Vacuum", DueDate: today, Frequency: "W2", Rotation: []string{ids[0]},
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("rotation outside household", func(t *testing.T) {
		_, err := f.tasks.CreateTask(ctx, ids[0], engine.TaskParams{
			Name: "Mop", DueDate: today, Frequency: "W1", Rotation: []string{others[0]},
		})
		if !errors.Is(err, ErrNotMember) {
			t.Errorf("expected ErrNotMember, got %v", err)
		}
		if _, _, err := f.tasks.AddRotationMembers(ctx, ids[0], task.ID, []string{others[0]}); !errors.Is(err, ErrNotMember) {
			t.Errorf("AddRotationMembers: expected ErrNotMember, got %v", err)
		}
	})

	t.Run("other household sees nothing", func(t *testing.T) {
		if _, err := f.tasks.CompleteTask(ctx, others[0], task.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := f.tasks.DeleteTask(ctx, others[0], task.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("add and remove rotation members", func(t *testing.T) {
		got, added, err := f.tasks.AddRotationMembers(ctx, ids[1], task.ID, []string{ids[1], ids[0], ids[1]})
		if err != nil || added != 1 || len(got.Rotation) != 2 {
			t.Fatalf("AddRotationMembers = %v, %d, %v", got, added, err)
		}
		got, removed, err := f.tasks.RemoveRotationMembers(ctx, ids[1], task.ID, []string{ids[0], others[0]})
		if err != nil || removed != 1 || got.Rotation[0] != ids[1] {
			t.Fatalf("RemoveRotationMembers = %v, %d, %v", got, removed, err)
		}
		// The removed assignee keeps the task until it is done.
		if got.CurrentID != ids[0] {
			t.Errorf("current = %s", got.CurrentID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := f.tasks.DeleteTask(ctx, ids[0], task.ID); err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}
		tasks, _ := f.tasks.ListTasks(ctx, ids[0])
		if len(tasks) != 0 {
			t.Errorf("tasks = %d", len(tasks))
		}
	})
}

func TestTaskService_NoHousehold(t *testing.T) {
	f := newFixture(t)
	loner := f.user(t, "Loner", "")
	_, err := f.tasks.CreateTask(context.Background(), loner, engine.TaskParams{
		Name: "Sweep", DueDate: today, Frequency: "D1",
	})
	if !errors.Is(err, ErrNoHousehold) {
		t.Errorf("expected ErrNoHousehold, got %v", err)
	}
}
