// Package service runs household operations as transactions: it loads
// entities, applies the engine's rules and persists the outcome atomically.
//
// Every call takes the acting user's ID explicitly. Entities outside the
// actor's household are reported as not found.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/storage"
)

var (
	// ErrNoHousehold is returned when the actor has not joined a household.
	ErrNoHousehold = errors.New("user does not belong to a household")

	// ErrNotMember is returned when a task or bill would reference a user
	// outside its household.
	ErrNotMember = errors.New("user is not a member of the household")

	// ErrManagesBills is returned when a user who still manages bills tries to
	// leave their household. The bills must be handed to another member first.
	ErrManagesBills = errors.New("user still manages bills in the household")
)

// loadActor returns the acting user, who must belong to a household.
func loadActor(ctx context.Context, r storage.Reader, actorID string) (*models.User, error) {
	actor, err := r.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasHousehold() {
		return nil, ErrNoHousehold
	}
	return actor, nil
}

// requireMembers checks that every non-empty ID belongs to the household.
func requireMembers(ctx context.Context, r storage.Reader, householdID string, userIDs ...string) error {
	users, err := r.ListHouseholdUsers(ctx, householdID)
	if err != nil {
		return err
	}
	members := make(map[string]bool, len(users))
	for _, u := range users {
		members[u.ID] = true
	}
	for _, id := range userIDs {
		if id != "" && !members[id] {
			return fmt.Errorf("%w: %s", ErrNotMember, id)
		}
	}
	return nil
}

// departHousehold drops userID from every bill and rotation of the household
// they are leaving. Tasks assigned to them pass to the next rotation member.
// Unpaid shares of the open period stay on record so they can still be settled.
func departHousehold(ctx context.Context, tx storage.Tx, userID, householdID string) error {
	bills, err := tx.ListBills(ctx, householdID)
	if err != nil {
		return err
	}
	for _, b := range bills {
		if b.ManagerID == userID {
			return fmt.Errorf("%w: bill %s", ErrManagesBills, b.ID)
		}
		if engine.RemoveParticipants(b, []string{userID}) == 0 {
			continue
		}
		if err := tx.UpdateBill(ctx, b); err != nil {
			return err
		}
	}

	tasks, err := tx.ListTasks(ctx, householdID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		changed := false
		if t.CurrentID == userID {
			next, _ := t.Rotation.Advance(userID)
			if next == userID {
				next = ""
			}
			t.CurrentID = next
			changed = true
		}
		if engine.RemoveRotationMembers(t, []string{userID}) > 0 {
			changed = true
		}
		if !changed {
			continue
		}
		if err := tx.UpdateTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// scoped hides entities of other households.
func scoped(kind, id, householdID string, actor *models.User) error {
	if householdID != actor.HouseholdID {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
