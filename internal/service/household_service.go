package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/metrics"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/storage"
)

// HouseholdService manages households and their membership.
type HouseholdService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHouseholdService creates a new HouseholdService with the given storage backend.
func NewHouseholdService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *HouseholdService {
	return &HouseholdService{store: store, metrics: m, logger: orDefault(logger)}
}

// CreateHousehold creates a household and moves the actor into it, leaving
// any household they belonged to.
func (s *HouseholdService) CreateHousehold(ctx context.Context, actorID, name string) (*models.Household, error) {
	household := &models.Household{Name: strings.TrimSpace(name)}
	if err := engine.ValidateHousehold(household); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, err := tx.GetUser(ctx, actorID)
		if err != nil {
			return err
		}
		if actor.HasHousehold() {
			if err := departHousehold(ctx, tx, actor.ID, actor.HouseholdID); err != nil {
				return err
			}
		}
		if err := tx.CreateHousehold(ctx, household); err != nil {
			return err
		}
		actor.HouseholdID = household.ID
		return tx.UpdateUser(ctx, actor)
	})
	if err != nil {
		s.logger.Error("CreateHousehold failed", "actor_id", actorID, "error", err)
		return nil, err
	}

	s.metrics.Mutation("household", "create")
	s.logger.Info("Household created", "household_id", household.ID, "actor_id", actorID)
	return household, nil
}

// UpdateHousehold renames the actor's household.
func (s *HouseholdService) UpdateHousehold(ctx context.Context, actorID, name string) (*models.Household, error) {
	var household *models.Household
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if household, err = tx.GetHousehold(ctx, actor.HouseholdID); err != nil {
			return err
		}
		household.Name = strings.TrimSpace(name)
		if err := engine.ValidateHousehold(household); err != nil {
			return err
		}
		return tx.UpdateHousehold(ctx, household)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Mutation("household", "update")
	s.logger.Info("Household updated", "household_id", household.ID, "actor_id", actorID)
	return household, nil
}

// DeleteHousehold removes the actor's household with its tasks, bills and
// history. Members are detached, not deleted.
func (s *HouseholdService) DeleteHousehold(ctx context.Context, actorID, householdID string) error {
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		if err := scoped("household", householdID, householdID, actor); err != nil {
			return err
		}
		return tx.DeleteHousehold(ctx, householdID)
	})
	if err != nil {
		return err
	}

	s.metrics.Mutation("household", "delete")
	s.logger.Info("Household deleted", "household_id", householdID, "actor_id", actorID)
	return nil
}

// Homepage is the actor's view of their household.
type Homepage struct {
	Household *models.Household

	// Members lists the actor first, then the other roommates by name.
	Members []*models.User
}

// Homepage returns the actor's household and its members.
func (s *HouseholdService) Homepage(ctx context.Context, actorID string) (*Homepage, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	household, err := s.store.GetHousehold(ctx, actor.HouseholdID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListHouseholdUsers(ctx, actor.HouseholdID)
	if err != nil {
		return nil, err
	}

	members := make([]*models.User, 0, len(users))
	members = append(members, actor)
	for _, u := range users {
		if u.ID != actor.ID {
			members = append(members, u)
		}
	}
	return &Homepage{Household: household, Members: members}, nil
}
