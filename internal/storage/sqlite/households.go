package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/roommates/internal/models"
)

// CreateHousehold persists a new household.
func (t *sqliteTx) CreateHousehold(ctx context.Context, household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if household.CreatedAt == 0 {
		household.CreatedAt = time.Now().Unix()
	}

	_, err := t.q.ExecContext(ctx,
		"INSERT INTO households (id, name, created_at) VALUES (?, ?, ?)",
		household.ID, household.Name, household.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

// UpdateHousehold renames a household.
func (t *sqliteTx) UpdateHousehold(ctx context.Context, household *models.Household) error {
	res, err := t.q.ExecContext(ctx,
		"UPDATE households SET name = ? WHERE id = ?",
		household.Name, household.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update household: %w", err)
	}
	return expectRow(res, "household", household.ID)
}

// DeleteHousehold removes a household; foreign keys cascade to its tasks,
// bills and history and detach its members.
func (t *sqliteTx) DeleteHousehold(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, "DELETE FROM households WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	return expectRow(res, "household", id)
}

// GetHousehold retrieves a household by ID.
func (s queries) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	household := &models.Household{}
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM households WHERE id = ?", id,
	).Scan(&household.ID, &household.Name, &household.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("household", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return household, nil
}
