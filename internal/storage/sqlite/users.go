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

const userColumns = `id, email, first_name, last_name, status, password_hash, household_id, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var householdID sql.NullString
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Status,
		&user.PasswordHash,
		&householdID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.HouseholdID = householdID.String
	return user, nil
}

// CreateUser inserts a new user into the database.
func (t *sqliteTx) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Status,
		user.PasswordHash,
		nullable(user.HouseholdID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser overwrites every mutable field of the user.
func (t *sqliteTx) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().Unix()
	res, err := t.q.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, first_name = ?, last_name = ?, status = ?, password_hash = ?, household_id = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.FirstName, user.LastName, user.Status, user.PasswordHash,
		nullable(user.HouseholdID), user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectRow(res, "user", user.ID)
}

// DeleteUser removes a user. Foreign keys cascade to the user's history,
// managed bills and cycles, and clear task assignments.
func (t *sqliteTx) DeleteUser(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectRow(res, "user", id)
}

// GetUser retrieves a user by their ID.
func (s queries) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ListHouseholdUsers retrieves the members of a household.
func (s queries) ListHouseholdUsers(ctx context.Context, householdID string) ([]*models.User, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE household_id = ? ORDER BY first_name, last_name, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list household users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
