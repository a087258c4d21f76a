// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/roommates/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// Reader defines the read operations shared by the store and its transactions.
type Reader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListHouseholdUsers returns members ordered by first then last name.
	ListHouseholdUsers(ctx context.Context, householdID string) ([]*models.User, error)

	GetHousehold(ctx context.Context, id string) (*models.Household, error)

	GetTask(ctx context.Context, id string) (*models.Task, error)
	// ListTasks returns pending tasks before complete ones, each by due date.
	ListTasks(ctx context.Context, householdID string) ([]*models.Task, error)
	// ListCompletedTasks returns the completion log oldest first.
	ListCompletedTasks(ctx context.Context, householdID string) ([]*models.CompletedTask, error)

	GetBill(ctx context.Context, id string) (*models.Bill, error)
	// ListBills returns bills by due date.
	ListBills(ctx context.Context, householdID string) ([]*models.Bill, error)
	// ListBillCycles returns every cycle of a bill, newest period first.
	ListBillCycles(ctx context.Context, billID string) ([]models.BillCycle, error)
	// ListOpenCycles returns the cycles of every active bill's current period.
	ListOpenCycles(ctx context.Context, householdID string) ([]models.BillCycle, error)
	// ListPaidCycles returns paid cycles across a household, most recently paid first.
	ListPaidCycles(ctx context.Context, householdID string) ([]models.BillCycle, error)
}

// Tx is a unit of work. Everything written through a Tx commits or rolls back
// together.
type Tx interface {
	Reader

	// Create* methods assign ID (and timestamps) when unset.
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser cascades to the user's history, managed bills and cycles and
	// drops the user from rotations and participant sets.
	DeleteUser(ctx context.Context, id string) error

	CreateHousehold(ctx context.Context, household *models.Household) error
	UpdateHousehold(ctx context.Context, household *models.Household) error
	// DeleteHousehold cascades to tasks, bills, cycles and history and
	// detaches the household's users.
	DeleteHousehold(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task *models.Task) error
	// UpdateTask writes all fields, including the full rotation order.
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	CreateCompletedTask(ctx context.Context, record *models.CompletedTask) error

	CreateBill(ctx context.Context, bill *models.Bill) error
	// UpdateBill writes all fields, including the participant set.
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, id string) error
	CreateBillCycles(ctx context.Context, cycles []models.BillCycle) error
	UpdateBillCycle(ctx context.Context, cycle *models.BillCycle) error
}

// Store defines the interface for household storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	Reader

	// WithTx runs fn in a transaction that serializes with other writers.
	// It commits when fn returns nil and rolls back otherwise, returning fn's
	// error unchanged.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}
