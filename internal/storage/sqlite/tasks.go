package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/roommates/internal/frequency"
	"github.com/mmynk/roommates/internal/models"
)

const taskColumns = `id, household_id, name, description, due_date, frequency, complete, current_id`

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{}
	var dueDate, freq string
	var currentID sql.NullString
	if err := row.Scan(
		&task.ID, &task.HouseholdID, &task.Name, &task.Description,
		&dueDate, &freq, &task.Complete, &currentID,
	); err != nil {
		return nil, err
	}

	var err error
	if task.DueDate, err = parseDate(dueDate); err != nil {
		return nil, err
	}
	if task.Frequency, err = frequency.Parse(freq); err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	task.CurrentID = currentID.String
	return task, nil
}

// CreateTask persists a new task with its rotation.
func (t *sqliteTx) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.HouseholdID, task.Name, task.Description,
		formatDate(task.DueDate), task.Frequency.String(), task.Complete, nullable(task.CurrentID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return t.writeRotation(ctx, task)
}

// UpdateTask overwrites the task's fields and rotation order.
func (t *sqliteTx) UpdateTask(ctx context.Context, task *models.Task) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE tasks
		 SET name = ?, description = ?, due_date = ?, frequency = ?, complete = ?, current_id = ?
		 WHERE id = ?`,
		task.Name, task.Description, formatDate(task.DueDate), task.Frequency.String(),
		task.Complete, nullable(task.CurrentID), task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if err := expectRow(res, "task", task.ID); err != nil {
		return err
	}

	if _, err := t.q.ExecContext(ctx, "DELETE FROM task_rotation WHERE task_id = ?", task.ID); err != nil {
		return fmt.Errorf("failed to clear rotation: %w", err)
	}
	return t.writeRotation(ctx, task)
}

func (t *sqliteTx) writeRotation(ctx context.Context, task *models.Task) error {
	for i, userID := range task.Rotation {
		_, err := t.q.ExecContext(ctx,
			"INSERT INTO task_rotation (task_id, user_id, position) VALUES (?, ?, ?)",
			task.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rotation member: %w", err)
		}
	}
	return nil
}

// DeleteTask removes a task. Its completion history is kept.
func (t *sqliteTx) DeleteTask(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectRow(res, "task", id)
}

// CreateCompletedTask appends to the completion log.
func (t *sqliteTx) CreateCompletedTask(ctx context.Context, record *models.CompletedTask) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO completed_tasks (id, household_id, name, roommate_id, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.HouseholdID, record.Name, record.RoommateID,
		formatDate(record.Date), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert completed task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID, including its rotation.
func (s queries) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := scanTask(s.q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if err := s.loadRotations(ctx, []*models.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks retrieves a household's tasks, pending first, then by due date.
func (s queries) ListTasks(ctx context.Context, householdID string) ([]*models.Task, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE household_id = ? ORDER BY complete, due_date, name, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	rows.Close()

	if err := s.loadRotations(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// loadRotations fills in the rotation of each task in one query.
func (s queries) loadRotations(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[string]*models.Task, len(tasks))
	args := make([]any, len(tasks))
	for i, task := range tasks {
		byID[task.ID] = task
		args[i] = task.ID
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT task_id, user_id FROM task_rotation
		 WHERE task_id IN (`+placeholders(len(args))+`)
		 ORDER BY task_id, position`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get rotation: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, userID string
		if err := rows.Scan(&taskID, &userID); err != nil {
			return fmt.Errorf("failed to scan rotation member: %w", err)
		}
		task := byID[taskID]
		task.Rotation = append(task.Rotation, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rotation: %w", err)
	}
	return nil
}

// ListCompletedTasks retrieves the completion log, oldest first.
func (s queries) ListCompletedTasks(ctx context.Context, householdID string) ([]*models.CompletedTask, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, household_id, name, roommate_id, date FROM completed_tasks
		 WHERE household_id = ? ORDER BY date, created_at`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	defer rows.Close()

	var records []*models.CompletedTask
	for rows.Next() {
		record := &models.CompletedTask{}
		var date string
		if err := rows.Scan(&record.ID, &record.HouseholdID, &record.Name, &record.RoommateID, &date); err != nil {
			return nil, fmt.Errorf("failed to scan completed task: %w", err)
		}
		if record.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completed tasks: %w", err)
	}
	return records, nil
}
