package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/metrics"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/storage"
)

// TaskService manages chores and their rotation.
type TaskService struct {
	store   storage.Store
	clock   engine.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store storage.Store, clock engine.Clock, m *metrics.Metrics, logger *slog.Logger) *TaskService {
	return &TaskService{store: store, clock: clock, metrics: m, logger: orDefault(logger)}
}

// TaskResult is the state of a task after a write.
type TaskResult struct {
	Task *models.Task

	// Record is the history entry written when the call completed the task.
	Record *models.CompletedTask

	// Archived is set when a one-shot task was completed and removed. Task
	// then holds its final snapshot.
	Archived bool
}

// CreateTask adds a task to the actor's household.
func (s *TaskService) CreateTask(ctx context.Context, actorID string, p engine.TaskParams) (*models.Task, error) {
	var task *models.Task
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		p.HouseholdID = actor.HouseholdID

		if task, err = engine.NewTask(p); err != nil {
			return err
		}
		if err := requireMembers(ctx, tx, actor.HouseholdID, append(task.Rotation.Clone(), task.CurrentID)...); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		s.logger.Error("CreateTask failed", "actor_id", actorID, "error", err)
		return nil, err
	}

	s.metrics.Mutation("task", "create")
	s.logger.Info("Task created", "task_id", task.ID, "household_id", task.HouseholdID, "actor_id", actorID)
	return task, nil
}

// UpdateTask applies a partial update. Setting Complete to true completes the
// task after the other fields change, advancing the rotation once.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID string, p engine.TaskPatch) (*TaskResult, error) {
	var result *TaskResult
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, task, err := s.load(ctx, tx, actorID, taskID)
		if err != nil {
			return err
		}
		if p.CurrentID != nil {
			if err := requireMembers(ctx, tx, actor.HouseholdID, *p.CurrentID); err != nil {
				return err
			}
		}

		c, err := engine.ApplyTaskPatch(task, p, actorID, engine.Today(s.clock))
		if err != nil {
			return err
		}
		result, err = s.persist(ctx, tx, task, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observe("update", result)
	s.logger.Info("Task updated", "task_id", taskID, "actor_id", actorID, "completed", result.Record != nil)
	return result, nil
}

// CompleteTask logs a completion and moves the task on: one-shot tasks are
// removed, recurring ones get their next due date and assignee.
func (s *TaskService) CompleteTask(ctx context.Context, actorID, taskID string) (*TaskResult, error) {
	var result *TaskResult
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		_, task, err := s.load(ctx, tx, actorID, taskID)
		if err != nil {
			return err
		}
		c, err := engine.CompleteTask(task, actorID, engine.Today(s.clock))
		if err != nil {
			return err
		}
		result, err = s.persist(ctx, tx, task, c)
		return err
	})
	if err != nil {
		s.logger.Error("CompleteTask failed", "task_id", taskID, "actor_id", actorID, "error", err)
		return nil, err
	}

	s.observe("complete", result)
	s.logger.Info("Task completed",
		"task_id", taskID,
		"roommate_id", result.Record.RoommateID,
		"archived", result.Archived,
		"next_due", models.FormatDate(result.Task.DueDate),
	)
	return result, nil
}

// MarkTaskIncomplete clears the complete flag.
func (s *TaskService) MarkTaskIncomplete(ctx context.Context, actorID, taskID string) (*models.Task, error) {
	var task *models.Task
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if _, task, err = s.load(ctx, tx, actorID, taskID); err != nil {
			return err
		}
		engine.MarkIncomplete(task)
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Mutation("task", "incomplete")
	return task, nil
}

// DeleteTask removes a task. Its completion history is kept.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID string) error {
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, _, err := s.load(ctx, tx, actorID, taskID); err != nil {
			return err
		}
		return tx.DeleteTask(ctx, taskID)
	})
	if err != nil {
		return err
	}

	s.metrics.Mutation("task", "delete")
	s.logger.Info("Task deleted", "task_id", taskID, "actor_id", actorID)
	return nil
}

// AddRotationMembers appends household members to the rotation and returns
// how many were new.
func (s *TaskService) AddRotationMembers(ctx context.Context, actorID, taskID string, userIDs []string) (*models.Task, int, error) {
	var task *models.Task
	var added int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		actor, t, err := s.load(ctx, tx, actorID, taskID)
		if err != nil {
			return err
		}
		if err := requireMembers(ctx, tx, actor.HouseholdID, userIDs...); err != nil {
			return err
		}
		task = t
		if added = engine.AddRotationMembers(task, userIDs); added == 0 {
			return nil
		}
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, 0, err
	}

	if added > 0 {
		s.metrics.Mutation("task", "rotation_add")
	}
	s.logger.Info("Rotation members added", "task_id", taskID, "added", added)
	return task, added, nil
}

// RemoveRotationMembers drops users from the rotation and returns how many
// were members.
func (s *TaskService) RemoveRotationMembers(ctx context.Context, actorID, taskID string, userIDs []string) (*models.Task, int, error) {
	var task *models.Task
	var removed int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if _, task, err = s.load(ctx, tx, actorID, taskID); err != nil {
			return err
		}
		if removed = engine.RemoveRotationMembers(task, userIDs); removed == 0 {
			return nil
		}
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, 0, err
	}

	if removed > 0 {
		s.metrics.Mutation("task", "rotation_remove")
	}
	s.logger.Info("Rotation members removed", "task_id", taskID, "removed", removed)
	return task, removed, nil
}

// ListTasks returns the household's tasks, pending first, then by due date.
func (s *TaskService) ListTasks(ctx context.Context, actorID string) ([]*models.Task, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, actor.HouseholdID)
}

// ListCompletedTasks returns the household's completion log, oldest first.
func (s *TaskService) ListCompletedTasks(ctx context.Context, actorID string) ([]*models.CompletedTask, error) {
	actor, err := loadActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListCompletedTasks(ctx, actor.HouseholdID)
}

func (s *TaskService) load(ctx context.Context, tx storage.Tx, actorID, taskID string) (*models.User, *models.Task, error) {
	actor, err := loadActor(ctx, tx, actorID)
	if err != nil {
		return nil, nil, err
	}
	task, err := tx.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if err := scoped("task", taskID, task.HouseholdID, actor); err != nil {
		return nil, nil, err
	}
	return actor, task, nil
}

// persist writes a task and, when c is set, its completion.
func (s *TaskService) persist(ctx context.Context, tx storage.Tx, task *models.Task, c *engine.Completion) (*TaskResult, error) {
	result := &TaskResult{Task: task}
	if c == nil {
		return result, tx.UpdateTask(ctx, task)
	}

	record := c.Record
	if err := tx.CreateCompletedTask(ctx, &record); err != nil {
		return nil, err
	}
	result.Record = &record
	result.Archived = c.Archived

	if c.Archived {
		return result, tx.DeleteTask(ctx, task.ID)
	}
	return result, tx.UpdateTask(ctx, task)
}

func (s *TaskService) observe(action string, r *TaskResult) {
	s.metrics.Mutation("task", action)
	if r.Record != nil {
		s.metrics.TaskCompleted(r.Archived)
	}
}
