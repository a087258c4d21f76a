package rpc

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/middleware"
	"github.com/mmynk/roommates/internal/service"
)

// TaskHandler serves TaskService.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a handler backed by the task service.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) CreateTask(ctx context.Context, req *connect.Request[CreateTaskRequest]) (*connect.Response[TaskResponse], error) {
	due, err := parseDate("due_date", req.Msg.DueDate)
	if err != nil {
		return nil, err
	}

	task, err := h.tasks.CreateTask(ctx, middleware.GetUserID(ctx), engine.TaskParams{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		DueDate:     due,
		Frequency:   req.Msg.Frequency,
		CurrentID:   req.Msg.CurrentID,
		Rotation:    req.Msg.Rotation,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TaskResponse{Task: toTask(task)}), nil
}

// UpdateTask applies the set fields. "complete": true completes the task
// after the other fields change.
func (h *TaskHandler) UpdateTask(ctx context.Context, req *connect.Request[UpdateTaskRequest]) (*connect.Response[TaskResultResponse], error) {
	patch := engine.TaskPatch{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Frequency:   req.Msg.Frequency,
		CurrentID:   req.Msg.CurrentID,
		Complete:    req.Msg.Complete,
	}
	if req.Msg.DueDate != nil {
		due, err := parseDate("due_date", *req.Msg.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &due
	}

	result, err := h.tasks.UpdateTask(ctx, middleware.GetUserID(ctx), req.Msg.TaskID, patch)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toTaskResult(result)), nil
}

func (h *TaskHandler) CompleteTask(ctx context.Context, req *connect.Request[TaskRequest]) (*connect.Response[TaskResultResponse], error) {
	result, err := h.tasks.CompleteTask(ctx, middleware.GetUserID(ctx), req.Msg.TaskID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toTaskResult(result)), nil
}

func (h *TaskHandler) MarkTaskIncomplete(ctx context.Context, req *connect.Request[TaskRequest]) (*connect.Response[TaskResponse], error) {
	task, err := h.tasks.MarkTaskIncomplete(ctx, middleware.GetUserID(ctx), req.Msg.TaskID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TaskResponse{Task: toTask(task)}), nil
}

func (h *TaskHandler) DeleteTask(ctx context.Context, req *connect.Request[TaskRequest]) (*connect.Response[Empty], error) {
	if err := h.tasks.DeleteTask(ctx, middleware.GetUserID(ctx), req.Msg.TaskID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (h *TaskHandler) AddRotationMembers(ctx context.Context, req *connect.Request[RotationRequest]) (*connect.Response[RotationResponse], error) {
	task, n, err := h.tasks.AddRotationMembers(ctx, middleware.GetUserID(ctx), req.Msg.TaskID, req.Msg.UserIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RotationResponse{Task: toTask(task), Changed: n}), nil
}

func (h *TaskHandler) RemoveRotationMembers(ctx context.Context, req *connect.Request[RotationRequest]) (*connect.Response[RotationResponse], error) {
	task, n, err := h.tasks.RemoveRotationMembers(ctx, middleware.GetUserID(ctx), req.Msg.TaskID, req.Msg.UserIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RotationResponse{Task: toTask(task), Changed: n}), nil
}

func (h *TaskHandler) ListTasks(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListTasksResponse], error) {
	tasks, err := h.tasks.ListTasks(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListTasksResponse{Tasks: toTasks(tasks)}), nil
}

func (h *TaskHandler) ListCompletedTasks(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListCompletedTasksResponse], error) {
	records, err := h.tasks.ListCompletedTasks(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]*CompletedTask, len(records))
	for i, r := range records {
		out[i] = toCompletedTask(r)
	}
	return connect.NewResponse(&ListCompletedTasksResponse{Records: out}), nil
}
