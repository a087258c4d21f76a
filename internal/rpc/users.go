package rpc

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roommates/internal/middleware"
	"github.com/mmynk/roommates/internal/service"
)

// UserHandler serves AuthService and UserService.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a handler backed by the account service.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register creates a new user account.
func (h *UserHandler) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[SessionResponse], error) {
	session, err := h.users.Register(ctx, service.RegisterParams{
		Email:     req.Msg.Email,
		Password:  req.Msg.Password,
		FirstName: req.Msg.FirstName,
		LastName:  req.Msg.LastName,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{User: toUser(session.User), Token: session.Token}), nil
}

// Login authenticates a user and returns a JWT token.
func (h *UserHandler) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[SessionResponse], error) {
	session, err := h.users.Login(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{User: toUser(session.User), Token: session.Token}), nil
}

// Me returns the authenticated user.
func (h *UserHandler) Me(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[UserResponse], error) {
	user, err := h.users.Me(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

// UpdateUser patches the caller's own profile.
func (h *UserHandler) UpdateUser(ctx context.Context, req *connect.Request[UpdateUserRequest]) (*connect.Response[UserResponse], error) {
	user, err := h.users.UpdateUser(ctx, middleware.GetUserID(ctx), service.UserPatch{
		Email:       req.Msg.Email,
		Password:    req.Msg.Password,
		FirstName:   req.Msg.FirstName,
		LastName:    req.Msg.LastName,
		Status:      req.Msg.Status,
		HouseholdID: req.Msg.HouseholdID,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

// DeleteUser removes the caller's account.
func (h *UserHandler) DeleteUser(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	if err := h.users.DeleteUser(ctx, middleware.GetUserID(ctx)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}
