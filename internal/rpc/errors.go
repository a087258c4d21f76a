package rpc

import (
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/roommates/internal/auth"
	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/service"
	"github.com/mmynk/roommates/internal/storage"
)

var errInternal = errors.New("internal error")

// toConnectError maps domain errors to Connect codes. Errors without a known
// kind are reported as internal with a fixed message.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, engine.ErrCycleNotFound):
		return connect.NewError(connect.CodeNotFound, engine.ErrCycleNotFound)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, storage.ErrNotFound)

	case errors.Is(err, engine.ErrValidationFailed),
		errors.Is(err, engine.ErrInvalidFrequency),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, auth.ErrWeakPassword):
		return connect.NewError(connect.CodeInvalidArgument, err)

	case errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrNoParticipants),
		errors.Is(err, service.ErrNoHousehold),
		errors.Is(err, service.ErrManagesBills):
		return connect.NewError(connect.CodeFailedPrecondition, err)

	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, auth.ErrEmailExists)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	slog.Error("Unhandled error", "error", err)
	return connect.NewError(connect.CodeInternal, errInternal)
}

func invalidArgument(field string, err error) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", field, err))
}
