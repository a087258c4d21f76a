package auth

import (
	"context"

	"github.com/mmynk/roommates/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register stores a new account for user, whose profile fields are already
	// filled in, protected by credential.
	Register(ctx context.Context, user *models.User, credential string) error

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// SetCredential replaces the user's stored credential in memory. The
	// caller persists the user.
	SetCredential(user *models.User, credential string) error

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
