package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/roommates/internal/auth"
	"github.com/mmynk/roommates/internal/engine"
	"github.com/mmynk/roommates/internal/metrics"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/storage"
)

// UserService manages accounts and sessions.
type UserService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewUserService creates a new account service.
func NewUserService(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, m *metrics.Metrics, logger *slog.Logger) *UserService {
	return &UserService{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		metrics:       m,
		logger:        orDefault(logger),
	}
}

// RegisterParams are the inputs for a new account.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is a user together with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates a new user account and signs it in.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*Session, error) {
	user := &models.User{
		Email:     engine.NormalizeEmail(p.Email),
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
	}
	if err := engine.ValidateUser(user); err != nil {
		return nil, err
	}

	if err := s.authenticator.Register(ctx, user, p.Password); err != nil {
		s.logger.Warn("Registration failed", "email", user.Email, "error", err)
		return nil, err
	}
	s.metrics.Mutation("user", "create")

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Login authenticates a user and returns a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = engine.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return session, nil
}

func (s *UserService) issue(user *models.User) (*Session, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// Me returns the acting user.
func (s *UserService) Me(ctx context.Context, actorID string) (*models.User, error) {
	return s.store.GetUser(ctx, actorID)
}

// UserPatch is a partial profile update. Nil fields are left alone.
type UserPatch struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Status    *string

	// HouseholdID joins the given household, or leaves the current one when
	// it points at "". Leaving removes the user from the old household's bills
	// and rotations and fails with ErrManagesBills while they manage a bill.
	HouseholdID *string
}

// UpdateUser applies a patch to the acting user's own account.
func (s *UserService) UpdateUser(ctx context.Context, actorID string, p UserPatch) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if user, err = tx.GetUser(ctx, actorID); err != nil {
			return err
		}

		if p.Email != nil {
			email := engine.NormalizeEmail(*p.Email)
			if email != user.Email {
				if _, err := tx.GetUserByEmail(ctx, email); err == nil {
					return auth.ErrEmailExists
				}
			}
			user.Email = email
		}
		if p.FirstName != nil {
			user.FirstName = strings.TrimSpace(*p.FirstName)
		}
		if p.LastName != nil {
			user.LastName = strings.TrimSpace(*p.LastName)
		}
		if p.Status != nil {
			user.Status = *p.Status
		}
		if p.Password != nil {
			if err := s.authenticator.SetCredential(user, *p.Password); err != nil {
				return err
			}
		}
		if p.HouseholdID != nil && *p.HouseholdID != "" {
			if _, err := tx.GetHousehold(ctx, *p.HouseholdID); err != nil {
				return err
			}
		}
		if p.HouseholdID != nil && *p.HouseholdID != user.HouseholdID {
			if user.HasHousehold() {
				if err := departHousehold(ctx, tx, user.ID, user.HouseholdID); err != nil {
					return err
				}
			}
			user.HouseholdID = *p.HouseholdID
		}

		if err := engine.ValidateUser(user); err != nil {
			return err
		}
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Mutation("user", "update")
	s.logger.Info("User updated", "user_id", user.ID, "household_id", user.HouseholdID)
	return user, nil
}

// DeleteUser removes the acting user's account along with their completion
// history, the bills they manage and the shares billed to them. Tasks they
// were responsible for become unassigned.
func (s *UserService) DeleteUser(ctx context.Context, actorID string) error {
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.DeleteUser(ctx, actorID)
	})
	if err != nil {
		return err
	}

	s.metrics.Mutation("user", "delete")
	s.logger.Info("User deleted", "user_id", actorID)
	return nil
}
