package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/domain"
	"github.com/itemvault-io/itemvault/internal/pkg/crypto"
	"github.com/itemvault-io/itemvault/internal/repository"
)

// UserService handles registration and credential verification.
type UserService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput contains the data needed to register a new user.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a new user account. Duplicate email or username is
// reported as domain.ErrUserAlreadyExists, detected by the store's own
// uniqueness constraints rather than a read-then-write pre-check, so two
// concurrent registrations of the same identity cannot both succeed.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Email, input.Username, passwordHash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return user, nil
}

// Authenticate verifies user credentials and returns the user.
//
// An unknown username and a wrong password both return
// domain.ErrInvalidCredentials so callers cannot enumerate usernames.
// Authenticate deliberately does not check IsActive: inactive-user
// rejection belongs to the request identity resolver, which refuses to
// resolve tokens for inactive accounts.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Error().Err(err).Msg("failed to look up user during authentication")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		// Log but don't expose whether the username exists
		s.logger.Debug().Str("username", username).Msg("user not found during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// SetActive sets the active status of a user. Deactivated users keep any
// outstanding tokens, but the identity resolver refuses to resolve them.
func (s *UserService) SetActive(ctx context.Context, userID int64, isActive bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.IsActive = isActive

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Bool("is_active", isActive).
		Msg("user active status updated")

	return nil
}

// ListUsersInput contains pagination options for listing users.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// List returns all users with pagination.
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*repository.ListResult[domain.User], error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	result, err := s.userRepo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return result, nil
}

// validateRegisterInput validates the input for registering a user.
func (s *UserService) validateRegisterInput(input RegisterInput) error {
	if len(input.Username) < 3 || len(input.Username) > 50 {
		return ErrInvalidUsername
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidEmail
	}
	if len(input.Password) < 6 || len(input.Password) > 100 {
		return ErrInvalidPassword
	}
	return nil
}
