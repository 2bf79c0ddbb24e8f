package service

import (
	"context"
	"fmt"
	"strings"

	"product-manager/internal/clock"
	"product-manager/internal/model"
	"product-manager/internal/repository"
	"product-manager/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CodePasswordMismatch marks a wrong password given to confirm account removal.
const CodePasswordMismatch = "password_mismatch"

// accountService implements AccountService.
type accountService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	passwords PasswordHasher
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	users repository.UserRepository,
	tokens TokenIssuer,
	passwords PasswordHasher,
	clk clock.Clock,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		clock:     clk,
		logger:    logger.With().Str("service", "account").Logger(),
	}
}

func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthenticationResponse, error) {
	if req == nil {
		return nil, model.NewArgumentError("registration request is required")
	}

	if err := validation.ValidateRegistration(*req); err != nil {
		s.logger.Debug().Err(err).Msg("registration rejected")
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil {
		return nil, model.NewConflictError("email %s is already registered", req.Email)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("failed to create account")
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("account registered")

	return s.authenticate(*user)
}

func (s *accountService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthenticationResponse, error) {
	if req == nil {
		return nil, model.NewArgumentError("login request is required")
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("no account for %s", req.Email)
	}

	ok, err := s.passwords.Check(user.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("stored password hash is unreadable")
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("email", user.Email).Msg("login with wrong password")
		return nil, model.NewUnauthorisedError("invalid email or password")
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")

	return s.authenticate(*user)
}

func (s *accountService) DeleteAccount(ctx context.Context, callerEmail string, req *model.DeleteAccountRequest) error {
	if req == nil {
		return model.NewArgumentError("delete account request is required")
	}

	if err := validation.ValidateStruct(req); err != nil {
		return err
	}

	if !strings.EqualFold(strings.TrimSpace(callerEmail), strings.TrimSpace(req.Email)) {
		return model.NewForbiddenError("cannot delete another manufacturer's account")
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil {
		return model.NewNotFoundError("no account for %s", req.Email)
	}

	ok, err := s.passwords.Check(user.PasswordHash, req.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.NewValidationError(model.Violation{
			Field:   "password",
			Code:    CodePasswordMismatch,
			Message: "password is incorrect",
		})
	}

	removed, err := s.users.Delete(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to delete account")
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if !removed {
		return model.NewNotFoundError("no account for %s", req.Email)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("account deleted")
	return nil
}

func (s *accountService) IsEmailInUse(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to look up account: %w", err)
	}
	return user != nil, nil
}

func (s *accountService) authenticate(user model.User) (*model.AuthenticationResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.AuthenticationResponse{
		Name:       user.Name,
		Email:      user.Email,
		Token:      token,
		Expiration: expiresAt,
	}, nil
}
