package auth

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
	"renodevis/internal/core/tx"
	"renodevis/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service registers and authenticates users.
type Service struct {
	users      UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(users UserRepository, txManager tx.Manager, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		users:      users,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

const msgInvalidCredentials = "Email ou mot de passe incorrect"

// Register creates the account and logs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	email := NormalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperror.NewValidation("Email invalide").WithDetail("field", "email")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("Le mot de passe doit contenir au moins %d caractères", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(email, string(hash), req.Nom, s.now())
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.Exists(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return apperror.NewConflict("Un utilisateur avec cet email existe déjà").
				WithDetail("field", "email")
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	now := s.now()

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := user.CanLogin(now); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.users.Update(ctx, user); err != nil {
			logger.Warn(ctx, "record failed login", "user_id", user.ID, "error", err)
		}
		return nil, apperror.NewUnauthorized(msgInvalidCredentials)
	}

	user.RecordSuccessfulLogin(now)
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return s.issue(user)
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	raw := appctx.GetUserID(ctx)
	if raw == "" {
		return nil, apperror.NewUnauthorized("Authentification requise")
	}
	userID, err := id.Parse(raw)
	if err != nil {
		return nil, apperror.NewUnauthorized("Jeton invalide")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", raw)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(user *User) (*TokenResponse, error) {
	token, expiresAt, err := s.jwtService.GenerateAccessToken(user, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
