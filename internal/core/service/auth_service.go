package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cargolive/cargolive-api/internal/core/domain"
	"github.com/cargolive/cargolive-api/internal/core/ports"
	"github.com/cargolive/cargolive-api/internal/pkg/metrics"
)

// AuthService implements registration, login and token authentication.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.AuthResult, error) {
	email := NormalizeEmail(in.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash := domain.GoogleAuthHash
	if !in.IsGoogleAccount {
		var err error
		if hash, err = s.hasher.Hash(in.Password); err != nil {
			return nil, fmt.Errorf("register: hash password: %w", err)
		}
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		ID:              uuid.NewString(),
		Email:           email,
		PasswordHash:    hash,
		FullName:        in.FullName,
		IsGoogleAccount: in.IsGoogleAccount,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return result, nil
}

// Login verifies credentials. An unknown email and a wrong password both
// yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_email").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !user.IsGoogleAccount {
		if !s.hasher.Verify(password, user.PasswordHash) {
			metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		s.upgradeHash(ctx, user, password)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// upgradeHash replaces a legacy or outdated hash after a successful login.
// Failures are logged; the login itself is not affected.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.repo.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return
	}
	s.log.Info().Str("user_id", user.ID).Msg("password hash upgraded")
}

func (s *AuthService) Lookup(ctx context.Context, userID string) (*domain.User, bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup: %w", err)
	}
	return user.Public(), true, nil
}

// Authenticate resolves a bearer token to its user. Every token or
// missing-user failure is reported as domain.ErrUnauthorized wrapping the
// underlying reason; storage failures are returned as-is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	user, ok, err := s.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrUserNotFound)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthResult, error) {
	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.AuthResult{User: user.Public(), Token: tok}, nil
}

var _ ports.AuthService = (*AuthService)(nil)
