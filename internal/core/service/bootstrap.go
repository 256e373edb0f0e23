package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cargolive/cargolive-api/internal/core/domain"
	"github.com/cargolive/cargolive-api/internal/core/ports"
	"github.com/cargolive/cargolive-api/internal/pkg/metrics"
)

const (
	DemoEmail    = "demo@cargolive.com"
	DemoPassword = "demo123"
	DemoFullName = "Demo User"

	bootstrapLockKey = "lock:bootstrap:demo-user"
	bootstrapLockTTL = 30 * time.Second
)

// Locker serialises the bootstrap across replicas sharing one database.
// Acquire returns acquired=false when another holder owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// DemoBootstrapper guarantees the demo account exists with a usable password.
type DemoBootstrapper struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	locker Locker
	log    zerolog.Logger
}

// NewDemoBootstrapper returns a bootstrapper. locker may be nil.
func NewDemoBootstrapper(repo ports.UserRepository, hasher ports.PasswordHasher, locker Locker, log zerolog.Logger) *DemoBootstrapper {
	return &DemoBootstrapper{repo: repo, hasher: hasher, locker: locker, log: log}
}

// Run is idempotent. It never returns an error: failures are logged and
// leave the demo account as it was.
func (b *DemoBootstrapper) Run(ctx context.Context) {
	if b.locker != nil {
		release, acquired, err := b.locker.Acquire(ctx, bootstrapLockKey, bootstrapLockTTL)
		switch {
		case err != nil:
			b.log.Warn().Err(err).Msg("bootstrap lock unavailable, continuing without it")
		case !acquired:
			metrics.BootstrapRunsTotal.WithLabelValues("skipped").Inc()
			b.log.Info().Msg("demo bootstrap already running elsewhere, skipping")
			return
		default:
			defer release()
		}
	}

	outcome, err := b.ensureDemoUser(ctx)
	if err != nil {
		metrics.BootstrapRunsTotal.WithLabelValues("failed").Inc()
		b.log.Error().Err(err).Str("email", DemoEmail).Msg("demo bootstrap failed")
		return
	}
	metrics.BootstrapRunsTotal.WithLabelValues(outcome).Inc()
	b.log.Info().Str("email", DemoEmail).Str("outcome", outcome).Msg("demo bootstrap finished")
}

func (b *DemoBootstrapper) ensureDemoUser(ctx context.Context) (string, error) {
	user, err := b.repo.FindByEmail(ctx, DemoEmail)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return b.create(ctx)
	case err != nil:
		return "", err
	case user.PasswordHash == domain.PlaceholderHash:
		hash, err := b.hasher.Hash(DemoPassword)
		if err != nil {
			return "", err
		}
		if err := b.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return "", err
		}
		return "repaired", nil
	default:
		return "noop", nil
	}
}

func (b *DemoBootstrapper) create(ctx context.Context) (string, error) {
	hash, err := b.hasher.Hash(DemoPassword)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	_, err = b.repo.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        DemoEmail,
		PasswordHash: hash,
		FullName:     DemoFullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrUserExists) {
		// another replica created it between our lookup and insert
		return "noop", nil
	}
	if err != nil {
		return "", err
	}
	return "created", nil
}
