// Package identity manages browsing personas. Every identity owns one
// fingerprint and one isolated browser context; destroying an identity
// purges both.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/browserctx"
	"github.com/obscuraops/multipass/internal/fingerprint"
)

// PrimeID is the fixed id of the original identity. Prime always exists and
// can never be destroyed.
const PrimeID = "prime"

// ErrPrimeImmutable is returned on attempts to destroy the Prime identity.
var ErrPrimeImmutable = errors.New("identity: the Prime identity cannot be destroyed")

// ErrDestroyed is returned when an operation targets a destroyed identity.
var ErrDestroyed = errors.New("identity: identity is destroyed")

// Repository is the persistence surface the manager needs. *store.Store
// satisfies it.
type Repository interface {
	SaveIdentity(ctx context.Context, identity schemas.Identity) error
	GetIdentity(ctx context.Context, id string) (schemas.Identity, error)
	ListIdentities(ctx context.Context) ([]schemas.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, identityID string) error
}

// Manager orchestrates the identity lifecycle.
type Manager struct {
	repo     Repository
	contexts *browserctx.Registry
	log      *zap.Logger
}

// NewManager builds an identity manager.
func NewManager(repo Repository, contexts *browserctx.Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:     repo,
		contexts: contexts,
		log:      logger.Named("identity"),
	}
}

// EnsurePrime creates the Prime identity if it does not exist yet and
// returns it. Safe to call on every startup.
func (m *Manager) EnsurePrime(ctx context.Context) (schemas.Identity, error) {
	existing, err := m.repo.GetIdentity(ctx, PrimeID)
	if err == nil {
		return existing, nil
	}

	now := time.Now().UTC()
	prime := schemas.Identity{
		ID:          PrimeID,
		Name:        "Prime",
		Description: "The original identity",
		Fingerprint: fingerprint.Generate(),
		Status:      schemas.IdentityActive,
		CreatedAt:   now,
		LastUsed:    now,
	}
	if err := m.repo.SaveIdentity(ctx, prime); err != nil {
		return schemas.Identity{}, fmt.Errorf("identity: create prime: %w", err)
	}
	if _, err := m.contexts.Create(prime.ID, prime.Fingerprint); err != nil {
		return schemas.Identity{}, err
	}

	m.log.Info("Prime identity created", zap.String("fingerprint_id", prime.Fingerprint.ID))
	return prime, nil
}

// Create spawns a new identity with a freshly generated fingerprint and an
// isolated browser context.
func (m *Manager) Create(ctx context.Context, name, description string, proxy *schemas.ProxyConfig) (schemas.Identity, error) {
	if name == "" {
		return schemas.Identity{}, fmt.Errorf("identity: empty name")
	}

	now := time.Now().UTC()
	identity := schemas.Identity{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Fingerprint: fingerprint.Generate(),
		Status:      schemas.IdentityActive,
		Proxy:       proxy,
		CreatedAt:   now,
		LastUsed:    now,
	}

	if err := m.repo.SaveIdentity(ctx, identity); err != nil {
		return schemas.Identity{}, fmt.Errorf("identity: save %s: %w", identity.ID, err)
	}
	if _, err := m.contexts.Create(identity.ID, identity.Fingerprint); err != nil {
		return schemas.Identity{}, err
	}

	m.log.Info("Identity created",
		zap.String("identity_id", identity.ID),
		zap.String("name", name),
		zap.String("fingerprint_id", identity.Fingerprint.ID),
	)
	return identity, nil
}

// Get loads one identity.
func (m *Manager) Get(ctx context.Context, id string) (schemas.Identity, error) {
	return m.repo.GetIdentity(ctx, id)
}

// List returns all stored identities.
func (m *Manager) List(ctx context.Context) ([]schemas.Identity, error) {
	return m.repo.ListIdentities(ctx)
}

// Activate marks an identity as in use and ensures its browser context
// exists. Destroyed identities cannot be activated.
func (m *Manager) Activate(ctx context.Context, id string) (schemas.Identity, error) {
	identity, err := m.repo.GetIdentity(ctx, id)
	if err != nil {
		return schemas.Identity{}, err
	}
	if identity.IsDestroyed() {
		return schemas.Identity{}, fmt.Errorf("identity %s: %w", id, ErrDestroyed)
	}

	identity.Status = schemas.IdentityActive
	identity.LastUsed = time.Now().UTC()
	if err := m.repo.SaveIdentity(ctx, identity); err != nil {
		return schemas.Identity{}, fmt.Errorf("identity: activate %s: %w", id, err)
	}
	if _, err := m.contexts.Create(identity.ID, identity.Fingerprint); err != nil {
		return schemas.Identity{}, err
	}
	return identity, nil
}

// RotateFingerprint replaces an identity's fingerprint and wipes its browser
// context so the old fingerprint leaves no residue.
func (m *Manager) RotateFingerprint(ctx context.Context, id string) (schemas.Identity, error) {
	identity, err := m.repo.GetIdentity(ctx, id)
	if err != nil {
		return schemas.Identity{}, err
	}
	if identity.IsDestroyed() {
		return schemas.Identity{}, fmt.Errorf("identity %s: %w", id, ErrDestroyed)
	}

	old := identity.Fingerprint.ID
	identity.Fingerprint = fingerprint.Generate()
	if err := m.repo.SaveIdentity(ctx, identity); err != nil {
		return schemas.Identity{}, fmt.Errorf("identity: rotate %s: %w", id, err)
	}

	if bc, ok := m.contexts.Get(id); ok {
		if err := bc.ClearAllData(); err != nil {
			return schemas.Identity{}, err
		}
		bc.Fingerprint = identity.Fingerprint
	}

	m.log.Info("Fingerprint rotated",
		zap.String("identity_id", id),
		zap.String("old_fingerprint", old),
		zap.String("new_fingerprint", identity.Fingerprint.ID),
	)
	return identity, nil
}

// Destroy irreversibly retires an identity: its browser context is purged
// from disk, its session snapshot is deleted and its record is removed. The
// Prime identity is refused.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == PrimeID {
		return ErrPrimeImmutable
	}

	if _, err := m.repo.GetIdentity(ctx, id); err != nil {
		return err
	}
	if err := m.contexts.Remove(id, true); err != nil {
		return err
	}
	if err := m.repo.DeleteSession(ctx, id); err != nil {
		return err
	}
	if err := m.repo.DeleteIdentity(ctx, id); err != nil {
		return err
	}

	m.log.Info("Identity destroyed", zap.String("identity_id", id))
	return nil
}
