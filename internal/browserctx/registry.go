package browserctx

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

// Registry tracks the live contexts by identity. Create is idempotent per
// identity so repeated activation of the same identity reuses one profile.
type Registry struct {
	mu       sync.Mutex
	baseDir  string
	contexts map[string]*Context
	log      *zap.Logger
}

// NewRegistry builds a registry rooted at baseDir.
func NewRegistry(baseDir string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		baseDir:  baseDir,
		contexts: make(map[string]*Context),
		log:      logger.Named("browserctx"),
	}
}

// Create returns the context for an identity, building the profile tree on
// first use. The fingerprint argument only applies on first creation; an
// existing context keeps the fingerprint it was created with.
func (r *Registry) Create(identityID string, fp schemas.Fingerprint) (*Context, error) {
	if identityID == "" {
		return nil, fmt.Errorf("browserctx: empty identity id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.contexts[identityID]; ok {
		existing.Touch()
		return existing, nil
	}

	ctx := New(identityID, r.baseDir, fp)
	if err := ctx.EnsureDirectories(); err != nil {
		return nil, err
	}
	r.contexts[identityID] = ctx

	r.log.Info("Browser context created",
		zap.String("identity_id", identityID),
		zap.String("data_dir", ctx.DataDir),
	)
	return ctx, nil
}

// Get looks up the live context for an identity.
func (r *Registry) Get(identityID string) (*Context, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, ok := r.contexts[identityID]
	return ctx, ok
}

// List returns every live context.
func (r *Registry) List() []*Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Context, 0, len(r.contexts))
	for _, ctx := range r.contexts {
		out = append(out, ctx)
	}
	return out
}

// Remove drops a context from the registry. With purge set it also deletes
// the profile data from disk.
func (r *Registry) Remove(identityID string, purge bool) error {
	r.mu.Lock()
	ctx, ok := r.contexts[identityID]
	delete(r.contexts, identityID)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if purge {
		if err := os.RemoveAll(ctx.DataDir); err != nil {
			return fmt.Errorf("browserctx: purge %s: %w", ctx.DataDir, err)
		}
		r.log.Info("Browser context purged", zap.String("identity_id", identityID))
	}
	return nil
}
