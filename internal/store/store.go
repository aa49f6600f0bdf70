// Package store provides PostgreSQL persistence for identities and session
// snapshots. Both are stored as jsonb records keyed by id, keeping the
// schema stable while the Go models evolve.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("store: not found")

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store is the PostgreSQL repository.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const upsertIdentitySQL = `
	INSERT INTO identities (id, status, record, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		record = EXCLUDED.record,
		updated_at = EXCLUDED.updated_at;
`

// SaveIdentity inserts or replaces an identity record.
func (s *Store) SaveIdentity(ctx context.Context, identity schemas.Identity) error {
	record, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity %s: %w", identity.ID, err)
	}
	if _, err := s.pool.Exec(ctx, upsertIdentitySQL, identity.ID, string(identity.Status), record, time.Now()); err != nil {
		return fmt.Errorf("failed to save identity %s: %w", identity.ID, err)
	}
	return nil
}

// GetIdentity loads one identity by id.
func (s *Store) GetIdentity(ctx context.Context, id string) (schemas.Identity, error) {
	var record []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM identities WHERE id = $1;`, id).Scan(&record)
	if errors.Is(err, pgx.ErrNoRows) {
		return schemas.Identity{}, fmt.Errorf("identity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return schemas.Identity{}, fmt.Errorf("failed to query identity %s: %w", id, err)
	}

	var identity schemas.Identity
	if err := json.Unmarshal(record, &identity); err != nil {
		return schemas.Identity{}, fmt.Errorf("failed to unmarshal identity %s: %w", id, err)
	}
	return identity, nil
}

// ListIdentities returns every stored identity, newest first.
func (s *Store) ListIdentities(ctx context.Context) ([]schemas.Identity, error) {
	rows, err := s.pool.Query(ctx, `SELECT record FROM identities ORDER BY updated_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []schemas.Identity
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan identity row: %w", err)
		}
		var identity schemas.Identity
		if err := json.Unmarshal(record, &identity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal identity record: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return identities, nil
}

// DeleteIdentity removes an identity and its session snapshot.
func (s *Store) DeleteIdentity(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE identity_id = $1;`, id); err != nil {
		return fmt.Errorf("failed to delete sessions for identity %s: %w", id, err)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("identity %s: %w", id, ErrNotFound)
	}
	s.log.Info("Identity deleted", zap.String("identity_id", id))
	return nil
}

const upsertSessionSQL = `
	INSERT INTO sessions (id, identity_id, record, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (identity_id) DO UPDATE SET
		id = EXCLUDED.id,
		record = EXCLUDED.record,
		updated_at = EXCLUDED.updated_at;
`

// PutSession stores an identity's session snapshot, replacing any previous
// one. One snapshot per identity.
func (s *Store) PutSession(ctx context.Context, session schemas.SessionData) error {
	record, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}
	if _, err := s.pool.Exec(ctx, upsertSessionSQL, session.ID, session.IdentityID, record, time.Now()); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession loads the session snapshot for an identity.
func (s *Store) GetSession(ctx context.Context, identityID string) (schemas.SessionData, error) {
	var record []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM sessions WHERE identity_id = $1;`, identityID).Scan(&record)
	if errors.Is(err, pgx.ErrNoRows) {
		return schemas.SessionData{}, fmt.Errorf("session for identity %s: %w", identityID, ErrNotFound)
	}
	if err != nil {
		return schemas.SessionData{}, fmt.Errorf("failed to query session for identity %s: %w", identityID, err)
	}

	var session schemas.SessionData
	if err := json.Unmarshal(record, &session); err != nil {
		return schemas.SessionData{}, fmt.Errorf("failed to unmarshal session for identity %s: %w", identityID, err)
	}
	return session, nil
}

// DeleteSession removes an identity's session snapshot. Deleting an absent
// snapshot is not an error.
func (s *Store) DeleteSession(ctx context.Context, identityID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE identity_id = $1;`, identityID); err != nil {
		return fmt.Errorf("failed to delete session for identity %s: %w", identityID, err)
	}
	return nil
}
