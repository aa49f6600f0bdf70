package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

// ExportFormatVersion identifies the envelope layout.
const ExportFormatVersion uint32 = 1

// ErrIntegrity is returned when an import's payload does not match its
// integrity hash.
var ErrIntegrity = errors.New("session: integrity check failed")

// Export wraps a session in a transfer envelope with a SHA-256 hash over
// the canonical JSON serialization. Map keys serialize sorted, so the hash
// is deterministic for a given session value.
func (e *Engine) Export(s schemas.SessionData) (schemas.SessionExport, error) {
	hash, err := integrityHash(s)
	if err != nil {
		return schemas.SessionExport{}, err
	}

	e.log.Info("Session exported",
		zap.String("session_id", s.ID),
		zap.String("integrity_hash", hash),
	)
	return schemas.SessionExport{
		FormatVersion: ExportFormatVersion,
		ExportedAt:    time.Now().UTC(),
		IntegrityHash: hash,
		Session:       s,
	}, nil
}

// Import verifies an envelope and rebinds the session to a target identity.
// The session gets a fresh ID so an import can never collide with a live
// session.
func (e *Engine) Import(export schemas.SessionExport, targetIdentityID string) (schemas.SessionData, error) {
	if targetIdentityID == "" {
		return schemas.SessionData{}, fmt.Errorf("session: empty target identity")
	}
	if export.FormatVersion != ExportFormatVersion {
		return schemas.SessionData{}, fmt.Errorf("session: unsupported export format version %d", export.FormatVersion)
	}

	hash, err := integrityHash(export.Session)
	if err != nil {
		return schemas.SessionData{}, err
	}
	if hash != export.IntegrityHash {
		return schemas.SessionData{}, ErrIntegrity
	}

	imported := export.Session
	imported.ID = "session-" + uuid.NewString()
	imported.IdentityID = targetIdentityID
	imported.LastModified = time.Now().UTC()

	e.log.Info("Session imported",
		zap.String("session_id", imported.ID),
		zap.String("target_identity", targetIdentityID),
	)
	return imported, nil
}

func integrityHash(s schemas.SessionData) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("session: serialize for hashing: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
