package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/fingerprint"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing().WillReturnError(nil)
	s, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)
	return s, mockPool
}

func testIdentity() schemas.Identity {
	return schemas.Identity{
		ID:          "ident-1",
		Name:        "Atlas",
		Fingerprint: fingerprint.Generate(),
		Status:      schemas.IdentityActive,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestSaveIdentity(t *testing.T) {
	s, mockPool := newMockStore(t)
	identity := testIdentity()

	record, err := json.Marshal(identity)
	require.NoError(t, err)

	mockPool.ExpectExec(regexp.QuoteMeta(upsertIdentitySQL)).
		WithArgs(identity.ID, string(identity.Status), record, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveIdentity(context.Background(), identity))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("should round-trip a stored record", func(t *testing.T) {
		s, mockPool := newMockStore(t)
		identity := testIdentity()
		record, err := json.Marshal(identity)
		require.NoError(t, err)

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT record FROM identities WHERE id = $1;`)).
			WithArgs(identity.ID).
			WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(record))

		got, err := s.GetIdentity(ctx, identity.ID)
		require.NoError(t, err)
		assert.Equal(t, identity.Name, got.Name)
		assert.Equal(t, identity.Fingerprint.ID, got.Fingerprint.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should map no rows to ErrNotFound", func(t *testing.T) {
		s, mockPool := newMockStore(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT record FROM identities WHERE id = $1;`)).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{"record"}))

		_, err := s.GetIdentity(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestListIdentities(t *testing.T) {
	s, mockPool := newMockStore(t)

	first := testIdentity()
	second := testIdentity()
	second.ID = "ident-2"
	second.Name = "Borealis"

	firstRec, err := json.Marshal(first)
	require.NoError(t, err)
	secondRec, err := json.Marshal(second)
	require.NoError(t, err)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT record FROM identities ORDER BY updated_at DESC;`)).
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(firstRec).AddRow(secondRec))

	got, err := s.ListIdentities(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Atlas", got[0].Name)
	assert.Equal(t, "Borealis", got[1].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestDeleteIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("should delete identity and its session", func(t *testing.T) {
		s, mockPool := newMockStore(t)

		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE identity_id = $1;`)).
			WithArgs("ident-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM identities WHERE id = $1;`)).
			WithArgs("ident-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, s.DeleteIdentity(ctx, "ident-1"))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should report missing identity", func(t *testing.T) {
		s, mockPool := newMockStore(t)

		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE identity_id = $1;`)).
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM identities WHERE id = $1;`)).
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := s.DeleteIdentity(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPutAndGetSession(t *testing.T) {
	s, mockPool := newMockStore(t)
	ctx := context.Background()

	session := schemas.SessionData{
		ID:         "session-1",
		IdentityID: "ident-1",
		Version:    1,
	}
	record, err := json.Marshal(session)
	require.NoError(t, err)

	mockPool.ExpectExec(regexp.QuoteMeta(upsertSessionSQL)).
		WithArgs(session.ID, session.IdentityID, record, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.PutSession(ctx, session))

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT record FROM sessions WHERE identity_id = $1;`)).
		WithArgs("ident-1").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(record))

	got, err := s.GetSession(ctx, "ident-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetSessionNotFound(t *testing.T) {
	s, mockPool := newMockStore(t)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT record FROM sessions WHERE identity_id = $1;`)).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"record"}))

	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestDeleteSessionAbsentIsNoError(t *testing.T) {
	s, mockPool := newMockStore(t)

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE identity_id = $1;`)).
		WithArgs("ident-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, s.DeleteSession(context.Background(), "ident-1"))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
