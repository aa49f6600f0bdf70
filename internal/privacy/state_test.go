package privacy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(newTestEngine(t), zap.NewNop())
}

func TestStateDefaultsToStandard(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, schemas.OpsecStandard, s.Level())
	assert.True(t, s.Settings().AutoAdjust)
}

func TestAutoAdjustEscalates(t *testing.T) {
	s := newTestState(t)

	// facebook.com scores 70, recommending Maximum from Standard.
	settings, escalated, err := s.AutoAdjust("facebook.com")
	require.NoError(t, err)
	assert.True(t, escalated)
	assert.Equal(t, schemas.OpsecMaximum, settings.OpsecLevel)
	assert.Equal(t, schemas.OpsecMaximum, s.Level())
}

func TestAutoAdjustNeverDowngrades(t *testing.T) {
	s := newTestState(t)

	// Escalate first via a government domain (score 60, Enhanced).
	_, escalated, err := s.AutoAdjust("fbi.gov")
	require.NoError(t, err)
	require.True(t, escalated)
	require.Equal(t, schemas.OpsecEnhanced, s.Level())

	// A trusted domain recommends Minimal; the level must hold.
	settings, escalated, err := s.AutoAdjust("shodan.io")
	require.NoError(t, err)
	assert.False(t, escalated)
	assert.Equal(t, schemas.OpsecEnhanced, settings.OpsecLevel)
	assert.Equal(t, schemas.OpsecEnhanced, s.Level())
}

func TestAutoAdjustRespectsToggle(t *testing.T) {
	s := newTestState(t)
	s.SetAutoAdjust(false)

	_, escalated, err := s.AutoAdjust("facebook.com")
	require.NoError(t, err)
	assert.False(t, escalated)
	assert.Equal(t, schemas.OpsecStandard, s.Level())
}

func TestAutoAdjustEqualLevelNoOp(t *testing.T) {
	s := newTestState(t)
	s.SetLevel(schemas.OpsecEnhanced)

	// fbi.gov recommends exactly Enhanced; equal is not an escalation.
	_, escalated, err := s.AutoAdjust("fbi.gov")
	require.NoError(t, err)
	assert.False(t, escalated)
	assert.Equal(t, schemas.OpsecEnhanced, s.Level())
}

func TestAutoAdjustConcurrent(t *testing.T) {
	s := newTestState(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AutoAdjust("facebook.com")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, schemas.OpsecMaximum, s.Level())
	// Only the first winner of the write lock escalates.
	assert.Equal(t, uint64(1), s.Stats().AutoEscalations)
}

func TestSetLevelCanDowngrade(t *testing.T) {
	s := newTestState(t)
	s.SetLevel(schemas.OpsecParanoid)
	require.Equal(t, schemas.OpsecParanoid, s.Level())

	settings := s.SetLevel(schemas.OpsecMinimal)
	assert.Equal(t, schemas.OpsecMinimal, settings.OpsecLevel)
	assert.Equal(t, schemas.OpsecMinimal, s.Level())
}

func TestAssessUpdatesStatsAndCache(t *testing.T) {
	s := newTestState(t)

	_, err := s.Assess("shodan.io")
	require.NoError(t, err)
	_, err = s.Assess("facebook.com")
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, uint64(2), stats.SitesAssessed)
	assert.Equal(t, uint64(1), stats.HighRiskSitesVisited)

	cached, ok := s.CachedAssessment("facebook.com")
	require.True(t, ok)
	assert.Equal(t, schemas.RiskSocialMedia, cached.Category)

	_, ok = s.CachedAssessment("never-visited.example")
	assert.False(t, ok)

	assert.Len(t, s.CachedAssessments(), 2)
}

func TestAssessSupersedesCacheEntry(t *testing.T) {
	s := newTestState(t)

	first, err := s.Assess("facebook.com")
	require.NoError(t, err)
	second, err := s.Assess("facebook.com")
	require.NoError(t, err)

	cached, ok := s.CachedAssessment("facebook.com")
	require.True(t, ok)
	assert.Equal(t, second.AssessedAt, cached.AssessedAt)
	assert.False(t, cached.AssessedAt.Before(first.AssessedAt))
	assert.Len(t, s.CachedAssessments(), 1)
}

func TestResetStats(t *testing.T) {
	s := newTestState(t)

	_, err := s.Assess("facebook.com")
	require.NoError(t, err)
	s.RecordBlockedTracker()
	s.RecordBlockedFingerprint()

	stats := s.Stats()
	require.Equal(t, uint64(1), stats.TrackersBlocked)
	require.Equal(t, uint64(1), stats.FingerprintAttemptsBlocked)

	s.ResetStats()
	assert.Equal(t, schemas.PrivacyStats{}, s.Stats())
	assert.Empty(t, s.CachedAssessments())
}
