package privacy

import (
	"sync"

	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

// State is the process-wide protection register: the active level and its
// derived toggle set, running stats, and a per-domain cache of recent
// assessments. Reads vastly outnumber writes (status polling), so it is
// guarded by a reader-writer lock.
type State struct {
	mu          sync.RWMutex
	engine      *Engine
	settings    schemas.PrivacySettings
	stats       schemas.PrivacyStats
	assessments map[string]schemas.RiskAssessment
	log         *zap.Logger
}

// NewState builds the register with the Standard default posture.
func NewState(engine *Engine, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		engine:      engine,
		settings:    SettingsForLevel(schemas.OpsecStandard),
		assessments: make(map[string]schemas.RiskAssessment),
		log:         logger.Named("privacy_state"),
	}
}

// Settings returns a copy of the active toggle set.
func (s *State) Settings() schemas.PrivacySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Level returns the active protection level.
func (s *State) Level() schemas.OpsecLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.OpsecLevel
}

// SetLevel is the explicit operator action. Unlike auto-adjust it may move
// the level in either direction.
func (s *State) SetLevel(level schemas.OpsecLevel) schemas.PrivacySettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.settings.OpsecLevel
	s.settings = SettingsForLevel(level)
	s.log.Info("Protection level set by operator",
		zap.String("from", previous.String()),
		zap.String("to", level.String()),
		zap.Int("active_protections", ActiveProtectionCount(s.settings)),
	)
	return s.settings
}

// SetAutoAdjust flips automatic escalation without touching the level.
func (s *State) SetAutoAdjust(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.AutoAdjust = enabled
}

// Assess scores a domain, caches the result (superseding any previous
// assessment of the same domain) and updates stats.
func (s *State) Assess(rawDomain string) (schemas.RiskAssessment, error) {
	assessment, err := s.engine.Assess(rawDomain)
	if err != nil {
		return schemas.RiskAssessment{}, err
	}

	s.mu.Lock()
	s.stats.SitesAssessed++
	if assessment.RiskScore >= 60 {
		s.stats.HighRiskSitesVisited++
	}
	s.assessments[assessment.Domain] = assessment
	s.mu.Unlock()

	return assessment, nil
}

// AutoAdjust assesses a domain and, when auto-adjust is enabled, escalates
// the active level to the recommendation if it is strictly higher. It never
// lowers the level: de-escalation is an operator decision. The returned bool
// reports whether an escalation happened.
func (s *State) AutoAdjust(rawDomain string) (schemas.PrivacySettings, bool, error) {
	assessment, err := s.Assess(rawDomain)
	if err != nil {
		return schemas.PrivacySettings{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.AutoAdjust {
		return s.settings, false, nil
	}

	// The "still greater" check must run inside the write lock: two
	// concurrent assessments may both have seen the pre-escalation level.
	if assessment.RecommendedOpsec <= s.settings.OpsecLevel {
		return s.settings, false, nil
	}

	previous := s.settings.OpsecLevel
	s.settings = SettingsForLevel(assessment.RecommendedOpsec)
	s.stats.AutoEscalations++

	s.log.Info("Auto-escalated protection level",
		zap.String("domain", assessment.Domain),
		zap.String("from", previous.String()),
		zap.String("to", assessment.RecommendedOpsec.String()),
	)
	return s.settings, true, nil
}

// CachedAssessment returns the most recent assessment for a domain, if any.
func (s *State) CachedAssessment(domain string) (schemas.RiskAssessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[domain]
	return a, ok
}

// CachedAssessments lists every cached assessment.
func (s *State) CachedAssessments() []schemas.RiskAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schemas.RiskAssessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, a)
	}
	return out
}

// Stats returns a copy of the running counters.
func (s *State) Stats() schemas.PrivacyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// RecordBlockedTracker counts one blocked tracker request.
func (s *State) RecordBlockedTracker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TrackersBlocked++
}

// RecordBlockedFingerprint counts one defeated fingerprinting attempt.
func (s *State) RecordBlockedFingerprint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.FingerprintAttemptsBlocked++
}

// ResetStats clears counters and the assessment cache.
func (s *State) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = schemas.PrivacyStats{}
	s.assessments = make(map[string]schemas.RiskAssessment)
}
