package schemas

import (
	"fmt"
	"time"
)

// -- Protection Levels --

// OpsecLevel is a strictly ordered protection posture. The ordering is the
// sole basis for escalation decisions: automation may raise the level, never
// lower it.
type OpsecLevel int

const (
	// OpsecMinimal - trusted sites, minimal interference.
	OpsecMinimal OpsecLevel = iota
	// OpsecStandard - general browsing default.
	OpsecStandard
	// OpsecEnhanced - sensitive research.
	OpsecEnhanced
	// OpsecMaximum - high-risk investigation.
	OpsecMaximum
	// OpsecParanoid - assume an active adversary.
	OpsecParanoid
)

var opsecNames = map[OpsecLevel]string{
	OpsecMinimal:  "minimal",
	OpsecStandard: "standard",
	OpsecEnhanced: "enhanced",
	OpsecMaximum:  "maximum",
	OpsecParanoid: "paranoid",
}

func (l OpsecLevel) String() string {
	if name, ok := opsecNames[l]; ok {
		return name
	}
	return fmt.Sprintf("opsec(%d)", int(l))
}

// Description returns the operator-facing summary of a level.
func (l OpsecLevel) Description() string {
	switch l {
	case OpsecMinimal:
		return "Minimal protection for trusted sites"
	case OpsecStandard:
		return "Standard protection for general browsing"
	case OpsecEnhanced:
		return "Enhanced protection for sensitive research"
	case OpsecMaximum:
		return "Maximum protection for high-risk investigation"
	case OpsecParanoid:
		return "Paranoid mode - assume active adversary"
	default:
		return "Unknown protection level"
	}
}

// MarshalText encodes the level as its lowercase name.
func (l OpsecLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a lowercase level name.
func (l *OpsecLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseOpsecLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseOpsecLevel maps a level name back to its value.
func ParseOpsecLevel(s string) (OpsecLevel, error) {
	for level, name := range opsecNames {
		if name == s {
			return level, nil
		}
	}
	return OpsecStandard, fmt.Errorf("unknown opsec level %q", s)
}

// -- Risk Assessment Models --

// RiskCategory classifies a destination domain.
type RiskCategory string

const (
	RiskTrusted     RiskCategory = "trusted"
	RiskGeneral     RiskCategory = "general"
	RiskSocialMedia RiskCategory = "social_media"
	RiskGovernment  RiskCategory = "government"
	RiskDarkWeb     RiskCategory = "dark_web"
	RiskUnknown     RiskCategory = "unknown"
)

// RiskFactor is a single named contributor to a risk score.
type RiskFactor struct {
	Name        string `json:"name"`
	Severity    int    `json:"severity"` // 0-10
	Description string `json:"description"`
}

// ThreatKind names a class of privacy threat a site is expected to employ.
type ThreatKind string

const (
	ThreatTrackers       ThreatKind = "trackers"
	ThreatFingerprinting ThreatKind = "fingerprinting"
	ThreatWebRTCLeak     ThreatKind = "webrtc_leak"
	ThreatCanvas         ThreatKind = "canvas_fingerprint"
	ThreatWebGL          ThreatKind = "webgl_fingerprint"
	ThreatAudio          ThreatKind = "audio_fingerprint"
	ThreatFontEnum       ThreatKind = "font_enumeration"
)

// PrivacyThreat is a structured threat finding attached to an assessment.
type PrivacyThreat struct {
	Kind       ThreatKind `json:"kind"`
	Count      int        `json:"count,omitempty"`
	Domains    []string   `json:"domains,omitempty"`
	Techniques []string   `json:"techniques,omitempty"`
}

// RiskAssessment is the per-domain evaluation result. Assessments are
// ephemeral: a later assessment of the same domain supersedes, never merges.
type RiskAssessment struct {
	Domain           string          `json:"domain"`
	RiskScore        int             `json:"risk_score"` // 0-100
	Category         RiskCategory    `json:"category"`
	RecommendedOpsec OpsecLevel      `json:"recommended_opsec"`
	RiskFactors      []RiskFactor    `json:"risk_factors"`
	Threats          []PrivacyThreat `json:"threats"`
	AssessedAt       time.Time       `json:"assessed_at"`
	Confidence       float64         `json:"confidence"` // 0.0-1.0
}

// -- Protection Settings --

// PrivacySettings is the full feature-toggle set derived from an OpsecLevel.
// It is recomputed whenever the level changes and is never persisted apart
// from the level itself.
type PrivacySettings struct {
	OpsecLevel             OpsecLevel `json:"opsec_level"`
	AutoAdjust             bool       `json:"auto_adjust"`
	BlockTrackers          bool       `json:"block_trackers"`
	BlockFingerprinting    bool       `json:"block_fingerprinting"`
	SpoofCanvas            bool       `json:"spoof_canvas"`
	SpoofWebGL             bool       `json:"spoof_webgl"`
	SpoofAudio             bool       `json:"spoof_audio"`
	BlockWebRTC            bool       `json:"block_webrtc"`
	SpoofTimezone          bool       `json:"spoof_timezone"`
	SpoofScreen            bool       `json:"spoof_screen"`
	SpoofUserAgent         bool       `json:"spoof_user_agent"`
	SpoofFonts             bool       `json:"spoof_fonts"`
	BlockThirdPartyCookies bool       `json:"block_third_party_cookies"`
	ClearCookiesOnClose    bool       `json:"clear_cookies_on_close"`
	UseTor                 bool       `json:"use_tor"`
	DNSOverHTTPS           bool       `json:"dns_over_https"`
	BlockJavaScript        bool       `json:"block_javascript"`
}

// InjectionConfig selects which spoof blocks the script synthesizer emits.
// Each flag is independent; any subset produces a valid script.
type InjectionConfig struct {
	SpoofNavigator bool `json:"spoof_navigator"`
	SpoofScreen    bool `json:"spoof_screen"`
	SpoofCanvas    bool `json:"spoof_canvas"`
	SpoofWebGL     bool `json:"spoof_webgl"`
	SpoofAudio     bool `json:"spoof_audio"`
	SpoofTimezone  bool `json:"spoof_timezone"`
	BlockWebRTC    bool `json:"block_webrtc"`
	SpoofFonts     bool `json:"spoof_fonts"`
	SpoofPlugins   bool `json:"spoof_plugins"`
	SpoofBattery   bool `json:"spoof_battery"`
}

// FullInjectionConfig enables every spoof block.
func FullInjectionConfig() InjectionConfig {
	return InjectionConfig{
		SpoofNavigator: true,
		SpoofScreen:    true,
		SpoofCanvas:    true,
		SpoofWebGL:     true,
		SpoofAudio:     true,
		SpoofTimezone:  true,
		BlockWebRTC:    true,
		SpoofFonts:     true,
		SpoofPlugins:   true,
		SpoofBattery:   true,
	}
}

// PrivacyStats tracks operator-auditable protection activity.
type PrivacyStats struct {
	TrackersBlocked            uint64 `json:"trackers_blocked"`
	FingerprintAttemptsBlocked uint64 `json:"fingerprint_attempts_blocked"`
	CookiesBlocked             uint64 `json:"cookies_blocked"`
	WebRTCLeaksPrevented       uint64 `json:"webrtc_leaks_prevented"`
	SitesAssessed              uint64 `json:"sites_assessed"`
	HighRiskSitesVisited       uint64 `json:"high_risk_sites_visited"`
	AutoEscalations            uint64 `json:"auto_escalations"`
}
