// Package privacy implements per-domain risk assessment and the process-wide
// protection level registers, including the escalate-only auto-adjust rule.
package privacy

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/urlutil"
)

// Policy is the swappable classification data the engine scores against.
// These are policy lists, not algorithm: they ship as defaults and can be
// replaced wholesale from configuration.
type Policy struct {
	TrustedDomains     []string `mapstructure:"trusted_domains"`
	SocialMediaDomains []string `mapstructure:"social_media_domains"`
	GovernmentSuffixes []string `mapstructure:"government_suffixes"`
	TrackerDomains     []string `mapstructure:"tracker_domains"`
}

// DefaultPolicy returns the built-in classification lists.
func DefaultPolicy() Policy {
	return Policy{
		TrustedDomains: []string{
			"shodan.io", "censys.io", "virustotal.com", "haveibeenpwned.com",
			"hunter.io", "securitytrails.com", "dnsdumpster.com", "crt.sh",
			"urlscan.io", "hybrid-analysis.com", "any.run", "tineye.com",
			"archive.org", "web.archive.org", "whois.domaintools.com",
			"greynoise.io", "binaryedge.io", "zoomeye.org", "intelx.io",
			"pulsedive.com",
		},
		SocialMediaDomains: []string{
			"facebook.com", "twitter.com", "x.com", "instagram.com",
			"linkedin.com", "tiktok.com", "reddit.com", "youtube.com",
			"pinterest.com", "snapchat.com", "tumblr.com", "discord.com",
			"telegram.org", "whatsapp.com", "threads.net", "mastodon.social",
			"bsky.app",
		},
		GovernmentSuffixes: []string{
			".gov", ".mil", ".gov.uk", ".gov.au", ".gc.ca", ".gob.mx", ".gouv.fr",
		},
		TrackerDomains: []string{
			"google-analytics.com", "googletagmanager.com", "doubleclick.net",
			"facebook.net", "fbcdn.net", "hotjar.com", "mixpanel.com",
			"segment.com", "amplitude.com", "fullstory.com", "mouseflow.com",
			"crazyegg.com", "optimizely.com", "taboola.com", "outbrain.com",
			"criteo.com", "adsrvr.org", "rubiconproject.com", "pubmatic.com",
			"openx.net", "adnxs.com", "googlesyndication.com",
			"amazon-adsystem.com", "quantserve.com", "scorecardresearch.com",
			"comscore.com", "clarity.ms", "connect.facebook.net",
		},
	}
}

// Engine scores destination domains. Assessments are pure with respect to
// engine state; caching lives in State.
type Engine struct {
	policy Policy
	log    *zap.Logger
}

// NewEngine builds a risk engine over the given policy lists.
func NewEngine(policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		policy: policy,
		log:    logger.Named("risk"),
	}
}

// Assess classifies a domain (or URL; it is normalized first) and produces a
// score, category, threat findings and a recommended protection level.
func (e *Engine) Assess(rawDomain string) (schemas.RiskAssessment, error) {
	domain, err := urlutil.NormalizeDomain(rawDomain)
	if err != nil {
		return schemas.RiskAssessment{}, fmt.Errorf("privacy: invalid domain %q: %w", rawDomain, err)
	}

	var (
		factors    []schemas.RiskFactor
		threats    []schemas.PrivacyThreat
		score      int
		category   schemas.RiskCategory
		confidence float64
	)

	// First match wins; each branch sets the base score and a confidence
	// prior for its category.
	switch {
	case containsAny(domain, e.policy.TrustedDomains):
		score, category, confidence = 10, schemas.RiskTrusted, 0.95

	case containsAny(domain, e.policy.SocialMediaDomains):
		score, category, confidence = 70, schemas.RiskSocialMedia, 0.90
		factors = append(factors, schemas.RiskFactor{
			Name:        "Social Media Platform",
			Severity:    7,
			Description: "High tracking and fingerprinting",
		})
		threats = append(threats,
			schemas.PrivacyThreat{
				Kind:    schemas.ThreatTrackers,
				Count:   10,
				Domains: []string{"analytics", "ads"},
			},
			schemas.PrivacyThreat{
				Kind:       schemas.ThreatFingerprinting,
				Techniques: []string{"canvas", "webgl"},
			},
		)

	case suffixAny(domain, e.policy.GovernmentSuffixes):
		score, category, confidence = 60, schemas.RiskGovernment, 0.80
		factors = append(factors, schemas.RiskFactor{
			Name:        "Government Domain",
			Severity:    6,
			Description: "Potential logging and surveillance",
		})

	case strings.HasSuffix(domain, ".onion"):
		score, category, confidence = 50, schemas.RiskDarkWeb, 0.70
		factors = append(factors, schemas.RiskFactor{
			Name:        "Dark Web Service",
			Severity:    5,
			Description: "Tor hidden service",
		})

	default:
		score, category, confidence = 30, schemas.RiskGeneral, 0.60
	}

	// Tracker presence is evidence on top of category, not instead of it.
	if containsAny(domain, e.policy.TrackerDomains) {
		score = min(score+20, 100)
		confidence = min64(confidence+0.10, 1.0)
		factors = append(factors, schemas.RiskFactor{
			Name:        "Known Tracker",
			Severity:    8,
			Description: "Domain is a known tracking service",
		})
	}

	assessment := schemas.RiskAssessment{
		Domain:           domain,
		RiskScore:        score,
		Category:         category,
		RecommendedOpsec: RecommendLevel(score),
		RiskFactors:      factors,
		Threats:          threats,
		AssessedAt:       time.Now().UTC(),
		Confidence:       confidence,
	}

	e.log.Debug("Domain assessed",
		zap.String("domain", domain),
		zap.Int("risk_score", score),
		zap.String("category", string(category)),
		zap.String("recommended_opsec", assessment.RecommendedOpsec.String()),
	)
	return assessment, nil
}

// RecommendLevel maps a risk score onto a protection level through five
// fixed bands. Monotonic: a higher score never yields a lower level.
func RecommendLevel(score int) schemas.OpsecLevel {
	switch {
	case score <= 20:
		return schemas.OpsecMinimal
	case score <= 40:
		return schemas.OpsecStandard
	case score <= 60:
		return schemas.OpsecEnhanced
	case score <= 80:
		return schemas.OpsecMaximum
	default:
		return schemas.OpsecParanoid
	}
}

func containsAny(domain string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(domain, p) {
			return true
		}
	}
	return false
}

func suffixAny(domain string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(domain, s) {
			return true
		}
	}
	return false
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
