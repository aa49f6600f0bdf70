package schemas

import "time"

// -- Session Models --
// A SessionData is the complete, current snapshot of one identity's browsing
// state. Clone and import operations replace snapshots wholesale; nothing is
// ever merged in place.

// SessionData is one identity's session snapshot.
type SessionData struct {
	ID         string `json:"id"`
	IdentityID string `json:"identity_id"`

	Cookies []SessionCookie `json:"cookies"`

	// Storage maps are keyed by origin; each value is that origin's
	// key/value entries.
	LocalStorage   map[string]map[string]string `json:"local_storage"`
	SessionStorage map[string]map[string]string `json:"session_storage"`

	History []HistoryEntry `json:"history"`
	Tabs    []TabState     `json:"tabs"`

	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`

	// Approximate serialized size. Recomputed on every mutation, never set
	// by hand.
	SizeBytes uint64 `json:"size_bytes"`

	// Format version for compatibility checks.
	Version uint32 `json:"version"`
}

// SessionCookie is one browser cookie in a session snapshot.
type SessionCookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Expires  *float64 `json:"expires,omitempty"`
	HTTPOnly bool     `json:"http_only"`
	Secure   bool     `json:"secure"`
	SameSite string   `json:"same_site"`
	// Flagged when the cookie name matches a sensitive token pattern.
	IsSensitive bool `json:"is_sensitive"`
}

// HistoryEntry is one visited URL. No forward stack is tracked.
type HistoryEntry struct {
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	VisitTime  time.Time `json:"visit_time"`
	VisitCount uint32    `json:"visit_count"`
}

// TabState captures one open tab.
type TabState struct {
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	IsActive       bool       `json:"is_active"`
	ScrollPosition [2]float64 `json:"scroll_position"`
}

// -- Clone / Export Models --

// CloneOptions is the pure policy value governing what crosses the boundary
// between two identities' sessions.
type CloneOptions struct {
	IncludeCookies          bool `json:"include_cookies"`
	IncludeSensitiveCookies bool `json:"include_sensitive_cookies"`
	IncludeLocalStorage     bool `json:"include_local_storage"`
	IncludeSessionStorage   bool `json:"include_session_storage"`
	IncludeHistory          bool `json:"include_history"`
	IncludeTabs             bool `json:"include_tabs"`
	// Regenerate the target's fingerprint instead of carrying the source's.
	NewFingerprint bool `json:"new_fingerprint"`
	// If non-empty, only cookies/origins matching one of these domains pass.
	DomainFilter []string `json:"domain_filter"`
	// Any match here excludes the cookie/origin, after the allow filter.
	DomainExclude []string `json:"domain_exclude"`
}

// DefaultCloneOptions returns the secure-by-default policy: sensitive
// cookies and ephemeral session storage stay behind, and the clone gets a
// fresh fingerprint.
func DefaultCloneOptions() CloneOptions {
	return CloneOptions{
		IncludeCookies:          true,
		IncludeSensitiveCookies: false,
		IncludeLocalStorage:     true,
		IncludeSessionStorage:   false,
		IncludeHistory:          true,
		IncludeTabs:             true,
		NewFingerprint:          true,
	}
}

// CloneResult reports exactly what crossed the boundary, including what was
// withheld, so the operator can audit the operation.
type CloneResult struct {
	SessionID               string    `json:"session_id"`
	TargetIdentityID        string    `json:"target_identity_id"`
	CookiesCloned           int       `json:"cookies_cloned"`
	CookiesSkipped          int       `json:"cookies_skipped"`
	LocalStorageEntries     int       `json:"local_storage_entries"`
	SessionStorageEntries   int       `json:"session_storage_entries"`
	HistoryEntries          int       `json:"history_entries"`
	TabsCloned              int       `json:"tabs_cloned"`
	NewFingerprintGenerated bool      `json:"new_fingerprint_generated"`
	ClonedAt                time.Time `json:"cloned_at"`
}

// SessionExport is the self-describing envelope for offline transfer. The
// integrity hash covers the canonical serialization of Session and must be
// verified before the payload is trusted.
type SessionExport struct {
	FormatVersion uint32      `json:"format_version"`
	ExportedAt    time.Time   `json:"exported_at"`
	IntegrityHash string      `json:"integrity_hash"`
	Session       SessionData `json:"session"`
}
