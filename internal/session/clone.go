// Package session implements cloning of browsing sessions between
// identities and tamper-evident export/import for offline transfer. A clone
// is always a deep copy filtered by policy; the source and the clone never
// share data.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

// DefaultSensitiveTokens are the cookie name substrings treated as
// credentials. Matching is case-insensitive on the cookie name.
var DefaultSensitiveTokens = []string{
	"session", "token", "auth", "csrf", "xsrf", "jwt", "bearer",
	"api_key", "apikey", "secret", "password", "login", "sid", "ssid",
	"access_token", "refresh_token", "id_token", "__stripe",
	"remember_me", "persistent",
}

// Engine performs clone and export operations. The sensitive token list is
// fixed at construction; pass nil to use the defaults.
type Engine struct {
	sensitiveTokens []string
	log             *zap.Logger
}

// NewEngine builds a session engine.
func NewEngine(sensitiveTokens []string, logger *zap.Logger) *Engine {
	if sensitiveTokens == nil {
		sensitiveTokens = DefaultSensitiveTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sensitiveTokens: sensitiveTokens,
		log:             logger.Named("session"),
	}
}

// IsSensitiveCookie reports whether a cookie name matches any sensitive
// token pattern.
func (e *Engine) IsSensitiveCookie(c schemas.SessionCookie) bool {
	name := strings.ToLower(c.Name)
	for _, token := range e.sensitiveTokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}

// Clone copies a session to a target identity under the given policy. The
// returned snapshot shares no memory with the source. Filtering runs in a
// fixed order per cookie: the allow filter, then the exclude filter, then
// the sensitivity check.
func (e *Engine) Clone(source schemas.SessionData, targetIdentityID string, opts schemas.CloneOptions) (schemas.SessionData, schemas.CloneResult, error) {
	if targetIdentityID == "" {
		return schemas.SessionData{}, schemas.CloneResult{}, fmt.Errorf("session: empty target identity")
	}

	now := time.Now().UTC()
	cloned := schemas.SessionData{
		ID:             "session-" + uuid.NewString(),
		IdentityID:     targetIdentityID,
		Cookies:        []schemas.SessionCookie{},
		LocalStorage:   make(map[string]map[string]string),
		SessionStorage: make(map[string]map[string]string),
		History:        []schemas.HistoryEntry{},
		Tabs:           []schemas.TabState{},
		CreatedAt:      now,
		LastModified:   now,
		Version:        source.Version,
	}
	result := schemas.CloneResult{
		SessionID:               cloned.ID,
		TargetIdentityID:        targetIdentityID,
		NewFingerprintGenerated: opts.NewFingerprint,
		ClonedAt:                now,
	}

	if opts.IncludeCookies {
		for _, cookie := range source.Cookies {
			if !domainAllowed(cookie.Domain, opts) {
				continue
			}
			sensitive := e.IsSensitiveCookie(cookie)
			if sensitive && !opts.IncludeSensitiveCookies {
				result.CookiesSkipped++
				continue
			}
			copied := cookie
			if cookie.Expires != nil {
				expires := *cookie.Expires
				copied.Expires = &expires
			}
			copied.IsSensitive = sensitive
			cloned.Cookies = append(cloned.Cookies, copied)
			result.CookiesCloned++
		}
	}

	if opts.IncludeLocalStorage {
		for origin, entries := range source.LocalStorage {
			if !domainAllowed(origin, opts) {
				continue
			}
			cloned.LocalStorage[origin] = copyEntries(entries)
			result.LocalStorageEntries += len(entries)
		}
	}

	if opts.IncludeSessionStorage {
		for origin, entries := range source.SessionStorage {
			if !domainAllowed(origin, opts) {
				continue
			}
			cloned.SessionStorage[origin] = copyEntries(entries)
			result.SessionStorageEntries += len(entries)
		}
	}

	if opts.IncludeHistory {
		cloned.History = append(cloned.History, source.History...)
		result.HistoryEntries = len(cloned.History)
	}

	if opts.IncludeTabs {
		cloned.Tabs = append(cloned.Tabs, source.Tabs...)
		result.TabsCloned = len(cloned.Tabs)
	}

	cloned.SizeBytes = EstimateSize(cloned)

	e.log.Info("Session cloned",
		zap.String("source_identity", source.IdentityID),
		zap.String("target_identity", targetIdentityID),
		zap.Int("cookies_cloned", result.CookiesCloned),
		zap.Int("cookies_skipped", result.CookiesSkipped),
	)
	return cloned, result, nil
}

// domainAllowed applies the allow filter then the exclude filter to a
// cookie domain or storage origin.
func domainAllowed(domain string, opts schemas.CloneOptions) bool {
	if len(opts.DomainFilter) > 0 {
		matched := false
		for _, d := range opts.DomainFilter {
			if strings.Contains(domain, d) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, d := range opts.DomainExclude {
		if strings.Contains(domain, d) {
			return false
		}
	}
	return true
}

func copyEntries(entries map[string]string) map[string]string {
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out
}

// EstimateSize approximates the serialized size of a session from its
// string payloads.
func EstimateSize(s schemas.SessionData) uint64 {
	var size uint64
	for _, c := range s.Cookies {
		size += uint64(len(c.Name) + len(c.Value) + len(c.Domain) + len(c.Path))
	}
	for _, entries := range s.LocalStorage {
		for k, v := range entries {
			size += uint64(len(k) + len(v))
		}
	}
	for _, h := range s.History {
		size += uint64(len(h.URL) + len(h.Title))
	}
	for _, t := range s.Tabs {
		size += uint64(len(t.URL) + len(t.Title))
	}
	return size
}
