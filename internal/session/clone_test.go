package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obscuraops/multipass/api/schemas"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(nil, zap.NewNop())
}

func sampleSession() schemas.SessionData {
	expires := float64(1893456000)
	return schemas.SessionData{
		ID:         "session-src",
		IdentityID: "ident-src",
		Cookies: []schemas.SessionCookie{
			{Name: "theme", Value: "dark", Domain: "news.example", Path: "/", Expires: &expires},
			{Name: "auth_token", Value: "hunter2", Domain: "news.example", Path: "/", Secure: true, HTTPOnly: true},
			{Name: "lang", Value: "en", Domain: "tracker.example", Path: "/"},
		},
		LocalStorage: map[string]map[string]string{
			"https://news.example":    {"pref": "compact", "seen": "true"},
			"https://tracker.example": {"uid": "42"},
		},
		SessionStorage: map[string]map[string]string{
			"https://news.example": {"draft": "wip"},
		},
		History: []schemas.HistoryEntry{
			{URL: "https://news.example/story", Title: "Story", VisitTime: time.Now().UTC(), VisitCount: 3},
		},
		Tabs: []schemas.TabState{
			{URL: "https://news.example", Title: "News", IsActive: true},
		},
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
		LastModified: time.Now().UTC(),
		Version:      1,
	}
}

func TestCloneDefaultsSkipSensitive(t *testing.T) {
	e := newTestEngine(t)

	cloned, result, err := e.Clone(sampleSession(), "ident-dst", schemas.DefaultCloneOptions())
	require.NoError(t, err)

	assert.Equal(t, "ident-dst", cloned.IdentityID)
	assert.NotEqual(t, "session-src", cloned.ID)
	assert.Equal(t, 2, result.CookiesCloned)
	assert.Equal(t, 1, result.CookiesSkipped, "auth_token must be withheld by default")
	for _, c := range cloned.Cookies {
		assert.NotEqual(t, "auth_token", c.Name)
	}

	// Session storage is ephemeral and excluded by default.
	assert.Empty(t, cloned.SessionStorage)
	assert.Zero(t, result.SessionStorageEntries)

	assert.Equal(t, 3, result.LocalStorageEntries)
	assert.Equal(t, 1, result.HistoryEntries)
	assert.Equal(t, 1, result.TabsCloned)
	assert.True(t, result.NewFingerprintGenerated)
	assert.Equal(t, cloned.ID, result.SessionID)
}

func TestCloneIncludeSensitiveMarksCookie(t *testing.T) {
	e := newTestEngine(t)
	opts := schemas.DefaultCloneOptions()
	opts.IncludeSensitiveCookies = true

	cloned, result, err := e.Clone(sampleSession(), "ident-dst", opts)
	require.NoError(t, err)

	assert.Equal(t, 3, result.CookiesCloned)
	assert.Zero(t, result.CookiesSkipped)

	var found bool
	for _, c := range cloned.Cookies {
		if c.Name == "auth_token" {
			found = true
			assert.True(t, c.IsSensitive)
		}
	}
	assert.True(t, found)
}

func TestCloneDomainFilters(t *testing.T) {
	e := newTestEngine(t)

	opts := schemas.DefaultCloneOptions()
	opts.DomainFilter = []string{"news.example"}
	cloned, result, err := e.Clone(sampleSession(), "ident-dst", opts)
	require.NoError(t, err)
	for _, c := range cloned.Cookies {
		assert.Contains(t, c.Domain, "news.example")
	}
	assert.NotContains(t, cloned.LocalStorage, "https://tracker.example")
	assert.Equal(t, 2, result.LocalStorageEntries)

	// Exclude wins over allow.
	opts.DomainExclude = []string{"news.example"}
	cloned, result, err = e.Clone(sampleSession(), "ident-dst", opts)
	require.NoError(t, err)
	assert.Empty(t, cloned.Cookies)
	assert.Empty(t, cloned.LocalStorage)
	assert.Zero(t, result.CookiesCloned)
}

func TestCloneIsDeepCopy(t *testing.T) {
	e := newTestEngine(t)
	source := sampleSession()

	cloned, _, err := e.Clone(source, "ident-dst", schemas.DefaultCloneOptions())
	require.NoError(t, err)

	// Mutating the clone must not reach back into the source.
	cloned.LocalStorage["https://news.example"]["pref"] = "tampered"
	assert.Equal(t, "compact", source.LocalStorage["https://news.example"]["pref"])

	cloned.Cookies[0].Value = "tampered"
	assert.Equal(t, "dark", source.Cookies[0].Value)

	*cloned.Cookies[0].Expires = 0
	assert.Equal(t, float64(1893456000), *source.Cookies[0].Expires)
}

func TestCloneEmptyTarget(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.Clone(sampleSession(), "", schemas.DefaultCloneOptions())
	assert.Error(t, err)
}

func TestCloneTogglesOff(t *testing.T) {
	e := newTestEngine(t)
	opts := schemas.CloneOptions{}

	cloned, result, err := e.Clone(sampleSession(), "ident-dst", opts)
	require.NoError(t, err)
	assert.Empty(t, cloned.Cookies)
	assert.Empty(t, cloned.LocalStorage)
	assert.Empty(t, cloned.History)
	assert.Empty(t, cloned.Tabs)
	assert.Zero(t, result.CookiesCloned)
	assert.Zero(t, result.CookiesSkipped)
	assert.Zero(t, cloned.SizeBytes)
}

func TestIsSensitiveCookie(t *testing.T) {
	e := newTestEngine(t)

	sensitive := []string{"auth_token", "SESSIONID", "csrf-token", "__stripe_mid", "remember_me", "jwt"}
	for _, name := range sensitive {
		assert.True(t, e.IsSensitiveCookie(schemas.SessionCookie{Name: name}), name)
	}

	benign := []string{"theme", "lang", "consent", "tz"}
	for _, name := range benign {
		assert.False(t, e.IsSensitiveCookie(schemas.SessionCookie{Name: name}), name)
	}
}

func TestIsSensitiveCookieCustomTokens(t *testing.T) {
	e := NewEngine([]string{"tracker"}, zap.NewNop())
	assert.True(t, e.IsSensitiveCookie(schemas.SessionCookie{Name: "my_tracker_id"}))
	assert.False(t, e.IsSensitiveCookie(schemas.SessionCookie{Name: "auth_token"}))
}

func TestEstimateSize(t *testing.T) {
	s := sampleSession()
	size := EstimateSize(s)
	assert.Positive(t, size)

	s.Cookies = append(s.Cookies, schemas.SessionCookie{Name: "extra", Value: "payload"})
	assert.Greater(t, EstimateSize(s), size)
}
