// Package browserctx provides per-identity browser isolation: each identity
// gets its own on-disk profile (cookies, cache, local storage, IndexedDB),
// its own fingerprint and its own launch flags, so no state can cross
// between identities.
package browserctx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/obscuraops/multipass/api/schemas"
)

// Metadata carries bookkeeping counters for a context.
type Metadata struct {
	CookieCount         uint64 `json:"cookie_count"`
	CacheSizeBytes      uint64 `json:"cache_size_bytes"`
	LocalStorageEntries uint64 `json:"local_storage_entries"`
	IsActive            bool   `json:"is_active"`
	PagesVisited        uint64 `json:"pages_visited"`
}

// Context is an isolated browser profile bound to a single identity.
type Context struct {
	IdentityID      string              `json:"identity_id"`
	DataDir         string              `json:"data_dir"`
	CookieStorePath string              `json:"cookie_store_path"`
	CacheDir        string              `json:"cache_dir"`
	LocalStorageDir string              `json:"local_storage_dir"`
	IndexedDBDir    string              `json:"indexeddb_dir"`
	Fingerprint     schemas.Fingerprint `json:"fingerprint"`
	CreatedAt       time.Time           `json:"created_at"`
	LastAccessed    time.Time           `json:"last_accessed"`
	Metadata        Metadata            `json:"metadata"`
}

// New lays out a context under baseDir/contexts/<identityID>. Nothing is
// created on disk until EnsureDirectories runs.
func New(identityID, baseDir string, fp schemas.Fingerprint) *Context {
	dataDir := filepath.Join(baseDir, "contexts", identityID)
	now := time.Now().UTC()
	return &Context{
		IdentityID:      identityID,
		DataDir:         dataDir,
		CookieStorePath: filepath.Join(dataDir, "cookies.db"),
		CacheDir:        filepath.Join(dataDir, "cache"),
		LocalStorageDir: filepath.Join(dataDir, "local_storage"),
		IndexedDBDir:    filepath.Join(dataDir, "indexeddb"),
		Fingerprint:     fp,
		CreatedAt:       now,
		LastAccessed:    now,
	}
}

// EnsureDirectories creates the profile directory tree.
func (c *Context) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.CacheDir, c.LocalStorageDir, c.IndexedDBDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("browserctx: create %s: %w", dir, err)
		}
	}
	return nil
}

// ClearAllData removes every byte of profile state and recreates the empty
// directory tree.
func (c *Context) ClearAllData() error {
	if err := os.RemoveAll(c.DataDir); err != nil {
		return fmt.Errorf("browserctx: clear %s: %w", c.DataDir, err)
	}
	return c.EnsureDirectories()
}

// ClearCookies deletes the cookie store only.
func (c *Context) ClearCookies() error {
	err := os.Remove(c.CookieStorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("browserctx: clear cookies: %w", err)
	}
	return nil
}

// ClearCache empties the cache directory, leaving the rest of the profile
// intact.
func (c *Context) ClearCache() error {
	if err := os.RemoveAll(c.CacheDir); err != nil {
		return fmt.Errorf("browserctx: clear cache: %w", err)
	}
	if err := os.MkdirAll(c.CacheDir, 0o700); err != nil {
		return fmt.Errorf("browserctx: recreate cache dir: %w", err)
	}
	return nil
}

// TotalSizeBytes walks the profile and sums file sizes. Missing directories
// count as zero.
func (c *Context) TotalSizeBytes() uint64 {
	var total uint64
	_ = filepath.WalkDir(c.DataDir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}

// Touch records an access.
func (c *Context) Touch() {
	c.LastAccessed = time.Now().UTC()
}

// ChromiumFlags builds the command line isolating this profile. The WebRTC
// flags force relay candidates only so the real IP never appears in ICE.
func (c *Context) ChromiumFlags() []string {
	return []string{
		"--user-data-dir=" + c.DataDir,
		"--user-agent=" + c.Fingerprint.UserAgent,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-background-networking",
		"--disable-client-side-phishing-detection",
		"--disable-default-apps",
		"--disable-extensions",
		"--disable-hang-monitor",
		"--disable-popup-blocking",
		"--disable-prompt-on-repost",
		"--disable-sync",
		"--disable-translate",
		"--metrics-recording-only",
		"--safebrowsing-disable-auto-update",
		fmt.Sprintf("--window-size=%d,%d", c.Fingerprint.Screen.Width, c.Fingerprint.Screen.Height),
		"--enforce-webrtc-ip-permission-check",
		"--webrtc-ip-handling-policy=disable_non_proxied_udp",
		"--disable-features=WebRtcHideLocalIpsWithMdns",
	}
}
