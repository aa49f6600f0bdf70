package schemas

import "time"

// -- Identity Models --

// IdentityStatus is the lifecycle state of an identity.
type IdentityStatus string

const (
	IdentityActive    IdentityStatus = "active"
	IdentityDormant   IdentityStatus = "dormant"
	IdentityDestroyed IdentityStatus = "destroyed"
)

// ProxyConfig is the per-identity upstream proxy selection. The engine only
// records it; the transport itself is an external collaborator.
type ProxyConfig struct {
	Enabled   bool   `json:"enabled"`
	ProxyType string `json:"proxy_type"`
	Host      string `json:"host,omitempty"`
	Port      uint16 `json:"port,omitempty"`
}

// Identity is one isolated browsing persona. Each identity owns exactly one
// fingerprint, one browser context and one session snapshot.
type Identity struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	Status      IdentityStatus `json:"status"`
	Proxy       *ProxyConfig   `json:"proxy,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	LastUsed    time.Time      `json:"last_used"`
	TabCount    uint32         `json:"tab_count"`
}

// IsDestroyed reports whether the identity has been irreversibly retired.
func (i *Identity) IsDestroyed() bool {
	return i.Status == IdentityDestroyed
}
