package schemas

// -- Fingerprint Models --
// A Fingerprint is the set of synthetic browser-introspection values one
// identity presents to every site it visits. It is created once, at identity
// creation, and never mutated afterwards: a fingerprint that drifts between
// page loads is itself a tracking signal.

// Fingerprint describes a complete synthetic browser persona.
type Fingerprint struct {
	// Human-memorable identifier derived from the fingerprint content
	// (e.g. "Sigma-4A1F0C"). Never contains raw fingerprint values.
	ID string `json:"id"`

	// Full user agent string presented to sites.
	UserAgent string `json:"user_agent"`

	// navigator.platform label. Always consistent with UserAgent.
	Platform string `json:"platform"`

	// Screen geometry reported by screen.* and window.*.
	Screen ScreenConfig `json:"screen"`

	// WebGL vendor/renderer pair. Always one of the curated pairs.
	WebGL WebGLConfig `json:"webgl"`

	// Seed for deterministic canvas/audio noise injection.
	CanvasSeed uint64 `json:"canvas_seed"`

	// Timezone offset in minutes from UTC (Date.getTimezoneOffset sign).
	TimezoneOffset int `json:"timezone_offset"`

	// Ordered language preference list (navigator.languages).
	Languages []string `json:"languages"`

	// navigator.hardwareConcurrency.
	HardwareConcurrency int `json:"hardware_concurrency"`

	// navigator.deviceMemory tier in GB.
	DeviceMemory int `json:"device_memory"`

	// Whether the persona claims touch input.
	TouchSupport bool `json:"touch_support"`

	// screen.colorDepth / screen.pixelDepth.
	ColorDepth int `json:"color_depth"`
}

// ScreenConfig is the logical screen geometry of a fingerprint.
type ScreenConfig struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	AvailableWidth  int     `json:"available_width"`
	AvailableHeight int     `json:"available_height"`
	PixelRatio      float64 `json:"pixel_ratio"`
}

// WebGLConfig is a curated vendor/renderer pair. The two fields are never
// randomized independently of each other.
type WebGLConfig struct {
	Vendor   string `json:"vendor"`
	Renderer string `json:"renderer"`
}
