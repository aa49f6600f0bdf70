// Package fingerprint synthesizes self-consistent browser fingerprints.
//
// Every randomized field is picked from a curated table rather than being
// generated freely. Cross-field consistency matters more than entropy here:
// a Windows user agent claiming an Apple GPU is a louder signal than any
// individual value could be.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/obscuraops/multipass/api/schemas"
)

// Curated desktop user agents. Mixed Chrome/Firefox/Safari/Edge across the
// three desktop platforms.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36 Edg/128.0.0.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:131.0) Gecko/20100101 Firefox/131.0",
}

// Common desktop resolutions.
var screenResolutions = [][2]int{
	{1920, 1080},
	{2560, 1440},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1280, 720},
	{3840, 2160},
	{1600, 900},
	{2560, 1600},
}

// WebGL vendor/renderer pairs. Only these combinations are ever emitted;
// the two strings come from real hardware and must never be mixed across
// rows.
var webglPairs = []schemas.WebGLConfig{
	{Vendor: "Google Inc. (NVIDIA)", Renderer: "ANGLE (NVIDIA GeForce GTX 1060 Direct3D11 vs_5_0 ps_5_0)"},
	{Vendor: "Google Inc. (Intel)", Renderer: "ANGLE (Intel(R) UHD Graphics 620 Direct3D11 vs_5_0 ps_5_0)"},
	{Vendor: "Google Inc. (AMD)", Renderer: "ANGLE (AMD Radeon RX 580 Direct3D11 vs_5_0 ps_5_0)"},
	{Vendor: "Intel Inc.", Renderer: "Intel Iris Plus Graphics OpenGL Engine"},
	{Vendor: "Apple", Renderer: "Apple M1"},
}

// Timezone offsets in minutes from UTC.
var timezoneOffsets = []int{-480, -420, -360, -300, 0, 60, 120}

var deviceMemoryTiers = []int{2, 4, 8, 16, 32}

// Phonetic alphabet used for human-memorable fingerprint ids.
var phoneticNames = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta",
	"Iota", "Kappa", "Lambda", "Mu", "Nu", "Xi", "Omicron", "Pi",
	"Rho", "Sigma", "Tau", "Upsilon", "Phi", "Chi", "Psi", "Omega",
}

// Generate produces a new random fingerprint. It is pure: no I/O, no error
// path, and every call yields an independent persona.
func Generate() schemas.Fingerprint {
	ua := userAgents[rand.IntN(len(userAgents))]
	res := screenResolutions[rand.IntN(len(screenResolutions))]
	webgl := webglPairs[rand.IntN(len(webglPairs))]
	tz := timezoneOffsets[rand.IntN(len(timezoneOffsets))]

	width, height := res[0], res[1]

	pixelRatio := 1.0
	if rand.Float64() < 0.3 {
		pixelRatio = 2.0
	}

	return schemas.Fingerprint{
		ID:        deriveID(ua, width, height, webgl.Vendor),
		UserAgent: ua,
		Platform:  platformFor(ua),
		Screen: schemas.ScreenConfig{
			Width:          width,
			Height:         height,
			AvailableWidth: width,
			// Reserve a taskbar/menubar band.
			AvailableHeight: height - (30 + rand.IntN(30)),
			PixelRatio:      pixelRatio,
		},
		WebGL:               webgl,
		CanvasSeed:          rand.Uint64(),
		TimezoneOffset:      tz,
		Languages:           []string{"en-US", "en"},
		HardwareConcurrency: 2 + rand.IntN(15),
		DeviceMemory:        deviceMemoryTiers[rand.IntN(len(deviceMemoryTiers))],
		TouchSupport:        rand.Float64() < 0.2,
		ColorDepth:          24,
	}
}

// platformFor derives the navigator.platform label from the user agent so
// the two can never disagree.
func platformFor(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Win32"
	case strings.Contains(userAgent, "Macintosh"):
		return "MacIntel"
	default:
		return "Linux x86_64"
	}
}

// deriveID hashes distinguishing attributes plus fresh randomness and maps
// the digest onto a speakable "Name-XXXXXX" label. The label leaks nothing:
// the extra random bytes make it non-invertible even over the small curated
// tables.
func deriveID(userAgent string, width, height int, vendor string) string {
	var nonce [16]byte
	binary.LittleEndian.PutUint64(nonce[:8], rand.Uint64())
	binary.LittleEndian.PutUint64(nonce[8:], rand.Uint64())

	h := sha256.New()
	h.Write([]byte(userAgent))
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[:4], uint32(width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(height))
	h.Write(dims[:])
	h.Write([]byte(vendor))
	h.Write(nonce[:])
	sum := h.Sum(nil)

	name := phoneticNames[(int(sum[0])|int(sum[1])<<8)%len(phoneticNames)]
	suffix := fmt.Sprintf("%X%X%X%X%X%X",
		sum[2]%16, sum[3]%16, sum[4]%16, sum[5]%16, sum[6]%16, sum[7]%16)

	return name + "-" + suffix
}
