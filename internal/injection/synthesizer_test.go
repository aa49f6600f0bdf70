package injection

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscuraops/multipass/api/schemas"
	"github.com/obscuraops/multipass/internal/fingerprint"
)

func testFingerprint() schemas.Fingerprint {
	return schemas.Fingerprint{
		ID:        "Sigma-4A1F0C",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		Platform:  "Win32",
		Screen: schemas.ScreenConfig{
			Width:           1920,
			Height:          1080,
			AvailableWidth:  1920,
			AvailableHeight: 1040,
			PixelRatio:      1.0,
		},
		WebGL: schemas.WebGLConfig{
			Vendor:   "Google Inc. (NVIDIA)",
			Renderer: "ANGLE (NVIDIA GeForce GTX 1060 Direct3D11 vs_5_0 ps_5_0)",
		},
		CanvasSeed:          0xDEADBEEFCAFE1234,
		TimezoneOffset:      -300,
		Languages:           []string{"en-US", "en"},
		HardwareConcurrency: 8,
		DeviceMemory:        16,
		TouchSupport:        false,
		ColorDepth:          24,
	}
}

func TestSynthesizeContainsAllBlocks(t *testing.T) {
	script := Synthesize(testFingerprint(), schemas.FullInjectionConfig())

	for _, marker := range []string{
		"Navigator spoofing",
		"Screen spoofing",
		"Canvas fingerprint spoofing",
		"WebGL fingerprint spoofing",
		"AudioContext fingerprint spoofing",
		"Timezone spoofing",
		"WebRTC IP leak prevention",
		"Font enumeration spoofing",
		"Plugin spoofing",
		"Battery API spoofing",
	} {
		assert.Contains(t, script, marker)
	}
}

func TestSynthesizeUsesFingerprintValues(t *testing.T) {
	fp := testFingerprint()
	script := Synthesize(fp, schemas.FullInjectionConfig())

	assert.Contains(t, script, fp.UserAgent)
	assert.Contains(t, script, fp.Platform)
	assert.Contains(t, script, fp.WebGL.Vendor)
	assert.Contains(t, script, fp.WebGL.Renderer)
	assert.Contains(t, script, "America/New_York")
	assert.Contains(t, script, fmt.Sprintf("var CANVAS_SEED = %d;", CanvasNoiseSeed(fp)))
	assert.Contains(t, script, fmt.Sprintf("var AUDIO_SEED = %d;", AudioNoiseSeed(fp)))
}

func TestSynthesizeTogglesAreIndependent(t *testing.T) {
	fp := testFingerprint()

	cases := []struct {
		name   string
		mutate func(*schemas.InjectionConfig)
		marker string
	}{
		{"navigator", func(c *schemas.InjectionConfig) { c.SpoofNavigator = false }, "Navigator spoofing"},
		{"screen", func(c *schemas.InjectionConfig) { c.SpoofScreen = false }, "Screen spoofing"},
		{"canvas", func(c *schemas.InjectionConfig) { c.SpoofCanvas = false }, "Canvas fingerprint spoofing"},
		{"webgl", func(c *schemas.InjectionConfig) { c.SpoofWebGL = false }, "WebGL fingerprint spoofing"},
		{"audio", func(c *schemas.InjectionConfig) { c.SpoofAudio = false }, "AudioContext fingerprint spoofing"},
		{"timezone", func(c *schemas.InjectionConfig) { c.SpoofTimezone = false }, "Timezone spoofing"},
		{"webrtc", func(c *schemas.InjectionConfig) { c.BlockWebRTC = false }, "WebRTC IP leak prevention"},
		{"fonts", func(c *schemas.InjectionConfig) { c.SpoofFonts = false }, "Font enumeration spoofing"},
		{"plugins", func(c *schemas.InjectionConfig) { c.SpoofPlugins = false }, "Plugin spoofing"},
		{"battery", func(c *schemas.InjectionConfig) { c.SpoofBattery = false }, "Battery API spoofing"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := schemas.FullInjectionConfig()
			tc.mutate(&cfg)
			script := Synthesize(fp, cfg)
			assert.NotContains(t, script, tc.marker)

			// The remaining blocks must still run cleanly without it.
			_, err := Verify(script)
			assert.NoError(t, err)
		})
	}
}

func TestNoiseSeedStability(t *testing.T) {
	fp := testFingerprint()
	cfg := schemas.FullInjectionConfig()

	// Same fingerprint, same toggles: byte-identical script, same seeds.
	assert.Equal(t, Synthesize(fp, cfg), Synthesize(fp, cfg))

	// Different fingerprints diverge in their noise seeds.
	other := fp
	other.CanvasSeed = 0x1122334455667788
	assert.NotEqual(t, CanvasNoiseSeed(fp), CanvasNoiseSeed(other))
	assert.NotEqual(t, AudioNoiseSeed(fp), AudioNoiseSeed(other))
	assert.NotEqual(t, Synthesize(fp, cfg), Synthesize(other, cfg))
}

func TestVerifyReportsFingerprintValues(t *testing.T) {
	fp := testFingerprint()
	script := Synthesize(fp, schemas.FullInjectionConfig())

	snap, err := Verify(script)
	require.NoError(t, err)

	var got struct {
		UserAgent           string   `json:"userAgent"`
		Platform            string   `json:"platform"`
		HardwareConcurrency int      `json:"hardwareConcurrency"`
		DeviceMemory        int      `json:"deviceMemory"`
		Languages           []string `json:"languages"`
		ScreenWidth         int      `json:"screenWidth"`
		ScreenHeight        int      `json:"screenHeight"`
		AvailWidth          int      `json:"availWidth"`
		AvailHeight         int      `json:"availHeight"`
		ColorDepth          int      `json:"colorDepth"`
		InnerWidth          int      `json:"innerWidth"`
		InnerHeight         int      `json:"innerHeight"`
		DevicePixelRatio    float64  `json:"devicePixelRatio"`
		TimezoneOffset      int      `json:"timezoneOffset"`
		FontCheck           bool     `json:"fontCheck"`
	}
	require.NoError(t, json.Unmarshal([]byte(snap), &got))

	assert.Equal(t, fp.UserAgent, got.UserAgent)
	assert.Equal(t, fp.Platform, got.Platform)
	assert.Equal(t, fp.HardwareConcurrency, got.HardwareConcurrency)
	assert.Equal(t, fp.DeviceMemory, got.DeviceMemory)
	assert.Equal(t, fp.Languages, got.Languages)
	assert.Equal(t, fp.Screen.Width, got.ScreenWidth)
	assert.Equal(t, fp.Screen.Height, got.ScreenHeight)
	assert.Equal(t, fp.Screen.AvailableWidth, got.AvailWidth)
	assert.Equal(t, fp.Screen.AvailableHeight, got.AvailHeight)
	assert.Equal(t, fp.ColorDepth, got.ColorDepth)
	assert.Equal(t, fp.Screen.AvailableWidth, got.InnerWidth)
	assert.Equal(t, fp.Screen.AvailableHeight, got.InnerHeight)
	assert.Equal(t, fp.Screen.PixelRatio, got.DevicePixelRatio)
	assert.Equal(t, fp.TimezoneOffset, got.TimezoneOffset)
	assert.False(t, got.FontCheck, "non-allow-listed font must be reported absent")
}

func TestVerifyGeneratedFingerprints(t *testing.T) {
	// Any generated fingerprint must synthesize into a script that survives
	// double evaluation.
	for i := 0; i < 25; i++ {
		fp := fingerprint.Generate()
		_, err := Verify(Synthesize(fp, schemas.FullInjectionConfig()))
		require.NoError(t, err, "fingerprint %s", fp.ID)
	}
}

func TestSynthesizeEmptyConfig(t *testing.T) {
	script := Synthesize(testFingerprint(), schemas.InjectionConfig{})
	assert.True(t, strings.HasPrefix(script, "(function() {"))
	assert.NotContains(t, script, "spoofing")
	_, err := Verify(script)
	assert.NoError(t, err)
}
