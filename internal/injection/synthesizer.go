// Package injection synthesizes the runtime script that rewrites browser
// introspection APIs to report a fingerprint's values. The embedding engine
// runs the script before any page JavaScript on every new document.
//
// Design rules the synthesizer must hold:
//   - each spoof category is an independent block; concatenation order never
//     matters because no block reads state another block wrote
//   - properties are intercepted one at a time via Object.defineProperty,
//     never by swapping whole objects
//   - canvas/audio signals get sparse deterministic noise, not blanking: a
//     flat signal is itself a linkable signature
//   - the script is safe to evaluate twice on the same document
package injection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/obscuraops/multipass/api/schemas"
)

// CanvasNoiseSeed derives the 32-bit canvas PRNG seed from a fingerprint.
// Stable per fingerprint so the same identity renders the same noise across
// page loads.
func CanvasNoiseSeed(fp schemas.Fingerprint) uint32 {
	return uint32(fp.CanvasSeed & 0xFFFFFFFF)
}

// AudioNoiseSeed derives the audio PRNG seed. Distinct from the canvas seed
// but still fingerprint-stable.
func AudioNoiseSeed(fp schemas.Fingerprint) uint32 {
	return uint32(fp.CanvasSeed % 0xFFFFFFFF)
}

// Synthesize builds the complete spoof script for a fingerprint and toggle
// set. It is total: every fingerprint that satisfies the schema invariants
// produces a valid script.
func Synthesize(fp schemas.Fingerprint, cfg schemas.InjectionConfig) string {
	var b strings.Builder
	b.Grow(8192)

	b.WriteString("(function() {\n'use strict';\n")

	if cfg.SpoofNavigator {
		b.WriteString(navigatorBlock(fp))
	}
	if cfg.SpoofScreen {
		b.WriteString(screenBlock(fp))
	}
	if cfg.SpoofCanvas {
		b.WriteString(canvasBlock(fp))
	}
	if cfg.SpoofWebGL {
		b.WriteString(webglBlock(fp))
	}
	if cfg.SpoofAudio {
		b.WriteString(audioBlock(fp))
	}
	if cfg.SpoofTimezone {
		b.WriteString(timezoneBlock(fp))
	}
	if cfg.BlockWebRTC {
		b.WriteString(webrtcBlock())
	}
	if cfg.SpoofFonts {
		b.WriteString(fontBlock())
	}
	if cfg.SpoofPlugins {
		b.WriteString(pluginBlock())
	}
	if cfg.SpoofBattery {
		b.WriteString(batteryBlock())
	}

	b.WriteString("})();\n")
	return b.String()
}

// js encodes a Go string as a JS string literal.
func js(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}

// jsStrings encodes a string slice as a JS array literal.
func jsStrings(v []string) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

// guarded wraps a body in an idempotence guard keyed by name. Blocks that
// wrap native functions use this so a second evaluation cannot stack wrappers
// and shift the reported signal. The registry property is non-enumerable to
// stay out of casual object walks.
func guarded(name, body string) string {
	return fmt.Sprintf(`(function() {
  var g = (typeof globalThis !== 'undefined') ? globalThis : (typeof window !== 'undefined' ? window : this);
  if (!g.__mxPatched) {
    try { Object.defineProperty(g, '__mxPatched', { value: {}, enumerable: false }); } catch (e) { g.__mxPatched = {}; }
  }
  if (g.__mxPatched[%s]) { return; }
  g.__mxPatched[%s] = true;
%s})();
`, js(name), js(name), body)
}

// mulberry32JS is the seeded PRNG inlined into every block that injects
// noise. Each block carries its own copy so blocks stay order-independent.
const mulberry32JS = `  function mb32(seed) {
    var a = seed >>> 0;
    return function() {
      a = (a + 0x6D2B79F5) >>> 0;
      var t = Math.imul(a ^ (a >>> 15), a | 1);
      t = (t + Math.imul(t ^ (t >>> 7), t | 61)) ^ t;
      return ((t ^ (t >>> 14)) >>> 0) / 4294967296;
    };
  }
`

func navigatorBlock(fp schemas.Fingerprint) string {
	maxTouch := 0
	if fp.TouchSupport {
		maxTouch = 5
	}
	language := "en-US"
	if len(fp.Languages) > 0 {
		language = fp.Languages[0]
	}

	return fmt.Sprintf(`// Navigator spoofing
if (typeof Navigator !== 'undefined') {
  var navProps = {
    userAgent: %s,
    platform: %s,
    hardwareConcurrency: %d,
    deviceMemory: %d,
    maxTouchPoints: %d,
    language: %s,
    languages: %s,
    vendor: 'Google Inc.',
    appVersion: %s.replace('Mozilla/', ''),
    doNotTrack: '1'
  };
  Object.keys(navProps).forEach(function(key) {
    var value = navProps[key];
    try {
      Object.defineProperty(Navigator.prototype, key, {
        get: function() { return value; },
        configurable: true
      });
    } catch (e) {}
  });
  try {
    Object.defineProperty(Navigator.prototype, 'connection', {
      get: function() {
        return { effectiveType: '4g', downlink: 10, rtt: 50, saveData: false };
      },
      configurable: true
    });
  } catch (e) {}
}
`,
		js(fp.UserAgent), js(fp.Platform), fp.HardwareConcurrency,
		fp.DeviceMemory, maxTouch, js(language), jsStrings(fp.Languages),
		js(fp.UserAgent))
}

func screenBlock(fp schemas.Fingerprint) string {
	return fmt.Sprintf(`// Screen spoofing
if (typeof Screen !== 'undefined') {
  var screenProps = {
    width: %d,
    height: %d,
    availWidth: %d,
    availHeight: %d,
    colorDepth: %d,
    pixelDepth: %d
  };
  Object.keys(screenProps).forEach(function(key) {
    var value = screenProps[key];
    try {
      Object.defineProperty(Screen.prototype, key, {
        get: function() { return value; },
        configurable: true
      });
    } catch (e) {}
  });
}
if (typeof window !== 'undefined') {
  var windowProps = {
    innerWidth: %d,
    innerHeight: %d,
    outerWidth: %d,
    outerHeight: %d,
    devicePixelRatio: %g
  };
  Object.keys(windowProps).forEach(function(key) {
    var value = windowProps[key];
    try {
      Object.defineProperty(window, key, {
        get: function() { return value; },
        configurable: true
      });
    } catch (e) {}
  });
}
`,
		fp.Screen.Width, fp.Screen.Height,
		fp.Screen.AvailableWidth, fp.Screen.AvailableHeight,
		fp.ColorDepth, fp.ColorDepth,
		fp.Screen.AvailableWidth, fp.Screen.AvailableHeight,
		fp.Screen.Width, fp.Screen.Height, fp.Screen.PixelRatio)
}

func canvasBlock(fp schemas.Fingerprint) string {
	body := fmt.Sprintf(`  if (typeof HTMLCanvasElement === 'undefined') { return; }
  var CANVAS_SEED = %d;
%s
  // Nudge a sparse, seed-selected subset of pixels by one step. Visually
  // imperceptible, but enough to decouple the hash from the hardware.
  function addNoise(data, threshold) {
    var rng = mb32(CANVAS_SEED);
    for (var i = 0; i < data.length; i += 4) {
      if (rng() > threshold) {
        data[i] = (data[i] + 1) & 0xFF;
        data[i + 1] = (data[i + 1] + 1) & 0xFF;
      }
    }
  }

  var origToDataURL = HTMLCanvasElement.prototype.toDataURL;
  HTMLCanvasElement.prototype.toDataURL = function() {
    var ctx = this.getContext('2d');
    if (ctx) {
      var imageData = ctx.getImageData(0, 0, this.width, this.height);
      addNoise(imageData.data, 0.99);
      ctx.putImageData(imageData, 0, 0);
    }
    return origToDataURL.apply(this, arguments);
  };

  var origToBlob = HTMLCanvasElement.prototype.toBlob;
  HTMLCanvasElement.prototype.toBlob = function() {
    var ctx = this.getContext('2d');
    if (ctx) {
      var imageData = ctx.getImageData(0, 0, this.width, this.height);
      addNoise(imageData.data, 0.99);
      ctx.putImageData(imageData, 0, 0);
    }
    return origToBlob.apply(this, arguments);
  };

  if (typeof CanvasRenderingContext2D !== 'undefined') {
    var origGetImageData = CanvasRenderingContext2D.prototype.getImageData;
    CanvasRenderingContext2D.prototype.getImageData = function() {
      var imageData = origGetImageData.apply(this, arguments);
      addNoise(imageData.data, 0.995);
      return imageData;
    };
  }
`, CanvasNoiseSeed(fp), mulberry32JS)

	return "// Canvas fingerprint spoofing\n" + guarded("canvas", body)
}

func webglBlock(fp schemas.Fingerprint) string {
	body := fmt.Sprintf(`  if (typeof WebGLRenderingContext === 'undefined') { return; }
  var WEBGL_VENDOR = %s;
  var WEBGL_RENDERER = %s;
  var UNMASKED_VENDOR_WEBGL = 0x9245;
  var UNMASKED_RENDERER_WEBGL = 0x9246;

  function patchGetParameter(proto) {
    var orig = proto.getParameter;
    proto.getParameter = function(param) {
      if (param === UNMASKED_VENDOR_WEBGL) { return WEBGL_VENDOR; }
      if (param === UNMASKED_RENDERER_WEBGL) { return WEBGL_RENDERER; }
      return orig.call(this, param);
    };
  }
  patchGetParameter(WebGLRenderingContext.prototype);
  if (typeof WebGL2RenderingContext !== 'undefined') {
    patchGetParameter(WebGL2RenderingContext.prototype);
  }

  var origGetExtension = WebGLRenderingContext.prototype.getExtension;
  WebGLRenderingContext.prototype.getExtension = function(name) {
    var ext = origGetExtension.call(this, name);
    if (name === 'WEBGL_debug_renderer_info' && ext) {
      return new Proxy(ext, {
        get: function(target, prop) {
          if (prop === 'UNMASKED_VENDOR_WEBGL') { return UNMASKED_VENDOR_WEBGL; }
          if (prop === 'UNMASKED_RENDERER_WEBGL') { return UNMASKED_RENDERER_WEBGL; }
          return Reflect.get(target, prop);
        }
      });
    }
    return ext;
  };
`, js(fp.WebGL.Vendor), js(fp.WebGL.Renderer))

	return "// WebGL fingerprint spoofing\n" + guarded("webgl", body)
}

func audioBlock(fp schemas.Fingerprint) string {
	body := fmt.Sprintf(`  if (typeof AnalyserNode === 'undefined') { return; }
  var AUDIO_SEED = %d;
%s
  var origGetFloat = AnalyserNode.prototype.getFloatFrequencyData;
  AnalyserNode.prototype.getFloatFrequencyData = function(array) {
    origGetFloat.call(this, array);
    var rng = mb32(AUDIO_SEED);
    for (var i = 0; i < array.length; i++) {
      array[i] += (rng() - 0.5) * 0.001;
    }
  };

  var origGetByte = AnalyserNode.prototype.getByteFrequencyData;
  AnalyserNode.prototype.getByteFrequencyData = function(array) {
    origGetByte.call(this, array);
    var rng = mb32(AUDIO_SEED + 1);
    for (var i = 0; i < array.length; i++) {
      if (rng() > 0.95) {
        array[i] = (array[i] + 1) & 0xFF;
      }
    }
  };
`, AudioNoiseSeed(fp), mulberry32JS)

	return "// AudioContext fingerprint spoofing\n" + guarded("audio", body)
}

// timezoneName maps an offset onto a plausible IANA zone for Intl callers.
func timezoneName(offsetMinutes int) string {
	switch offsetMinutes {
	case -480:
		return "America/Los_Angeles"
	case -420:
		return "America/Denver"
	case -360:
		return "America/Chicago"
	case -300:
		return "America/New_York"
	case 0:
		return "Europe/London"
	case 60:
		return "Europe/Paris"
	case 120:
		return "Europe/Helsinki"
	default:
		return "UTC"
	}
}

func timezoneBlock(fp schemas.Fingerprint) string {
	intl := guarded("timezone_intl", fmt.Sprintf(`  if (typeof Intl === 'undefined' || !Intl.DateTimeFormat || !Intl.DateTimeFormat.prototype.resolvedOptions) { return; }
  var TZ_NAME = %s;
  var origResolvedOptions = Intl.DateTimeFormat.prototype.resolvedOptions;
  Intl.DateTimeFormat.prototype.resolvedOptions = function() {
    var result = origResolvedOptions.call(this);
    result.timeZone = TZ_NAME;
    return result;
  };
`, js(timezoneName(fp.TimezoneOffset))))

	return fmt.Sprintf(`// Timezone spoofing
Date.prototype.getTimezoneOffset = function() { return %d; };
%s`, fp.TimezoneOffset, intl)
}

func webrtcBlock() string {
	body := `  if (typeof RTCPeerConnection === 'undefined' || typeof window === 'undefined') { return; }
  var OrigRTC = RTCPeerConnection;
  // Relay-only ICE suppresses local and public IP gathering while keeping
  // real-time channels usable through a TURN relay.
  window.RTCPeerConnection = function(config, constraints) {
    if (config) {
      config.iceTransportPolicy = 'relay';
    } else {
      config = { iceTransportPolicy: 'relay' };
    }
    return new OrigRTC(config, constraints);
  };
  window.RTCPeerConnection.prototype = OrigRTC.prototype;
  if (typeof webkitRTCPeerConnection !== 'undefined') {
    window.webkitRTCPeerConnection = window.RTCPeerConnection;
  }
`
	return "// WebRTC IP leak prevention\n" + guarded("webrtc", body)
}

func fontBlock() string {
	body := `  if (typeof document === 'undefined' || !document.fonts || !document.fonts.check) { return; }
  var allowedFonts = {};
  ['Arial', 'Courier New', 'Georgia', 'Helvetica', 'Times New Roman',
   'Trebuchet MS', 'Verdana', 'sans-serif', 'serif', 'monospace'
  ].forEach(function(f) { allowedFonts[f] = true; });

  var origCheck = document.fonts.check.bind(document.fonts);
  document.fonts.check = function(font, text) {
    var family = font.split(',')[0].trim().replace(/['"]/g, '');
    if (!allowedFonts[family]) { return false; }
    return origCheck(font, text);
  };
`
	return "// Font enumeration spoofing\n" + guarded("fonts", body)
}

func pluginBlock() string {
	return `// Plugin spoofing - standard Chrome plugin set
if (typeof Navigator !== 'undefined') {
  try {
    Object.defineProperty(Navigator.prototype, 'plugins', {
      get: function() {
        var plugins = [
          { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
          { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
          { name: 'Native Client', filename: 'internal-nacl-plugin', description: '' }
        ];
        plugins.length = 3;
        return plugins;
      },
      configurable: true
    });
    Object.defineProperty(Navigator.prototype, 'mimeTypes', {
      get: function() {
        var mimes = [
          { type: 'application/pdf', suffixes: 'pdf', description: 'Portable Document Format' }
        ];
        mimes.length = 1;
        return mimes;
      },
      configurable: true
    });
  } catch (e) {}
}
`
}

func batteryBlock() string {
	return `// Battery API spoofing - always desktop-like
if (typeof Navigator !== 'undefined' && Navigator.prototype && typeof Navigator.prototype.getBattery === 'function') {
  Navigator.prototype.getBattery = function() {
    return Promise.resolve({
      charging: true,
      chargingTime: 0,
      dischargingTime: Infinity,
      level: 1.0,
      addEventListener: function() {},
      removeEventListener: function() {}
    });
  };
}
`
}
