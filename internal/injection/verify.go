package injection

import (
	"fmt"

	"github.com/dop251/goja"
)

// browserShim approximates the slice of the browser environment the spoof
// script touches, enough for an in-process dry run. Blocks that need real
// renderer objects (canvas, WebGL, audio, WebRTC) no-op behind their own
// typeof guards.
const browserShim = `(function(g) {
  if (typeof g.globalThis === 'undefined') { g.globalThis = g; }
  g.window = g;
  function Navigator() {}
  g.Navigator = Navigator;
  g.navigator = new Navigator();
  function Screen() {}
  g.Screen = Screen;
  g.screen = new Screen();
  g.document = {
    fonts: {
      check: function() { return true; }
    }
  };
})(this);`

// snapshotJS reads back every value the script is expected to pin.
const snapshotJS = `JSON.stringify({
  userAgent: navigator.userAgent,
  platform: navigator.platform,
  hardwareConcurrency: navigator.hardwareConcurrency,
  deviceMemory: navigator.deviceMemory,
  languages: navigator.languages,
  screenWidth: screen.width,
  screenHeight: screen.height,
  availWidth: screen.availWidth,
  availHeight: screen.availHeight,
  colorDepth: screen.colorDepth,
  innerWidth: window.innerWidth,
  innerHeight: window.innerHeight,
  devicePixelRatio: window.devicePixelRatio,
  timezoneOffset: new Date().getTimezoneOffset(),
  fontCheck: document.fonts.check('12px "Zapfino"')
})`

// Verify evaluates a synthesized script twice in a fresh runtime and checks
// that the reported introspection values do not drift between evaluations.
// It returns the stable snapshot (a JSON object string) for callers that
// want to assert on individual values.
func Verify(script string) (string, error) {
	vm := goja.New()

	if _, err := vm.RunString(browserShim); err != nil {
		return "", fmt.Errorf("injection: shim setup failed: %w", err)
	}

	if _, err := vm.RunString(script); err != nil {
		return "", fmt.Errorf("injection: script failed on first evaluation: %w", err)
	}
	first, err := snapshot(vm)
	if err != nil {
		return "", err
	}

	// Same-document re-evaluation must be a no-op for reported values.
	if _, err := vm.RunString(script); err != nil {
		return "", fmt.Errorf("injection: script failed on re-evaluation: %w", err)
	}
	second, err := snapshot(vm)
	if err != nil {
		return "", err
	}

	if first != second {
		return "", fmt.Errorf("injection: reported values drifted on re-evaluation:\nfirst:  %s\nsecond: %s", first, second)
	}
	return first, nil
}

func snapshot(vm *goja.Runtime) (string, error) {
	val, err := vm.RunString(snapshotJS)
	if err != nil {
		return "", fmt.Errorf("injection: snapshot failed: %w", err)
	}
	return val.String(), nil
}
