package browserctx

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// LaunchOptions tunes the allocator independently of the per-context flags.
type LaunchOptions struct {
	Headless   bool
	BinaryPath string
	ProxyURL   string
}

// binaryCandidates are probed in order when no binary path is configured.
var binaryCandidates = []string{
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/snap/bin/chromium",
	"/usr/lib/chromium/chromium",
	"/var/lib/flatpak/exports/bin/org.chromium.Chromium",
}

// DetectBinary locates a Chromium executable, falling back to PATH lookup.
// Returns an empty string when nothing is found, letting chromedp use its
// own discovery.
func DetectBinary() string {
	for _, candidate := range binaryCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	for _, name := range []string{"chromium-browser", "chromium", "google-chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// AllocatorOptions merges chromedp's defaults with the context's isolation
// flags and the launch options.
func AllocatorOptions(c *Context, launch LaunchOptions, logger *zap.Logger) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	if launch.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if launch.BinaryPath != "" {
		opts = append(opts, chromedp.ExecPath(launch.BinaryPath))
	} else if path := DetectBinary(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	opts = append(opts,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", launch.Headless),
	)

	for _, flag := range c.ChromiumFlags() {
		name, value := splitFlag(flag)
		switch name {
		case "user-data-dir":
			opts = append(opts, chromedp.UserDataDir(value))
		case "user-agent":
			opts = append(opts, chromedp.UserAgent(value))
		default:
			if value == "" {
				opts = append(opts, chromedp.Flag(name, true))
			} else {
				opts = append(opts, chromedp.Flag(name, value))
			}
		}
	}

	if launch.ProxyURL != "" {
		if _, err := url.Parse(launch.ProxyURL); err == nil {
			opts = append(opts, chromedp.ProxyServer(launch.ProxyURL))
		} else if logger != nil {
			logger.Error("Invalid proxy URL, launching without proxy",
				zap.String("proxy_url", launch.ProxyURL))
		}
	}

	return opts
}

func splitFlag(flag string) (name, value string) {
	trimmed := strings.TrimPrefix(flag, "--")
	if i := strings.IndexByte(trimmed, '='); i >= 0 {
		return trimmed[:i], trimmed[i+1:]
	}
	return trimmed, ""
}

// PersistentScript returns an action registering the spoof script so it
// evaluates before any document in every new frame.
func PersistentScript(script string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	})
}
