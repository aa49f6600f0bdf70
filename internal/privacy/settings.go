package privacy

import "github.com/obscuraops/multipass/api/schemas"

// SettingsForLevel derives the full protection toggle set for a level. The
// table is deterministic: the same level always yields the same settings, so
// toggles are never persisted apart from the level.
func SettingsForLevel(level schemas.OpsecLevel) schemas.PrivacySettings {
	switch level {
	case schemas.OpsecMinimal:
		return schemas.PrivacySettings{
			OpsecLevel: level,
			AutoAdjust: true,
		}
	case schemas.OpsecEnhanced:
		return schemas.PrivacySettings{
			OpsecLevel:             level,
			AutoAdjust:             true,
			BlockTrackers:          true,
			BlockFingerprinting:    true,
			SpoofCanvas:            true,
			SpoofWebGL:             true,
			BlockWebRTC:            true,
			SpoofTimezone:          true,
			SpoofScreen:            true,
			SpoofUserAgent:         true,
			BlockThirdPartyCookies: true,
			ClearCookiesOnClose:    true,
			DNSOverHTTPS:           true,
		}
	case schemas.OpsecMaximum:
		return schemas.PrivacySettings{
			OpsecLevel:             level,
			AutoAdjust:             true,
			BlockTrackers:          true,
			BlockFingerprinting:    true,
			SpoofCanvas:            true,
			SpoofWebGL:             true,
			SpoofAudio:             true,
			BlockWebRTC:            true,
			SpoofTimezone:          true,
			SpoofScreen:            true,
			SpoofUserAgent:         true,
			SpoofFonts:             true,
			BlockThirdPartyCookies: true,
			ClearCookiesOnClose:    true,
			UseTor:                 true,
			DNSOverHTTPS:           true,
		}
	case schemas.OpsecParanoid:
		return schemas.PrivacySettings{
			OpsecLevel: level,
			// Paranoid hands control back to the operator.
			AutoAdjust:             false,
			BlockTrackers:          true,
			BlockFingerprinting:    true,
			SpoofCanvas:            true,
			SpoofWebGL:             true,
			SpoofAudio:             true,
			BlockWebRTC:            true,
			SpoofTimezone:          true,
			SpoofScreen:            true,
			SpoofUserAgent:         true,
			SpoofFonts:             true,
			BlockThirdPartyCookies: true,
			ClearCookiesOnClose:    true,
			UseTor:                 true,
			DNSOverHTTPS:           true,
			BlockJavaScript:        true,
		}
	default: // OpsecStandard
		return schemas.PrivacySettings{
			OpsecLevel:             schemas.OpsecStandard,
			AutoAdjust:             true,
			BlockTrackers:          true,
			BlockWebRTC:            true,
			BlockThirdPartyCookies: true,
			DNSOverHTTPS:           true,
		}
	}
}

// InjectionConfigFor maps the active settings onto the script synthesizer's
// toggle set. Plugin and battery spoofing ride the blanket fingerprinting
// switch since neither has an operator-facing toggle of its own.
func InjectionConfigFor(s schemas.PrivacySettings) schemas.InjectionConfig {
	return schemas.InjectionConfig{
		SpoofNavigator: s.SpoofUserAgent,
		SpoofScreen:    s.SpoofScreen,
		SpoofCanvas:    s.SpoofCanvas,
		SpoofWebGL:     s.SpoofWebGL,
		SpoofAudio:     s.SpoofAudio,
		SpoofTimezone:  s.SpoofTimezone,
		BlockWebRTC:    s.BlockWebRTC,
		SpoofFonts:     s.SpoofFonts,
		SpoofPlugins:   s.BlockFingerprinting,
		SpoofBattery:   s.BlockFingerprinting,
	}
}

// ActiveProtectionCount reports how many protections a settings value has
// enabled, for operator display.
func ActiveProtectionCount(s schemas.PrivacySettings) int {
	count := 0
	for _, on := range []bool{
		s.BlockTrackers, s.BlockFingerprinting, s.SpoofCanvas, s.SpoofWebGL,
		s.SpoofAudio, s.BlockWebRTC, s.SpoofTimezone, s.SpoofScreen,
		s.SpoofUserAgent, s.SpoofFonts, s.BlockThirdPartyCookies,
		s.ClearCookiesOnClose, s.UseTor, s.DNSOverHTTPS, s.BlockJavaScript,
	} {
		if on {
			count++
		}
	}
	return count
}
