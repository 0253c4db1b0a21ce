package wifi

import "strings"

// QuoteSSID wraps an SSID in literal double quotes, the way some network
// stores keep it.
func QuoteSSID(ssid string) string {
	return `"` + ssid + `"`
}

// NormalizeSSID strips one pair of surrounding double quotes, if present.
// Both stored and requested SSIDs go through it before comparison.
func NormalizeSSID(ssid string) string {
	if len(ssid) >= 2 && strings.HasPrefix(ssid, `"`) && strings.HasSuffix(ssid, `"`) {
		return ssid[1 : len(ssid)-1]
	}
	return ssid
}

// SameSSID compares two SSIDs after normalization.
func SameSSID(a, b string) bool {
	return NormalizeSSID(a) == NormalizeSSID(b)
}
