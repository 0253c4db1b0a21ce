package networkmanager

import (
	"strings"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"

	"github.com/shazow/wifibridge/wifi"
)

// apSecKeyMgmtSAE is WPA3-Personal, missing from older constant sets.
const apSecKeyMgmtSAE = 0x400

// strengthToLevel converts NetworkManager's 0-100 strength to dBm.
func strengthToLevel(strength uint8) int {
	return int(strength)/2 - 100
}

// securityInfo decodes the AP flag words.
func securityInfo(flags, wpaFlags, rsnFlags uint32) wifi.SecurityInfo {
	return wifi.SecurityInfo{
		WPAKeyMgmt: keyMgmt(wpaFlags),
		WPACiphers: ciphers(wpaFlags),
		RSNKeyMgmt: keyMgmt(rsnFlags),
		RSNCiphers: ciphers(rsnFlags),
		Privacy:    flags&uint32(gonetworkmanager.Nm80211APFlagsPrivacy) != 0,
	}
}

func keyMgmt(sec uint32) []string {
	var out []string
	if sec&uint32(gonetworkmanager.Nm80211APSecKeyMgmtPSK) != 0 {
		out = append(out, "PSK")
	}
	if sec&uint32(gonetworkmanager.Nm80211APSecKeyMgmt8021X) != 0 {
		out = append(out, "EAP")
	}
	if sec&apSecKeyMgmtSAE != 0 {
		out = append(out, "SAE")
	}
	return out
}

func ciphers(sec uint32) []string {
	var out []string
	if sec&uint32(gonetworkmanager.Nm80211APSecPairCCMP) != 0 {
		out = append(out, "CCMP")
	}
	if sec&uint32(gonetworkmanager.Nm80211APSecPairTKIP) != 0 {
		out = append(out, "TKIP")
	}
	return out
}

// authFromKeyMgmt maps the 802-11-wireless-security key-mgmt setting.
func authFromKeyMgmt(keyMgmt string, hasSecurity bool) wifi.AuthType {
	switch keyMgmt {
	case "wpa-psk", "sae", "wpa-eap":
		return wifi.AuthWPA
	case "none", "ieee8021x":
		return wifi.AuthWEP
	}
	if !hasSecurity {
		return wifi.AuthOpen
	}
	return wifi.AuthUnknown
}

// pskSettings builds the connection settings for a WPA-PSK network.
func pskSettings(cfg wifi.NetworkConfig, uuid, iface string) gonetworkmanager.ConnectionSettings {
	ssid := wifi.NormalizeSSID(cfg.SSID)
	connection := map[string]interface{}{
		"id":          ssid,
		"uuid":        uuid,
		"type":        "802-11-wireless",
		"autoconnect": cfg.Enabled,
	}
	if iface != "" {
		connection["interface-name"] = iface
	}

	security := map[string]interface{}{
		"key-mgmt": "wpa-psk",
		"psk":      wifi.NormalizeSSID(cfg.Secret),
	}
	if len(cfg.Protocols) > 0 {
		security["proto"] = lower(cfg.Protocols)
	}
	if len(cfg.PairwiseCiphers) > 0 {
		security["pairwise"] = lower(cfg.PairwiseCiphers)
	}
	if len(cfg.GroupCiphers) > 0 {
		security["group"] = lower(cfg.GroupCiphers)
	}

	return gonetworkmanager.ConnectionSettings{
		"connection": connection,
		"802-11-wireless": {
			"mode":     "infrastructure",
			"ssid":     []byte(ssid),
			"security": "802-11-wireless-security",
		},
		"802-11-wireless-security": security,
		"ipv4":                     {"method": "auto"},
		"ipv6":                     {"method": "auto"},
	}
}

func lower[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.ToLower(string(v))
	}
	return out
}

// applyUpdateWorkaround drops ipv6 addresses and routes before Update.
//
// NetworkManager returns them as 'aav' but expects 'a(ayuay)' and 'a(ayuayu)'
// on update, so round-tripping fetched settings fails with a type error.
// See: https://github.com/Wifx/gonetworkmanager/issues/13 and https://github.com/godbus/dbus/issues/400
func applyUpdateWorkaround(settings gonetworkmanager.ConnectionSettings) {
	if ipv6Settings, ok := settings["ipv6"]; ok {
		delete(ipv6Settings, "addresses")
		delete(ipv6Settings, "routes")
	}
}
