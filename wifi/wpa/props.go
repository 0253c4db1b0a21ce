package wpa

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifibridge/wifi"
)

// networkID maps a network object path to a positive id. wpa_supplicant
// numbers networks from 0, which the bridge reserves for "absent", so ids
// are shifted by one.
func networkID(iface, p dbus.ObjectPath) (int, bool) {
	prefix := string(iface) + "/Networks/"
	if !strings.HasPrefix(string(p), prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(p), prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n + 1, true
}

func networkPath(iface dbus.ObjectPath, id int) (dbus.ObjectPath, bool) {
	if id <= 0 {
		return "", false
	}
	p := dbus.ObjectPath(fmt.Sprintf("%s/Networks/%d", iface, id-1))
	return p, p.IsValid()
}

// bssRecord converts the properties of a BSS object.
func bssRecord(props map[string]dbus.Variant) (wifi.ScanRecord, error) {
	var rec wifi.ScanRecord

	v, ok := props["SSID"]
	if !ok {
		return rec, errors.Errorf("mandatory property SSID was missing")
	}
	ssid, ok := v.Value().([]byte)
	if !ok {
		return rec, errors.Errorf("could not convert SSID to string: %v", v)
	}
	rec.SSID = string(ssid)

	if v, ok := props["BSSID"]; ok {
		if bssid, ok := v.Value().([]byte); ok {
			rec.BSSID = net.HardwareAddr(bssid).String()
		}
	}
	if v, ok := props["Frequency"]; ok {
		if f, ok := v.Value().(uint16); ok {
			rec.Frequency = int(f)
		}
	}
	if v, ok := props["Signal"]; ok {
		if s, ok := v.Value().(int16); ok {
			rec.Level = int(s)
		}
	}

	var info wifi.SecurityInfo
	if v, ok := props["Privacy"]; ok {
		info.Privacy, _ = v.Value().(bool)
	}
	info.WPAKeyMgmt, info.WPACiphers = suite(props["WPA"])
	info.RSNKeyMgmt, info.RSNCiphers = suite(props["RSN"])
	rec.Capabilities = info.Capabilities()
	return rec, nil
}

// suite reads the KeyMgmt and Pairwise entries of a WPA or RSN dictionary.
func suite(v dbus.Variant) (keyMgmt, ciphers []string) {
	m, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, nil
	}
	if km, ok := m["KeyMgmt"].Value().([]string); ok {
		for _, k := range km {
			switch k {
			case "wpa-psk", "wpa-psk-sha256", "wpa-ft-psk":
				keyMgmt = appendUnique(keyMgmt, "PSK")
			case "wpa-eap", "wpa-eap-sha256", "wpa-ft-eap":
				keyMgmt = appendUnique(keyMgmt, "EAP")
			case "sae":
				keyMgmt = appendUnique(keyMgmt, "SAE")
			}
		}
	}
	if pw, ok := m["Pairwise"].Value().([]string); ok {
		for _, c := range pw {
			ciphers = appendUnique(ciphers, strings.ToUpper(c))
		}
	}
	return keyMgmt, ciphers
}

func appendUnique(s []string, v string) []string {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// networkConfig converts the Properties of a Network object. Values are
// reported the way wpa_supplicant stores them, so the ssid keeps its quotes.
func networkConfig(id int, props map[string]dbus.Variant) wifi.NetworkConfig {
	str := func(k string) string {
		if v, ok := props[k]; ok {
			s, _ := v.Value().(string)
			return s
		}
		return ""
	}

	cfg := wifi.NetworkConfig{
		ID:      id,
		SSID:    str("ssid"),
		KeyMgmt: wifi.KeyMgmt(str("key_mgmt")),
	}
	switch {
	case strings.Contains(string(cfg.KeyMgmt), "WPA"), strings.Contains(string(cfg.KeyMgmt), "SAE"):
		cfg.Auth = wifi.AuthWPA
	case str("wep_key0") != "":
		cfg.Auth = wifi.AuthWEP
	case cfg.KeyMgmt == wifi.KeyMgmtNone:
		cfg.Auth = wifi.AuthOpen
	}
	for _, c := range strings.Fields(str("pairwise")) {
		cfg.PairwiseCiphers = append(cfg.PairwiseCiphers, wifi.Cipher(c))
	}
	for _, c := range strings.Fields(str("group")) {
		cfg.GroupCiphers = append(cfg.GroupCiphers, wifi.Cipher(c))
	}
	for _, p := range strings.Fields(str("proto")) {
		cfg.Protocols = append(cfg.Protocols, wifi.Protocol(p))
	}
	return cfg
}

// addNetworkArgs builds the AddNetwork dictionary. wpa_supplicant quotes
// string values itself, so ssid and psk are passed bare.
func addNetworkArgs(cfg wifi.NetworkConfig) map[string]interface{} {
	args := map[string]interface{}{
		"ssid": wifi.NormalizeSSID(cfg.SSID),
	}
	if cfg.KeyMgmt == "" || cfg.KeyMgmt == wifi.KeyMgmtNone {
		args["key_mgmt"] = string(wifi.KeyMgmtNone)
		return args
	}

	args["psk"] = wifi.NormalizeSSID(cfg.Secret)
	args["key_mgmt"] = string(cfg.KeyMgmt)
	if len(cfg.PairwiseCiphers) > 0 {
		args["pairwise"] = join(cfg.PairwiseCiphers)
	}
	if len(cfg.GroupCiphers) > 0 {
		args["group"] = join(cfg.GroupCiphers)
	}
	if len(cfg.Protocols) > 0 {
		args["proto"] = join(cfg.Protocols)
	}
	return args
}

func join[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}
