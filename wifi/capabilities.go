package wifi

import "strings"

// SecurityInfo describes what an access point advertises. Key management and
// cipher names are upper case, e.g. "PSK", "EAP", "CCMP", "TKIP".
type SecurityInfo struct {
	WPAKeyMgmt []string
	WPACiphers []string
	RSNKeyMgmt []string
	RSNCiphers []string
	Privacy    bool
}

// Capabilities renders s in the bracketed form used in scan records, e.g.
// "[WPA-PSK-TKIP][WPA2-PSK-CCMP][ESS]".
func (s SecurityInfo) Capabilities() string {
	var b strings.Builder
	writeSuite(&b, "WPA", s.WPAKeyMgmt, s.WPACiphers)
	writeSuite(&b, "WPA2", s.RSNKeyMgmt, s.RSNCiphers)
	if b.Len() == 0 && s.Privacy {
		b.WriteString("[WEP]")
	}
	b.WriteString("[ESS]")
	return b.String()
}

func writeSuite(b *strings.Builder, proto string, keyMgmt, ciphers []string) {
	if len(keyMgmt) == 0 {
		return
	}
	b.WriteString("[")
	b.WriteString(proto)
	b.WriteString("-")
	b.WriteString(strings.Join(keyMgmt, "+"))
	if len(ciphers) > 0 {
		b.WriteString("-")
		b.WriteString(strings.Join(ciphers, "+"))
	}
	b.WriteString("]")
}

// AuthFromCapabilities guesses the auth type of a scan record.
func AuthFromCapabilities(capabilities string) AuthType {
	switch {
	case strings.Contains(capabilities, "[WPA"), strings.Contains(capabilities, "[RSN"):
		return AuthWPA
	case strings.Contains(capabilities, "[WEP"):
		return AuthWEP
	}
	return AuthOpen
}
