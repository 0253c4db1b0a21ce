package render

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/shazow/wifibridge/wifi"
)

var wifiEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

// EscapeWifiString escapes the characters reserved by the WIFI: URI format.
func EscapeWifiString(s string) string {
	return wifiEscaper.Replace(s)
}

// WifiURI builds a WIFI: connection string for ssid.
func WifiURI(ssid, secret string, auth wifi.AuthType, hidden bool) string {
	var b strings.Builder
	b.WriteString("WIFI:S:")
	b.WriteString(EscapeWifiString(wifi.NormalizeSSID(ssid)))
	b.WriteString(";")

	switch auth {
	case wifi.AuthWPA, wifi.AuthWEP:
		b.WriteString("T:")
		b.WriteString(auth.String())
		b.WriteString(";P:")
		b.WriteString(EscapeWifiString(secret))
		b.WriteString(";")
	case wifi.AuthOpen:
		b.WriteString("T:nopass;")
	}

	if hidden {
		b.WriteString("H:true;")
	}
	b.WriteString(";")
	return b.String()
}

// WifiQRCode renders the connection string for ssid as a terminal QR code.
func WifiQRCode(ssid, secret string, auth wifi.AuthType, hidden bool) (string, error) {
	q, err := qrcode.New(WifiURI(ssid, secret, auth, hidden), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
