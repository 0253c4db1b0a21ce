package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifibridge/wifi"
)

func TestLoadTheme(t *testing.T) {
	tomlData := `
		Primary = "#FF0000"
		Subtle = ["#00FF00", "#00EE00"]
		SignalHigh = "#008000"
	`

	theme, err := LoadTheme(strings.NewReader(tomlData))
	require.NoError(t, err)

	assert.Equal(t, lipgloss.Color("#FF0000"), theme.Primary)
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#00FF00", Dark: "#00EE00"}, theme.Subtle)
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#008000", Dark: "#008000"}, theme.SignalHigh)
	assert.Equal(t, NewDefaultTheme().Error, theme.Error, "unset colors keep their defaults")
}

func TestLoadTheme_NilReader(t *testing.T) {
	theme, err := LoadTheme(nil)
	require.NoError(t, err)
	assert.Equal(t, NewDefaultTheme(), theme)
}

func TestLoadTheme_Invalid(t *testing.T) {
	_, err := LoadTheme(strings.NewReader(`Primary = ["#000000"]`))
	assert.Error(t, err)

	_, err = LoadTheme(strings.NewReader(`Primary = `))
	assert.Error(t, err)
}

func TestSignalFraction(t *testing.T) {
	assert.Equal(t, 0.0, SignalFraction(-120))
	assert.Equal(t, 0.0, SignalFraction(-100))
	assert.Equal(t, 0.5, SignalFraction(-65))
	assert.Equal(t, 1.0, SignalFraction(-30))
	assert.Equal(t, 1.0, SignalFraction(-10))
}

func TestSignalColor(t *testing.T) {
	theme := NewDefaultTheme()
	assert.Equal(t, lipgloss.Color("#00ff00"), theme.SignalColor(-20, true))
	assert.Equal(t, lipgloss.Color("#bc3c00"), theme.SignalColor(-100, true))
	assert.Equal(t, lipgloss.Color("#00b300"), theme.SignalColor(-30, false))
}

func TestTableRender(t *testing.T) {
	tbl := &Table{Theme: NewDefaultTheme(), Dark: true}
	records := []wifi.ScanRecord{
		{SSID: "Home", BSSID: "00:11:22:33:44:55", Capabilities: "[WPA2-PSK-CCMP][ESS]", Frequency: 2412, Level: -48},
		{SSID: "", BSSID: "66:77:88:99:aa:bb", Capabilities: "[ESS]", Frequency: 5180, Level: -71},
	}

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf, records))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SSID")
	assert.Contains(t, lines[1], "Home")
	assert.Contains(t, lines[1], "WPA2")
	assert.Contains(t, lines[2], "(hidden)")
	assert.Contains(t, lines[2], "open")
}

func TestTableRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Table{Theme: NewDefaultTheme()}).Render(&buf, nil))
	assert.Contains(t, buf.String(), "No networks found")
}

func TestSecurity(t *testing.T) {
	assert.Equal(t, "WPA2", Security("[WPA2-PSK-CCMP][ESS]"))
	assert.Equal(t, "WPA", Security("[WPA-PSK-TKIP][ESS]"))
	assert.Equal(t, "WEP", Security("[WEP][ESS]"))
	assert.Equal(t, "open", Security("[ESS]"))
}

func TestWifiURI(t *testing.T) {
	tests := []struct {
		name   string
		ssid   string
		secret string
		auth   wifi.AuthType
		hidden bool
		want   string
	}{
		{"wpa", "Home", "hunter2", wifi.AuthWPA, false, "WIFI:S:Home;T:WPA;P:hunter2;;"},
		{"open hidden", "Cafe", "", wifi.AuthOpen, true, "WIFI:S:Cafe;T:nopass;H:true;;"},
		{"escaped", `"a;b"`, `p:w,d`, wifi.AuthWPA, false, `WIFI:S:a\;b;T:WPA;P:p\:w\,d;;`},
		{"unknown auth", "X", "", wifi.AuthUnknown, false, "WIFI:S:X;;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WifiURI(tt.ssid, tt.secret, tt.auth, tt.hidden))
		})
	}
}

func TestWifiQRCode(t *testing.T) {
	qr, err := WifiQRCode("Home", "hunter2", wifi.AuthWPA, false)
	require.NoError(t, err)
	assert.NotEmpty(t, qr)
}
