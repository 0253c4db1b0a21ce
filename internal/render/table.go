package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/shazow/wifibridge/wifi"
)

const (
	levelFloor = -100
	levelCeil  = -30
)

// SignalFraction maps a level in dBm onto 0..1.
func SignalFraction(level int) float64 {
	p := float64(level-levelFloor) / float64(levelCeil-levelFloor)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// SignalColor blends the theme's low and high signal colors for level.
func (t Theme) SignalColor(level int, dark bool) lipgloss.Color {
	low, high := t.SignalLow.Light, t.SignalHigh.Light
	if dark {
		low, high = t.SignalLow.Dark, t.SignalHigh.Dark
	}
	start, err := colorful.Hex(low)
	if err != nil {
		return lipgloss.Color(low)
	}
	end, err := colorful.Hex(high)
	if err != nil {
		return lipgloss.Color(high)
	}
	return lipgloss.Color(start.BlendRgb(end, SignalFraction(level)).Hex())
}

// Table writes records as aligned columns.
type Table struct {
	Theme Theme
	// Dark selects the dark variant of adaptive colors.
	Dark bool
}

// NewTable creates a Table that detects the terminal background.
func NewTable(theme Theme) *Table {
	return &Table{Theme: theme, Dark: lipgloss.HasDarkBackground()}
}

// Render writes the records to w.
func (t *Table) Render(w io.Writer, records []wifi.ScanRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, lipgloss.NewStyle().Foreground(t.Theme.Subtle).Render("No networks found"))
		return err
	}

	ssidWidth := len("SSID")
	for _, r := range records {
		ssidWidth = max(ssidWidth, lipgloss.Width(displaySSID(r.SSID)))
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(t.Theme.Primary)
	cell := lipgloss.NewStyle().PaddingRight(2)

	var b strings.Builder
	b.WriteString(header.Render(
		cell.Width(ssidWidth+2).Render("SSID") +
			cell.Width(19).Render("BSSID") +
			cell.Width(7).Render("FREQ") +
			cell.Width(8).Render("LEVEL") +
			"SECURITY"))
	b.WriteString("\n")

	for _, r := range records {
		ssid := cell.Width(ssidWidth + 2).Foreground(t.Theme.Normal).Render(displaySSID(r.SSID))
		if r.SSID == "" {
			ssid = cell.Width(ssidWidth + 2).Foreground(t.Theme.Subtle).Render(displaySSID(r.SSID))
		}
		level := cell.Width(8).Foreground(t.Theme.SignalColor(r.Level, t.Dark)).Render(fmt.Sprintf("%d", r.Level))
		b.WriteString(ssid +
			cell.Width(19).Render(r.BSSID) +
			cell.Width(7).Render(fmt.Sprintf("%d", r.Frequency)) +
			level +
			Security(r.Capabilities))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func displaySSID(ssid string) string {
	if ssid == "" {
		return "(hidden)"
	}
	return ssid
}

// Security summarizes a capabilities string.
func Security(capabilities string) string {
	switch wifi.AuthFromCapabilities(capabilities) {
	case wifi.AuthWPA:
		if strings.Contains(capabilities, "WPA2") || strings.Contains(capabilities, "RSN") {
			return "WPA2"
		}
		return "WPA"
	case wifi.AuthWEP:
		return "WEP"
	}
	return "open"
}
