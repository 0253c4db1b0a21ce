// Package render formats scan results and network credentials for a terminal.
package render

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// Theme contains the colors used for terminal output.
type Theme struct {
	Primary lipgloss.TerminalColor
	Subtle  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Normal  lipgloss.TerminalColor
	Border  lipgloss.TerminalColor

	SignalHigh lipgloss.AdaptiveColor
	SignalLow  lipgloss.AdaptiveColor
}

// NewDefaultTheme creates a new default theme.
func NewDefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#D359E3"},
		Subtle:  lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"},
		Success: lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#81C784"},
		Error:   lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#E57373"},
		Normal:  lipgloss.AdaptiveColor{Light: "#212121", Dark: "#FFFFFF"},
		Border:  lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"},

		SignalHigh: lipgloss.AdaptiveColor{Light: "#00B300", Dark: "#00FF00"},
		SignalLow:  lipgloss.AdaptiveColor{Light: "#D05F00", Dark: "#BC3C00"},
	}
}

// themeColor is either a single color or a [light, dark] pair.
type themeColor struct {
	lipgloss.AdaptiveColor
	set bool
}

func (c *themeColor) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		c.Light, c.Dark = v, v
	case []any:
		if len(v) != 2 {
			return fmt.Errorf("color pair must have 2 entries, got %d", len(v))
		}
		light, ok1 := v[0].(string)
		dark, ok2 := v[1].(string)
		if !ok1 || !ok2 {
			return fmt.Errorf("color pair must be strings")
		}
		c.Light, c.Dark = light, dark
	default:
		return fmt.Errorf("invalid color: %v", v)
	}
	c.set = true
	return nil
}

// terminalColor keeps single colors as plain lipgloss.Color.
func (c themeColor) terminalColor() lipgloss.TerminalColor {
	if c.Light == c.Dark {
		return lipgloss.Color(c.Light)
	}
	return c.AdaptiveColor
}

type themeFile struct {
	Primary    themeColor `toml:"Primary"`
	Subtle     themeColor `toml:"Subtle"`
	Success    themeColor `toml:"Success"`
	Error      themeColor `toml:"Error"`
	Normal     themeColor `toml:"Normal"`
	Border     themeColor `toml:"Border"`
	SignalHigh themeColor `toml:"SignalHigh"`
	SignalLow  themeColor `toml:"SignalLow"`
}

// LoadTheme reads a toml theme from r, overriding the default theme with the
// colors it sets. A nil reader returns the default theme.
func LoadTheme(r io.Reader) (Theme, error) {
	theme := NewDefaultTheme()
	if r == nil {
		return theme, nil
	}

	var tf themeFile
	if _, err := toml.NewDecoder(r).Decode(&tf); err != nil {
		return theme, fmt.Errorf("failed to parse theme: %w", err)
	}

	override := func(dst *lipgloss.TerminalColor, c themeColor) {
		if c.set {
			*dst = c.terminalColor()
		}
	}
	override(&theme.Primary, tf.Primary)
	override(&theme.Subtle, tf.Subtle)
	override(&theme.Success, tf.Success)
	override(&theme.Error, tf.Error)
	override(&theme.Normal, tf.Normal)
	override(&theme.Border, tf.Border)
	if tf.SignalHigh.set {
		theme.SignalHigh = tf.SignalHigh.AdaptiveColor
	}
	if tf.SignalLow.set {
		theme.SignalLow = tf.SignalLow.AdaptiveColor
	}
	return theme, nil
}
