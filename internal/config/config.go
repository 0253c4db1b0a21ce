package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/peterbourgon/ff/v3"

	"github.com/shazow/wifibridge/bridge"
	"github.com/shazow/wifibridge/wifi"
)

// EnvPrefix is the prefix of environment variables that override flags.
const EnvPrefix = "WIFIBRIDGE"

// Config holds all application configuration.
type Config struct {
	ConfigFile        string
	Backend           string
	Interface         string
	ScanMode          string
	ScanTimeout       time.Duration
	RadioTimeout      time.Duration
	RadioPollInterval time.Duration
	Exclusive         bool
	DisablePrevious   bool
	Listen            string
	Theme             string
	LogLevel          string
	Trace             bool
	Version           bool
}

// RegisterFlags binds the root flags to c, with their defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "path to toml config file (env: WIFIBRIDGE_CONFIG)")
	fs.StringVar(&c.Backend, "backend", "auto", "wifi backend (auto, networkmanager, wpa)")
	fs.StringVar(&c.Interface, "interface", "wlan0", "wireless interface for the wpa backend")
	fs.StringVar(&c.ScanMode, "scan-mode", "notify", "scan completion mode (notify, snapshot)")
	fs.DurationVar(&c.ScanTimeout, "scan-timeout", 30*time.Second, "max wait for scan results, 0 to wait forever")
	fs.DurationVar(&c.RadioTimeout, "radio-timeout", 10*time.Second, "max wait for the radio to turn on, 0 to not wait")
	fs.DurationVar(&c.RadioPollInterval, "radio-poll", 250*time.Millisecond, "radio state poll interval")
	fs.BoolVar(&c.Exclusive, "exclusive", true, "disable other networks when connecting")
	fs.BoolVar(&c.DisablePrevious, "disable-previous", false, "disable the previously connected network first")
	fs.StringVar(&c.Listen, "listen", "127.0.0.1:8484", "address for the serve command")
	fs.StringVar(&c.Theme, "theme", "", "path to theme toml file")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&c.Trace, "trace", false, "write OpenTelemetry spans to stderr")
	fs.BoolVar(&c.Version, "version", false, "display version")
}

// Options returns the ff options used to parse the root flag set.
func Options() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(TOMLParser),
		ff.WithAllowMissingConfigFile(true),
	}
}

// Parse parses args into c from flags, environment and config file, in
// that order of precedence.
func Parse(fs *flag.FlagSet, args []string, opts ...ff.Option) error {
	return ff.Parse(fs, args, append(Options(), opts...)...)
}

// TOMLParser is an ff.ConfigFileParser for flat toml files. Keys are flag
// names; nested tables are joined with a dash.
func TOMLParser(r io.Reader, set func(name, value string) error) error {
	var m map[string]any
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return setValues("", m, set)
}

func setValues(prefix string, m map[string]any, set func(name, value string) error) error {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "-" + k
		}
		switch v := v.(type) {
		case map[string]any:
			if err := setValues(name, v, set); err != nil {
				return err
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			if err := set(name, strings.Join(parts, ",")); err != nil {
				return err
			}
		default:
			if err := set(name, fmt.Sprint(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// BridgeOptions converts c into dispatcher options.
func (c *Config) BridgeOptions() (bridge.Options, error) {
	mode, err := wifi.ParseScanMode(c.ScanMode)
	if err != nil {
		return bridge.Options{}, err
	}
	return bridge.Options{
		ScanMode:          mode,
		ScanTimeout:       c.ScanTimeout,
		RadioTimeout:      c.RadioTimeout,
		RadioPollInterval: c.RadioPollInterval,
		Exclusive:         c.Exclusive,
		DisablePrevious:   c.DisablePrevious,
	}, nil
}
