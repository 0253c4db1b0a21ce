//go:build linux

// Package networkmanager implements wifi.Manager on top of NetworkManager's
// D-Bus API.
package networkmanager

import (
	"fmt"
	"log/slog"
	"sync"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/shazow/wifibridge/wifi"
)

const (
	wirelessType        = "802-11-wireless"
	wirelessInterface   = "org.freedesktop.NetworkManager.Device.Wireless"
	propertiesInterface = "org.freedesktop.DBus.Properties"
)

// Manager implements wifi.Manager using NetworkManager.
type Manager struct {
	NM       gonetworkmanager.NetworkManager
	Settings gonetworkmanager.Settings
	// Interface restricts the manager to one wireless device. Empty picks
	// the first one.
	Interface string

	conn   *dbus.Conn
	logger *slog.Logger
	ids    *idTable

	mu     sync.Mutex
	device gonetworkmanager.DeviceWireless
}

var (
	_ wifi.Manager      = (*Manager)(nil)
	_ wifi.ScanNotifier = (*Manager)(nil)
)

// New connects to NetworkManager on the system bus.
func New(iface string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager client: %w", wifi.ErrNotAvailable)
	}
	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", wifi.ErrOperationFailed)
	}
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", wifi.ErrNotAvailable)
	}

	m := &Manager{
		NM:        nm,
		Settings:  settings,
		Interface: iface,
		conn:      conn,
		logger:    logger.With("backend", "networkmanager"),
		ids:       newIDTable(),
	}
	if _, err := m.wirelessDevice(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) wirelessDevice() (gonetworkmanager.DeviceWireless, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		return m.device, nil
	}

	devices, err := m.NM.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", wifi.ErrOperationFailed)
	}
	for _, device := range devices {
		dev, ok := device.(gonetworkmanager.DeviceWireless)
		if !ok {
			continue
		}
		if m.Interface != "" {
			name, err := dev.GetPropertyInterface()
			if err != nil || name != m.Interface {
				continue
			}
		}
		m.device = dev
		return dev, nil
	}
	return nil, fmt.Errorf("no wireless device found: %w", wifi.ErrNotFound)
}

func (m *Manager) IsWifiEnabled() (bool, error) {
	return m.NM.GetPropertyWirelessEnabled()
}

// SetWifiEnabled does not wait for the radio: not all versions of
// NetworkManager emit a signal for the change.
// See: https://github.com/Wifx/gonetworkmanager/pull/14
func (m *Manager) SetWifiEnabled(enabled bool) error {
	return m.NM.SetPropertyWirelessEnabled(enabled)
}

func (m *Manager) StartScan() error {
	enabled, err := m.IsWifiEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		return wifi.ErrWirelessDisabled
	}
	dev, err := m.wirelessDevice()
	if err != nil {
		return err
	}
	return dev.RequestScan()
}

// SubscribeScanResults calls fn whenever the device's LastScan property
// changes.
func (m *Manager) SubscribeScanResults(fn func()) (func(), error) {
	if m.conn == nil {
		return nil, fmt.Errorf("no bus connection: %w", wifi.ErrNotSupported)
	}
	dev, err := m.wirelessDevice()
	if err != nil {
		return nil, err
	}

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(dev.GetPath()),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
	if err := m.conn.AddMatchSignal(match...); err != nil {
		return nil, fmt.Errorf("could not add signal: %w", err)
	}

	signals := make(chan *dbus.Signal, 10)
	done := make(chan struct{})
	m.conn.Signal(signals)

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-signals:
				if sig == nil || sig.Path != dev.GetPath() || !lastScanChanged(sig) {
					continue
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.conn.RemoveSignal(signals)
			_ = m.conn.RemoveMatchSignal(match...)
			close(done)
		})
	}, nil
}

func lastScanChanged(sig *dbus.Signal) bool {
	if sig.Name != propertiesInterface+".PropertiesChanged" || len(sig.Body) < 2 {
		return false
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != wirelessInterface {
		return false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return false
	}
	_, ok = changed["LastScan"]
	return ok
}

func (m *Manager) ScanResults() ([]wifi.ScanRecord, error) {
	dev, err := m.wirelessDevice()
	if err != nil {
		return nil, err
	}
	aps, err := dev.GetAccessPoints()
	if err != nil {
		return nil, fmt.Errorf("failed to get access points: %w", wifi.ErrOperationFailed)
	}

	records := make([]wifi.ScanRecord, 0, len(aps))
	for _, ap := range aps {
		ssid, err := ap.GetPropertySSID()
		if err != nil {
			m.logger.Debug("skipping access point", "path", ap.GetPath(), "error", err)
			continue
		}
		bssid, _ := ap.GetPropertyHWAddress()
		freq, _ := ap.GetPropertyFrequency()
		strength, _ := ap.GetPropertyStrength()
		flags, _ := ap.GetPropertyFlags()
		wpaFlags, _ := ap.GetPropertyWPAFlags()
		rsnFlags, _ := ap.GetPropertyRSNFlags()

		records = append(records, wifi.ScanRecord{
			SSID:         ssid,
			BSSID:        bssid,
			Capabilities: securityInfo(uint32(flags), uint32(wpaFlags), uint32(rsnFlags)).Capabilities(),
			Frequency:    int(freq),
			Level:        strengthToLevel(uint8(strength)),
		})
	}
	return records, nil
}

func (m *Manager) ConfiguredNetworks() ([]wifi.NetworkConfig, error) {
	conns, err := m.Settings.ListConnections()
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", wifi.ErrOperationFailed)
	}

	var networks []wifi.NetworkConfig
	for _, c := range conns {
		s, err := c.GetSettings()
		if err != nil {
			continue
		}
		wireless, ok := s[wirelessType]
		if !ok {
			continue
		}
		ssid, ok := wireless["ssid"].([]byte)
		if !ok {
			continue
		}

		cfg := wifi.NetworkConfig{
			ID:      m.ids.id(c.GetPath()),
			SSID:    string(ssid),
			Enabled: true,
		}
		if conn, ok := s["connection"]; ok {
			if ac, ok := conn["autoconnect"].(bool); ok {
				cfg.Enabled = ac
			}
		}
		security, hasSecurity := s["802-11-wireless-security"]
		keyMgmt, _ := security["key-mgmt"].(string)
		cfg.Auth = authFromKeyMgmt(keyMgmt, hasSecurity)
		if cfg.Auth == wifi.AuthWPA {
			cfg.KeyMgmt = wifi.KeyMgmtWPAPSK
		}
		networks = append(networks, cfg)
	}
	return networks, nil
}

func (m *Manager) AddNetwork(cfg wifi.NetworkConfig) (int, error) {
	var iface string
	if dev, err := m.wirelessDevice(); err == nil {
		iface, _ = dev.GetPropertyInterface()
	}

	conn, err := m.Settings.AddConnection(pskSettings(cfg, uuid.New().String(), iface))
	if err != nil {
		return wifi.InvalidNetworkID, fmt.Errorf("failed to add connection: %w", err)
	}
	id := m.ids.id(conn.GetPath())
	m.logger.Debug("added connection", "ssid", wifi.NormalizeSSID(cfg.SSID), "path", conn.GetPath(), "id", id)
	return id, nil
}

func (m *Manager) connection(id int) (gonetworkmanager.Connection, error) {
	path, ok := m.ids.path(id)
	if !ok {
		return nil, fmt.Errorf("network %d: %w", id, wifi.ErrNotFound)
	}
	conns, err := m.Settings.ListConnections()
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", wifi.ErrOperationFailed)
	}
	for _, c := range conns {
		if c.GetPath() == path {
			return c, nil
		}
	}
	m.ids.forget(path)
	return nil, fmt.Errorf("network %d: %w", id, wifi.ErrNotFound)
}

func (m *Manager) EnableNetwork(id int, exclusive bool) error {
	conn, err := m.connection(id)
	if err != nil {
		return err
	}
	dev, err := m.wirelessDevice()
	if err != nil {
		return err
	}

	if err := m.setAutoConnect(conn, true); err != nil {
		m.logger.Warn("failed to set autoconnect", "id", id, "error", err)
	}

	if exclusive {
		active, err := m.activeWireless()
		if err != nil {
			return err
		}
		for path, ac := range active {
			if path == conn.GetPath() {
				continue
			}
			if err := m.NM.DeactivateConnection(ac); err != nil {
				m.logger.Warn("failed to deactivate connection", "path", path, "error", err)
			}
		}
	}

	if _, err := m.NM.ActivateConnection(conn, dev, nil); err != nil {
		return fmt.Errorf("failed to activate network %d: %w", id, wifi.ErrOperationFailed)
	}
	return nil
}

func (m *Manager) DisableNetwork(id int) error {
	conn, err := m.connection(id)
	if err != nil {
		return err
	}
	if err := m.setAutoConnect(conn, false); err != nil {
		m.logger.Warn("failed to clear autoconnect", "id", id, "error", err)
	}

	active, err := m.activeWireless()
	if err != nil {
		return err
	}
	if ac, ok := active[conn.GetPath()]; ok {
		if err := m.NM.DeactivateConnection(ac); err != nil {
			return fmt.Errorf("failed to deactivate network %d: %w", id, wifi.ErrOperationFailed)
		}
	}
	return nil
}

// SaveConfiguration is a no-op: NetworkManager persists connections when
// they are added.
func (m *Manager) SaveConfiguration() error {
	return nil
}

// activeWireless returns the active wireless connections keyed by the path
// of their settings object.
func (m *Manager) activeWireless() (map[dbus.ObjectPath]gonetworkmanager.ActiveConnection, error) {
	actives, err := m.NM.GetPropertyActiveConnections()
	if err != nil {
		return nil, fmt.Errorf("failed to list active connections: %w", wifi.ErrOperationFailed)
	}
	out := make(map[dbus.ObjectPath]gonetworkmanager.ActiveConnection)
	for _, ac := range actives {
		typ, err := ac.GetPropertyType()
		if err != nil || typ != wirelessType {
			continue
		}
		c, err := ac.GetPropertyConnection()
		if err != nil {
			continue
		}
		out[c.GetPath()] = ac
	}
	return out, nil
}

func (m *Manager) setAutoConnect(conn gonetworkmanager.Connection, autoConnect bool) error {
	settings, err := conn.GetSettings()
	if err != nil {
		return err
	}
	if _, ok := settings["connection"]; !ok {
		settings["connection"] = make(map[string]interface{})
	}
	if ac, ok := settings["connection"]["autoconnect"].(bool); ok && ac == autoConnect {
		return nil
	}
	settings["connection"]["autoconnect"] = autoConnect

	applyUpdateWorkaround(settings)
	return conn.Update(settings)
}
