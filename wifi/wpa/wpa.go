// Package wpa implements wifi.Manager by talking to wpa_supplicant over
// D-Bus.
package wpa

import (
	"log/slog"
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifibridge/wifi"
)

const (
	service       = "fi.w1.wpa_supplicant1"
	rootPath      = dbus.ObjectPath("/fi/w1/wpa_supplicant1")
	ifaceName     = service + ".Interface"
	bssName       = service + ".BSS"
	networkName   = service + ".Network"
	stateDisabled = "interface_disabled"
)

// bus is the part of *dbus.Conn the manager needs.
type bus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Manager implements wifi.Manager for one wpa_supplicant interface.
type Manager struct {
	conn   bus
	obj    dbus.BusObject
	logger *slog.Logger
}

var (
	_ wifi.Manager      = (*Manager)(nil)
	_ wifi.ScanNotifier = (*Manager)(nil)
)

// New connects to wpa_supplicant on the system bus and looks up ifname.
func New(ifname string, logger *slog.Logger) (*Manager, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, errors.Errorf("could not connect to system bus: %w", wifi.ErrNotAvailable)
	}
	return newManager(conn, ifname, logger)
}

func newManager(conn bus, ifname string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var path dbus.ObjectPath
	call := conn.Object(service, rootPath).Call(service+".GetInterface", 0, ifname)
	if call.Err != nil {
		return nil, errors.Errorf("could not find interface %s: %w", ifname, wifi.ErrNotFound)
	}
	if err := call.Store(&path); err != nil {
		return nil, errors.Errorf("could not store interface path: %v", err)
	}

	return &Manager{
		conn:   conn,
		obj:    conn.Object(service, path),
		logger: logger.With("backend", "wpa", "interface", ifname),
	}, nil
}

func (m *Manager) state() (string, error) {
	v, err := m.obj.GetProperty(ifaceName + ".State")
	if err != nil {
		return "", errors.Errorf("could not get state: %w", wifi.ErrOperationFailed)
	}
	s, _ := v.Value().(string)
	return s, nil
}

func (m *Manager) IsWifiEnabled() (bool, error) {
	s, err := m.state()
	if err != nil {
		return false, err
	}
	return s != stateDisabled, nil
}

// SetWifiEnabled only succeeds when the radio is already in the requested
// state: wpa_supplicant cannot toggle rfkill.
func (m *Manager) SetWifiEnabled(enabled bool) error {
	on, err := m.IsWifiEnabled()
	if err != nil {
		return err
	}
	if on == enabled {
		return nil
	}
	return errors.Errorf("wpa_supplicant cannot change radio state: %w", wifi.ErrNotSupported)
}

func (m *Manager) StartScan() error {
	on, err := m.IsWifiEnabled()
	if err != nil {
		return err
	}
	if !on {
		return wifi.ErrWirelessDisabled
	}
	call := m.obj.Call(ifaceName+".Scan", 0, map[string]interface{}{
		"Type": "active",
	})
	if call.Err != nil {
		return errors.Errorf("could not scan: %v", call.Err)
	}
	return nil
}

// SubscribeScanResults calls fn on every successful ScanDone signal.
func (m *Manager) SubscribeScanResults(fn func()) (func(), error) {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(m.obj.Path()),
		dbus.WithMatchInterface(ifaceName),
		dbus.WithMatchMember("ScanDone"),
	}
	if err := m.conn.AddMatchSignal(match...); err != nil {
		return nil, errors.Errorf("could not add signal: %v", err)
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
				if sig == nil || sig.Path != m.obj.Path() || sig.Name != ifaceName+".ScanDone" {
					continue
				}
				if len(sig.Body) > 0 {
					if ok, _ := sig.Body[0].(bool); !ok {
						m.logger.Debug("scan reported failure")
						continue
					}
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

func (m *Manager) paths(property string) ([]dbus.ObjectPath, error) {
	v, err := m.obj.GetProperty(ifaceName + "." + property)
	if err != nil {
		return nil, errors.Errorf("could not get %s: %w", property, wifi.ErrOperationFailed)
	}
	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert %s: %v", property, v)
	}
	return paths, nil
}

func (m *Manager) ScanResults() ([]wifi.ScanRecord, error) {
	paths, err := m.paths("BSSs")
	if err != nil {
		return nil, err
	}

	records := make([]wifi.ScanRecord, 0, len(paths))
	for _, p := range paths {
		call := m.conn.Object(service, p).Call("org.freedesktop.DBus.Properties.GetAll", 0, bssName)
		if call.Err != nil {
			m.logger.Debug("skipping bss", "path", p, "error", call.Err)
			continue
		}
		var props map[string]dbus.Variant
		if err := call.Store(&props); err != nil {
			continue
		}
		rec, err := bssRecord(props)
		if err != nil {
			m.logger.Debug("skipping bss", "path", p, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (m *Manager) ConfiguredNetworks() ([]wifi.NetworkConfig, error) {
	paths, err := m.paths("Networks")
	if err != nil {
		return nil, err
	}

	var networks []wifi.NetworkConfig
	for _, p := range paths {
		id, ok := networkID(m.obj.Path(), p)
		if !ok {
			continue
		}
		obj := m.conn.Object(service, p)
		v, err := obj.GetProperty(networkName + ".Properties")
		if err != nil {
			continue
		}
		props, ok := v.Value().(map[string]dbus.Variant)
		if !ok {
			continue
		}
		cfg := networkConfig(id, props)
		if e, err := obj.GetProperty(networkName + ".Enabled"); err == nil {
			cfg.Enabled, _ = e.Value().(bool)
		}
		networks = append(networks, cfg)
	}
	return networks, nil
}

func (m *Manager) AddNetwork(cfg wifi.NetworkConfig) (int, error) {
	call := m.obj.Call(ifaceName+".AddNetwork", 0, addNetworkArgs(cfg))
	if call.Err != nil {
		return wifi.InvalidNetworkID, errors.Errorf("could not add network: %v", call.Err)
	}
	var p dbus.ObjectPath
	if err := call.Store(&p); err != nil {
		return wifi.InvalidNetworkID, errors.Errorf("could not store value: %v", err)
	}
	id, ok := networkID(m.obj.Path(), p)
	if !ok {
		return wifi.InvalidNetworkID, errors.Errorf("unexpected network path %s: %w", p, wifi.ErrOperationFailed)
	}
	return id, nil
}

func (m *Manager) network(id int) (dbus.BusObject, error) {
	p, ok := networkPath(m.obj.Path(), id)
	if !ok {
		return nil, errors.Errorf("network %d: %w", id, wifi.ErrNotFound)
	}
	return m.conn.Object(service, p), nil
}

func (m *Manager) EnableNetwork(id int, exclusive bool) error {
	net, err := m.network(id)
	if err != nil {
		return err
	}
	if exclusive {
		call := m.obj.Call(ifaceName+".SelectNetwork", 0, net.Path())
		if call.Err != nil {
			return errors.Errorf("could not select network %d: %v", id, call.Err)
		}
		return nil
	}
	if err := net.SetProperty(networkName+".Enabled", dbus.MakeVariant(true)); err != nil {
		return errors.Errorf("could not enable network %d: %v", id, err)
	}
	return nil
}

func (m *Manager) DisableNetwork(id int) error {
	net, err := m.network(id)
	if err != nil {
		return err
	}
	if err := net.SetProperty(networkName+".Enabled", dbus.MakeVariant(false)); err != nil {
		return errors.Errorf("could not disable network %d: %v", id, err)
	}
	return nil
}

func (m *Manager) SaveConfiguration() error {
	call := m.obj.Call(ifaceName+".SaveConfig", 0)
	if call.Err != nil {
		return errors.Errorf("could not save config: %v", call.Err)
	}
	return nil
}
