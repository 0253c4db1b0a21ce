package mock

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shazow/wifibridge/wifi"
)

var DefaultActionSleep = 500 * time.Millisecond

// MockManager is an in-memory implementation of wifi.Manager for testing.
// Like wpa_supplicant, it stores configured SSIDs wrapped in quotes.
type MockManager struct {
	mu sync.Mutex

	VisibleNetworks    []wifi.ScanRecord
	ConfiguredList     []wifi.NetworkConfig
	WirelessEnabled    bool
	NextID             int
	ExclusiveNetworkID int
	Saved              int

	// RadioDelay is how many IsWifiEnabled polls pass after SetWifiEnabled(true)
	// before the radio reports as enabled.
	RadioDelay   int
	pendingRadio int

	StartScanError          error
	ScanResultsError        error
	ConfiguredNetworksError error
	AddNetworkError         error
	EnableNetworkError      error
	DisableNetworkError     error
	SetWifiEnabledError     error
	SaveError               error
	SubscribeError          error
	// RejectAdd makes AddNetwork return -1, the way the OS rejects a config.
	RejectAdd bool
	// ScanNeverCompletes suppresses scan notifications.
	ScanNeverCompletes bool
	// Randomize re-rolls signal levels on every scan.
	Randomize bool

	// ActionSleep is a delay before every action, to better emulate a real-world backend. Set to 0 during testing.
	ActionSleep time.Duration

	subscribers map[int]func()
	nextSub     int
	addCalls    int
	scanCalls   int
}

// New creates a new MockManager with a list of fun wifi networks.
func New() (*MockManager, error) {
	visible := []wifi.ScanRecord{
		{SSID: "TacoBoutAGoodSignal", BSSID: "00:11:22:33:44:01", Capabilities: "[WPA2-PSK-CCMP][ESS]", Frequency: 5180, Level: -42},
		{SSID: "Password is password", BSSID: "00:11:22:33:44:02", Capabilities: "[WPA2-PSK-CCMP][ESS]", Frequency: 2412, Level: -51},
		{SSID: "Multi-AP Network", BSSID: "00:11:22:33:44:55", Capabilities: "[WPA2-PSK-CCMP+TKIP][ESS]", Frequency: 2412, Level: -58},
		{SSID: "Multi-AP Network", BSSID: "AA:BB:CC:DD:EE:FF", Capabilities: "[WPA2-PSK-CCMP+TKIP][ESS]", Frequency: 5180, Level: -66},
		{SSID: "NeverGonnaGiveYouIP", BSSID: "00:11:22:33:44:03", Capabilities: "[WEP][ESS]", Frequency: 2437, Level: -70},
		{SSID: "Unencrypted_Honeypot", BSSID: "00:11:22:33:44:04", Capabilities: "[ESS]", Frequency: 2462, Level: -74},
		{SSID: "Dunder MiffLAN", BSSID: "00:11:22:33:44:05", Capabilities: "[WPA-PSK-TKIP][WPA2-PSK-CCMP][ESS]", Frequency: 5240, Level: -81},
	}
	configured := []wifi.NetworkConfig{
		wifiPSK(1, "HideYoKidsHideYoWiFi", "hidden"),
		wifiPSK(2, "Password is password", "password"),
	}

	return &MockManager{
		VisibleNetworks: visible,
		ConfiguredList:  configured,
		WirelessEnabled: true,
		NextID:          3,
		Randomize:       true,
		ActionSleep:     DefaultActionSleep,
	}, nil
}

// NewEmpty creates a MockManager with no networks and no action delay.
func NewEmpty() *MockManager {
	return &MockManager{
		WirelessEnabled: true,
		NextID:          1,
	}
}

func wifiPSK(id int, ssid, secret string) wifi.NetworkConfig {
	c := wifi.NewPSKConfig(wifi.QuoteSSID(ssid), wifi.QuoteSSID(secret))
	c.ID = id
	return c
}

// AddConfigured adds a configured network with the given id, storing the
// SSID quoted.
func (m *MockManager) AddConfigured(id int, ssid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfiguredList = append(m.ConfiguredList, wifiPSK(id, ssid, ""))
	if id >= m.NextID {
		m.NextID = id + 1
	}
}

// AddCalls returns how many times AddNetwork was called.
func (m *MockManager) AddCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCalls
}

// ScanCalls returns how many times StartScan was called.
func (m *MockManager) ScanCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanCalls
}

// Subscribers returns the number of active scan subscriptions.
func (m *MockManager) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// IsEnabled reports whether the configured network id is enabled.
func (m *MockManager) IsEnabled(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.ConfiguredList {
		if c.ID == id {
			return c.Enabled
		}
	}
	return false
}

func (m *MockManager) IsWifiEnabled() (bool, error) {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.WirelessEnabled && m.pendingRadio > 0 {
		m.pendingRadio--
		if m.pendingRadio == 0 {
			m.WirelessEnabled = true
		}
	}
	return m.WirelessEnabled, nil
}

func (m *MockManager) SetWifiEnabled(enabled bool) error {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetWifiEnabledError != nil {
		return m.SetWifiEnabledError
	}
	if enabled && m.RadioDelay > 0 {
		m.pendingRadio = m.RadioDelay
		return nil
	}
	m.WirelessEnabled = enabled
	return nil
}

func (m *MockManager) StartScan() error {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	m.scanCalls++
	if m.StartScanError != nil {
		m.mu.Unlock()
		return m.StartScanError
	}
	if !m.WirelessEnabled {
		m.mu.Unlock()
		return wifi.ErrWirelessDisabled
	}

	// For mock, we can re-randomize levels on each scan
	if m.Randomize {
		s := rand.NewSource(time.Now().UnixNano())
		r := rand.New(s)
		for i := range m.VisibleNetworks {
			m.VisibleNetworks[i].Level = -30 - r.Intn(60)
		}
	}
	never := m.ScanNeverCompletes
	m.mu.Unlock()

	if !never {
		go m.notify()
	}
	return nil
}

func (m *MockManager) notify() {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	subs := make([]func(), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	// Called without the lock held so subscribers can unsubscribe.
	for _, fn := range subs {
		fn()
	}
}

// CompleteScan delivers a scan notification to all subscribers.
func (m *MockManager) CompleteScan() {
	m.notify()
}

func (m *MockManager) SubscribeScanResults(fn func()) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubscribeError != nil {
		return nil, m.SubscribeError
	}
	if m.subscribers == nil {
		m.subscribers = make(map[int]func())
	}
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}, nil
}

func (m *MockManager) ScanResults() ([]wifi.ScanRecord, error) {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScanResultsError != nil {
		return nil, m.ScanResultsError
	}
	records := make([]wifi.ScanRecord, len(m.VisibleNetworks))
	copy(records, m.VisibleNetworks)
	return records, nil
}

func (m *MockManager) ConfiguredNetworks() ([]wifi.NetworkConfig, error) {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConfiguredNetworksError != nil {
		return nil, m.ConfiguredNetworksError
	}
	networks := make([]wifi.NetworkConfig, len(m.ConfiguredList))
	copy(networks, m.ConfiguredList)
	return networks, nil
}

func (m *MockManager) AddNetwork(cfg wifi.NetworkConfig) (int, error) {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.AddNetworkError != nil {
		return wifi.InvalidNetworkID, m.AddNetworkError
	}
	if m.RejectAdd {
		return wifi.InvalidNetworkID, nil
	}

	cfg.ID = m.NextID
	m.NextID++
	cfg.SSID = wifi.QuoteSSID(wifi.NormalizeSSID(cfg.SSID))
	cfg.Secret = wifi.QuoteSSID(cfg.Secret)
	cfg.Enabled = false
	m.ConfiguredList = append(m.ConfiguredList, cfg)
	return cfg.ID, nil
}

func (m *MockManager) EnableNetwork(id int, exclusive bool) error {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnableNetworkError != nil {
		return m.EnableNetworkError
	}
	found := false
	for i := range m.ConfiguredList {
		if m.ConfiguredList[i].ID == id {
			m.ConfiguredList[i].Enabled = true
			found = true
		} else if exclusive {
			m.ConfiguredList[i].Enabled = false
		}
	}
	if !found {
		return fmt.Errorf("cannot enable unknown network %d: %w", id, wifi.ErrNotFound)
	}
	if exclusive {
		m.ExclusiveNetworkID = id
	}
	return nil
}

func (m *MockManager) DisableNetwork(id int) error {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DisableNetworkError != nil {
		return m.DisableNetworkError
	}
	for i := range m.ConfiguredList {
		if m.ConfiguredList[i].ID == id {
			m.ConfiguredList[i].Enabled = false
			if m.ExclusiveNetworkID == id {
				m.ExclusiveNetworkID = 0
			}
			return nil
		}
	}
	return fmt.Errorf("cannot disable unknown network %d: %w", id, wifi.ErrNotFound)
}

func (m *MockManager) SaveConfiguration() error {
	time.Sleep(m.ActionSleep)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Saved++
	return nil
}

var (
	_ wifi.Manager      = (*MockManager)(nil)
	_ wifi.ScanNotifier = (*MockManager)(nil)
)
