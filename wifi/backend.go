package wifi

// InvalidNetworkID is returned when a network is not registered.
const InvalidNetworkID = -1

// AuthType represents the authentication scheme of a network.
type AuthType int

const (
	AuthUnknown AuthType = iota
	AuthOpen
	AuthWEP
	AuthWPA
)

func (a AuthType) String() string {
	switch a {
	case AuthOpen:
		return "OPEN"
	case AuthWEP:
		return "WEP"
	case AuthWPA:
		return "WPA"
	}
	return "UNKNOWN"
}

// ParseAuthType maps the bridge spelling of an auth type. Matching is exact.
func ParseAuthType(s string) AuthType {
	switch s {
	case "OPEN":
		return AuthOpen
	case "WEP":
		return AuthWEP
	case "WPA":
		return AuthWPA
	}
	return AuthUnknown
}

// KeyMgmt, Cipher and Protocol use the wpa_supplicant spellings.
type (
	KeyMgmt  string
	Cipher   string
	Protocol string
)

const (
	KeyMgmtNone   KeyMgmt = "NONE"
	KeyMgmtWPAPSK KeyMgmt = "WPA-PSK"

	CipherTKIP Cipher = "TKIP"
	CipherCCMP Cipher = "CCMP"

	ProtocolRSN Protocol = "RSN"
)

// ScanRecord is a single access point seen by the last scan.
type ScanRecord struct {
	SSID         string `json:"ssid"`
	BSSID        string `json:"bssid"`
	Capabilities string `json:"capabilities"`
	Frequency    int    `json:"frequency"` // MHz
	Level        int    `json:"level"`     // dBm
}

// NetworkConfig is an entry of the OS list of configured networks.
type NetworkConfig struct {
	ID              int
	SSID            string
	Auth            AuthType
	Secret          string
	KeyMgmt         KeyMgmt
	PairwiseCiphers []Cipher
	GroupCiphers    []Cipher
	Protocols       []Protocol
	Enabled         bool
}

// Registered reports whether the OS assigned an enableable id.
func (c NetworkConfig) Registered() bool {
	return c.ID > 0
}

// ConnectionRequest is the input of a connect call.
type ConnectionRequest struct {
	SSID     string
	AuthType string
	Secret   string
}

// HasCredentials reports whether the request carries registration details.
func (r ConnectionRequest) HasCredentials() bool {
	return r.AuthType != ""
}

// Manager is the host WiFi service. Implementations return fresh snapshots
// on every call; nothing above this interface caches OS state.
type Manager interface {
	// IsWifiEnabled checks if the wireless radio is enabled.
	IsWifiEnabled() (bool, error)
	// SetWifiEnabled enables or disables the wireless radio. It may return
	// before the radio changes state.
	SetWifiEnabled(enabled bool) error
	// StartScan asks the OS to scan. An error means the request was refused.
	StartScan() error
	// ScanResults returns the current scan snapshot in OS order.
	ScanResults() ([]ScanRecord, error)
	// ConfiguredNetworks returns the OS list of known networks.
	ConfiguredNetworks() ([]NetworkConfig, error)
	// AddNetwork submits a new configuration and returns its id.
	AddNetwork(cfg NetworkConfig) (int, error)
	// EnableNetwork enables a configured network, disabling all others when
	// exclusive is set.
	EnableNetwork(id int, exclusive bool) error
	// DisableNetwork disables a configured network.
	DisableNetwork(id int) error
	// SaveConfiguration persists the configured network list.
	SaveConfiguration() error
}

// ScanNotifier is implemented by managers that signal scan completion.
type ScanNotifier interface {
	// SubscribeScanResults calls fn whenever a scan completes. The returned
	// unsubscribe func must be safe to call from within fn.
	SubscribeScanResults(fn func()) (unsubscribe func(), err error)
}
