package wifi

import "fmt"

// FindNetworkID returns the id of the configured network for ssid, or
// InvalidNetworkID if there is none. The configured list is read on every
// call. If several entries match, the last one in OS order wins.
func FindNetworkID(m Manager, ssid string) (int, error) {
	networks, err := m.ConfiguredNetworks()
	if err != nil {
		return InvalidNetworkID, fmt.Errorf("failed to list configured networks: %w", err)
	}

	match := NetworkConfig{ID: InvalidNetworkID}
	for _, n := range networks {
		if SameSSID(n.SSID, ssid) {
			match = n
		}
	}
	if !match.Registered() {
		return InvalidNetworkID, nil
	}
	return match.ID, nil
}
