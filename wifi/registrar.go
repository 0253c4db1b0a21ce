package wifi

import "log/slog"

// NewPSKConfig builds a WPA/WPA2-Personal configuration for ssid.
func NewPSKConfig(ssid, secret string) NetworkConfig {
	return NetworkConfig{
		ID:              InvalidNetworkID,
		SSID:            ssid,
		Auth:            AuthWPA,
		Secret:          secret,
		KeyMgmt:         KeyMgmtWPAPSK,
		PairwiseCiphers: []Cipher{CipherTKIP, CipherCCMP},
		GroupCiphers:    []Cipher{CipherTKIP, CipherCCMP},
		Protocols:       []Protocol{ProtocolRSN},
		Enabled:         true,
	}
}

// RegisterNetwork adds ssid to the configured network list and returns its
// id. Only WPA-PSK is supported; other auth types are rejected before the
// manager is touched. An existing entry for ssid is reused.
func RegisterNetwork(m Manager, ssid string, auth AuthType, secret string) (int, error) {
	switch auth {
	case AuthWPA:
	case AuthWEP:
		return InvalidNetworkID, NewRequestError(ErrUnsupportedAuthType, nil, "WEP unsupported")
	default:
		return InvalidNetworkID, NewRequestError(ErrUnsupportedAuthType, nil, "Authentication Type Not Supported: %s", auth)
	}

	id, err := FindNetworkID(m, ssid)
	if err != nil {
		return InvalidNetworkID, NewRequestError(ErrRegistrationFailed, err, "Error trying to register network: %s", ssid)
	}
	if id != InvalidNetworkID {
		slog.Debug("network already configured", "ssid", ssid, "id", id)
		return id, nil
	}

	id, err = m.AddNetwork(NewPSKConfig(ssid, secret))
	if err != nil || id <= 0 {
		return InvalidNetworkID, NewRequestError(ErrRegistrationFailed, err, "Error trying to register network: %s", ssid)
	}

	if err := m.SaveConfiguration(); err != nil {
		slog.Warn("failed to save network configuration", "ssid", ssid, "error", err)
	}
	slog.Info("registered network", "ssid", ssid, "id", id)
	return id, nil
}

// RegisterRequest registers the network described by req.
func RegisterRequest(m Manager, req ConnectionRequest) (int, error) {
	auth := ParseAuthType(req.AuthType)
	if auth == AuthUnknown {
		return InvalidNetworkID, NewRequestError(ErrUnsupportedAuthType, nil, "Authentication Type Not Supported: %s", req.AuthType)
	}
	return RegisterNetwork(m, req.SSID, auth, req.Secret)
}
