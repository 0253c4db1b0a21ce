package wifi_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifibridge/wifi"
	"github.com/shazow/wifibridge/wifi/mock"
)

func TestRegisterNetwork_WPARoundTrip(t *testing.T) {
	m := mock.NewEmpty()

	id, err := wifi.RegisterNetwork(m, "Office", wifi.AuthWPA, "secret123")
	require.NoError(t, err)
	assert.Greater(t, id, 0)
	assert.Equal(t, 1, m.Saved)

	found, err := wifi.FindNetworkID(m, "Office")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	networks, err := m.ConfiguredNetworks()
	require.NoError(t, err)
	require.Len(t, networks, 1)
	cfg := networks[0]
	assert.Equal(t, wifi.KeyMgmtWPAPSK, cfg.KeyMgmt)
	assert.ElementsMatch(t, []wifi.Cipher{wifi.CipherTKIP, wifi.CipherCCMP}, cfg.PairwiseCiphers)
	assert.ElementsMatch(t, []wifi.Cipher{wifi.CipherTKIP, wifi.CipherCCMP}, cfg.GroupCiphers)
	assert.Equal(t, []wifi.Protocol{wifi.ProtocolRSN}, cfg.Protocols)
}

func TestRegisterNetwork_ReusesExisting(t *testing.T) {
	m := mock.NewEmpty()
	m.AddConfigured(5, "Home")

	id, err := wifi.RegisterNetwork(m, "Home", wifi.AuthWPA, "whatever")
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	assert.Equal(t, 0, m.AddCalls())
}

func TestRegisterNetwork_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		auth    wifi.AuthType
		secret  string
		message string
	}{
		{name: "wep", auth: wifi.AuthWEP, secret: "x", message: "WEP unsupported"},
		{name: "wep no secret", auth: wifi.AuthWEP, secret: "", message: "WEP unsupported"},
		{name: "open", auth: wifi.AuthOpen, secret: "", message: "Authentication Type Not Supported: OPEN"},
		{name: "unknown", auth: wifi.AuthUnknown, secret: "secret123", message: "Authentication Type Not Supported: UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.NewEmpty()
			m.ConfiguredNetworksError = errors.New("must not be called")

			id, err := wifi.RegisterNetwork(m, "Office", tt.auth, tt.secret)
			assert.Equal(t, wifi.InvalidNetworkID, id)
			require.ErrorIs(t, err, wifi.ErrUnsupportedAuthType)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, 0, m.AddCalls())
		})
	}
}

func TestRegisterRequest_UnknownAuthEchoed(t *testing.T) {
	m := mock.NewEmpty()

	id, err := wifi.RegisterRequest(m, wifi.ConnectionRequest{SSID: "Office", AuthType: "WPA3", Secret: "x"})
	assert.Equal(t, wifi.InvalidNetworkID, id)
	require.ErrorIs(t, err, wifi.ErrUnsupportedAuthType)
	assert.Equal(t, "Authentication Type Not Supported: WPA3", err.Error())
}

func TestRegisterNetwork_Rejected(t *testing.T) {
	m := mock.NewEmpty()
	m.RejectAdd = true

	id, err := wifi.RegisterNetwork(m, "Office", wifi.AuthWPA, "secret123")
	assert.Equal(t, wifi.InvalidNetworkID, id)
	require.ErrorIs(t, err, wifi.ErrRegistrationFailed)
	assert.Equal(t, "Error trying to register network: Office", err.Error())
	assert.Equal(t, 0, m.Saved)
}

func TestRegisterNetwork_AddError(t *testing.T) {
	m := mock.NewEmpty()
	m.AddNetworkError = errors.New("permission denied")

	_, err := wifi.RegisterNetwork(m, "Office", wifi.AuthWPA, "secret123")
	require.ErrorIs(t, err, wifi.ErrRegistrationFailed)
	assert.ErrorIs(t, err, m.AddNetworkError)
}

func TestRegisterNetwork_SaveErrorIsNotFatal(t *testing.T) {
	m := mock.NewEmpty()
	m.SaveError = errors.New("read-only")

	id, err := wifi.RegisterNetwork(m, "Office", wifi.AuthWPA, "secret123")
	require.NoError(t, err)
	assert.Greater(t, id, 0)
}

func TestParseAuthType(t *testing.T) {
	assert.Equal(t, wifi.AuthWPA, wifi.ParseAuthType("WPA"))
	assert.Equal(t, wifi.AuthWEP, wifi.ParseAuthType("WEP"))
	assert.Equal(t, wifi.AuthOpen, wifi.ParseAuthType("OPEN"))
	assert.Equal(t, wifi.AuthUnknown, wifi.ParseAuthType("wpa"))
	assert.Equal(t, wifi.AuthUnknown, wifi.ParseAuthType(""))
	assert.Equal(t, "WPA", wifi.AuthWPA.String())
}
