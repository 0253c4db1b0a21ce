package wifi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityInfoCapabilities(t *testing.T) {
	tests := []struct {
		name string
		info SecurityInfo
		want string
	}{
		{"open", SecurityInfo{}, "[ESS]"},
		{"wep", SecurityInfo{Privacy: true}, "[WEP][ESS]"},
		{"wpa2", SecurityInfo{RSNKeyMgmt: []string{"PSK"}, RSNCiphers: []string{"CCMP"}, Privacy: true}, "[WPA2-PSK-CCMP][ESS]"},
		{
			"mixed",
			SecurityInfo{
				WPAKeyMgmt: []string{"PSK"}, WPACiphers: []string{"TKIP"},
				RSNKeyMgmt: []string{"PSK"}, RSNCiphers: []string{"CCMP", "TKIP"},
			},
			"[WPA-PSK-TKIP][WPA2-PSK-CCMP+TKIP][ESS]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Capabilities())
		})
	}
}

func TestAuthFromCapabilities(t *testing.T) {
	assert.Equal(t, AuthWPA, AuthFromCapabilities("[WPA2-PSK-CCMP][ESS]"))
	assert.Equal(t, AuthWPA, AuthFromCapabilities("[WPA-PSK-TKIP][ESS]"))
	assert.Equal(t, AuthWEP, AuthFromCapabilities("[WEP][ESS]"))
	assert.Equal(t, AuthOpen, AuthFromCapabilities("[ESS]"))
	assert.Equal(t, AuthOpen, AuthFromCapabilities(""))
}
