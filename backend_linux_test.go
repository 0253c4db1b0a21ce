//go:build linux && !mock

package main

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifibridge/internal/config"
	"github.com/shazow/wifibridge/wifi"
	"github.com/shazow/wifibridge/wifi/mock"
)

type backendCalls struct {
	nm       int
	wpa      int
	wpaIface string
}

func stubBackends(t *testing.T, nmErr error) *backendCalls {
	t.Helper()
	calls := &backendCalls{}
	origNM, origWPA := newNetworkManager, newWPA
	t.Cleanup(func() { newNetworkManager, newWPA = origNM, origWPA })

	newNetworkManager = func(logger *slog.Logger) (wifi.Manager, error) {
		calls.nm++
		if nmErr != nil {
			return nil, nmErr
		}
		return mock.NewEmpty(), nil
	}
	newWPA = func(iface string, logger *slog.Logger) (wifi.Manager, error) {
		calls.wpa++
		calls.wpaIface = iface
		return mock.NewEmpty(), nil
	}
	return calls
}

func TestGetManager(t *testing.T) {
	logger := slog.Default()

	t.Run("networkmanager ignores interface", func(t *testing.T) {
		calls := stubBackends(t, nil)
		_, err := GetManager(&config.Config{Backend: "networkmanager", Interface: "wlan0"}, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, calls.nm)
		assert.Equal(t, 0, calls.wpa)
	})

	t.Run("wpa uses interface", func(t *testing.T) {
		calls := stubBackends(t, nil)
		_, err := GetManager(&config.Config{Backend: "wpa", Interface: "wlp3s0"}, logger)
		require.NoError(t, err)
		assert.Equal(t, 0, calls.nm)
		assert.Equal(t, "wlp3s0", calls.wpaIface)
	})

	t.Run("auto prefers networkmanager", func(t *testing.T) {
		calls := stubBackends(t, nil)
		_, err := GetManager(&config.Config{Backend: "auto", Interface: "wlan0"}, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, calls.nm)
		assert.Equal(t, 0, calls.wpa)
	})

	t.Run("auto falls back to wpa", func(t *testing.T) {
		calls := stubBackends(t, errors.New("no system bus"))
		_, err := GetManager(&config.Config{Backend: "auto", Interface: "wlan0"}, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, calls.wpa)
		assert.Equal(t, "wlan0", calls.wpaIface)
	})

	t.Run("unknown", func(t *testing.T) {
		stubBackends(t, nil)
		_, err := GetManager(&config.Config{Backend: "iwd"}, logger)
		assert.ErrorIs(t, err, wifi.ErrNotSupported)
	})
}
