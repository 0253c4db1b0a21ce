package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifibridge/bridge"
	"github.com/shazow/wifibridge/internal/render"
	"github.com/shazow/wifibridge/wifi"
	"github.com/shazow/wifibridge/wifi/mock"
)

func newTestDispatcher(m *mock.MockManager) *bridge.Dispatcher {
	return bridge.New(m, bridge.Options{
		ScanMode:    wifi.ScanNotify,
		ScanTimeout: 5 * time.Second,
		Exclusive:   true,
	})
}

func testRecords() []wifi.ScanRecord {
	return []wifi.ScanRecord{
		{SSID: "Weak", BSSID: "00:00:00:00:00:01", Capabilities: "[ESS]", Frequency: 2412, Level: -80},
		{SSID: "Strong", BSSID: "00:00:00:00:00:02", Capabilities: "[WPA2-PSK-CCMP][ESS]", Frequency: 5180, Level: -40},
	}
}

func TestRunScanJSON(t *testing.T) {
	m := mock.NewEmpty()
	m.VisibleNetworks = testRecords()
	var buf bytes.Buffer

	err := runScan(context.Background(), &buf, newTestDispatcher(m), nil, true, true)
	require.NoError(t, err)

	var got []wifi.ScanRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Strong", got[0].SSID)
	assert.Equal(t, "Weak", got[1].SSID)
}

func TestRunScanEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	err := runScan(context.Background(), &buf, newTestDispatcher(mock.NewEmpty()), nil, true, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestRunScanTable(t *testing.T) {
	m := mock.NewEmpty()
	m.VisibleNetworks = testRecords()
	var buf bytes.Buffer

	table := &render.Table{Theme: render.NewDefaultTheme()}
	err := runScan(context.Background(), &buf, newTestDispatcher(m), table, false, false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Weak", "unsorted output keeps OS order")
	assert.Contains(t, lines[2], "Strong")
}

func TestRunConnect(t *testing.T) {
	m := mock.NewEmpty()
	var buf bytes.Buffer
	d := newTestDispatcher(m)

	err := runConnect(context.Background(), &buf, d, wifi.ConnectionRequest{SSID: "Office", AuthType: "WPA", Secret: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "Network Office registered and connected!\n", buf.String())
	assert.Equal(t, 1, m.AddCalls())

	buf.Reset()
	err = runConnect(context.Background(), &buf, d, wifi.ConnectionRequest{SSID: "Office"})
	require.NoError(t, err)
	assert.Equal(t, "Network Office connected!\n", buf.String())

	err = runConnect(context.Background(), &buf, d, wifi.ConnectionRequest{SSID: "Nowhere"})
	require.Error(t, err)
	assert.Equal(t, "Could not connect to network: Nowhere", wifi.Message(err))
}

func TestRunQR(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runQR(&buf, "Office", "", "hunter2", false))
	assert.NotEmpty(t, buf.String())

	assert.Error(t, runQR(&buf, "Office", "wpa2", "hunter2", false))
}

func TestRunQRWithoutBackend(t *testing.T) {
	require.NoError(t, run([]string{"-backend", "none", "qr", "-secret", "hunter2", "Office"}))
}

func TestRunConnectAuthWithoutSecret(t *testing.T) {
	err := run([]string{"-backend", "none", "connect", "-auth", "WPA", "Office"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires -secret")
}
