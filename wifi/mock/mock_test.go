package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/shazow/wifibridge/wifi"
)

func newTestManager(t *testing.T) *MockManager {
	t.Helper()
	m, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	m.ActionSleep = 0
	return m
}

func TestNew(t *testing.T) {
	m := newTestManager(t)
	if len(m.ConfiguredList) == 0 {
		t.Fatal("New() returned no configured networks")
	}
	for _, c := range m.ConfiguredList {
		if c.SSID != wifi.QuoteSSID(wifi.NormalizeSSID(c.SSID)) {
			t.Errorf("expected stored SSID %s to be quoted", c.SSID)
		}
		if !c.Registered() {
			t.Errorf("expected %s to have a valid id, got %d", c.SSID, c.ID)
		}
	}
}

func TestAddNetwork(t *testing.T) {
	m := newTestManager(t)
	before := len(m.ConfiguredList)

	id, err := m.AddNetwork(wifi.NewPSKConfig("new-network", "password"))
	if err != nil {
		t.Fatalf("AddNetwork() failed: %v", err)
	}
	if id != 3 {
		t.Errorf("expected id 3, got %d", id)
	}
	if len(m.ConfiguredList) != before+1 {
		t.Fatalf("expected %d configured networks, got %d", before+1, len(m.ConfiguredList))
	}
	added := m.ConfiguredList[len(m.ConfiguredList)-1]
	if added.SSID != `"new-network"` {
		t.Errorf("expected quoted SSID, got %s", added.SSID)
	}
	if added.Secret != `"password"` {
		t.Errorf("expected quoted secret, got %s", added.Secret)
	}
	if m.AddCalls() != 1 {
		t.Errorf("expected 1 add call, got %d", m.AddCalls())
	}

	m.RejectAdd = true
	id, err = m.AddNetwork(wifi.NewPSKConfig("rejected", "password"))
	if err != nil || id != wifi.InvalidNetworkID {
		t.Errorf("expected rejection with -1, got %d, %v", id, err)
	}
}

func TestEnableNetwork(t *testing.T) {
	m := newTestManager(t)

	if err := m.EnableNetwork(1, false); err != nil {
		t.Fatalf("EnableNetwork() failed: %v", err)
	}
	if err := m.EnableNetwork(2, false); err != nil {
		t.Fatalf("EnableNetwork() failed: %v", err)
	}
	if !m.IsEnabled(1) || !m.IsEnabled(2) {
		t.Fatal("expected both networks to be enabled")
	}

	if err := m.EnableNetwork(2, true); err != nil {
		t.Fatalf("EnableNetwork() failed: %v", err)
	}
	if m.IsEnabled(1) {
		t.Error("exclusive enable should disable other networks")
	}
	if m.ExclusiveNetworkID != 2 {
		t.Errorf("expected exclusive network 2, got %d", m.ExclusiveNetworkID)
	}

	err := m.EnableNetwork(42, true)
	if !errors.Is(err, wifi.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDisableNetwork(t *testing.T) {
	m := newTestManager(t)
	if err := m.EnableNetwork(1, true); err != nil {
		t.Fatalf("EnableNetwork() failed: %v", err)
	}
	if err := m.DisableNetwork(1); err != nil {
		t.Fatalf("DisableNetwork() failed: %v", err)
	}
	if m.IsEnabled(1) {
		t.Error("expected network to be disabled")
	}
	if m.ExclusiveNetworkID != 0 {
		t.Errorf("expected no exclusive network, got %d", m.ExclusiveNetworkID)
	}
	if err := m.DisableNetwork(42); !errors.Is(err, wifi.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScanNotification(t *testing.T) {
	m := newTestManager(t)

	fired := make(chan struct{}, 4)
	unsubscribe, err := m.SubscribeScanResults(func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("SubscribeScanResults() failed: %v", err)
	}
	if err := m.StartScan(); err != nil {
		t.Fatalf("StartScan() failed: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scan notification not delivered")
	}

	unsubscribe()
	if m.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", m.Subscribers())
	}
}

func TestUnsubscribeFromCallback(t *testing.T) {
	m := newTestManager(t)

	done := make(chan struct{})
	var unsubscribe func()
	unsubscribe, err := m.SubscribeScanResults(func() {
		unsubscribe()
		close(done)
	})
	if err != nil {
		t.Fatalf("SubscribeScanResults() failed: %v", err)
	}
	m.CompleteScan()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
	if m.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", m.Subscribers())
	}
}

func TestStartScanRadioOff(t *testing.T) {
	m := newTestManager(t)
	if err := m.SetWifiEnabled(false); err != nil {
		t.Fatalf("SetWifiEnabled() failed: %v", err)
	}
	if err := m.StartScan(); !errors.Is(err, wifi.ErrWirelessDisabled) {
		t.Errorf("expected ErrWirelessDisabled, got %v", err)
	}
}

func TestRadioDelay(t *testing.T) {
	m := newTestManager(t)
	m.WirelessEnabled = false
	m.RadioDelay = 2

	if err := m.SetWifiEnabled(true); err != nil {
		t.Fatalf("SetWifiEnabled() failed: %v", err)
	}
	if on, _ := m.IsWifiEnabled(); on {
		t.Fatal("radio should not be up after the first poll")
	}
	if on, _ := m.IsWifiEnabled(); !on {
		t.Fatal("radio should be up after the second poll")
	}
}
