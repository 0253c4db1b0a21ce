//go:build linux && !mock

package main

import (
	"fmt"
	"log/slog"

	"github.com/shazow/wifibridge/internal/config"
	"github.com/shazow/wifibridge/wifi"
	"github.com/shazow/wifibridge/wifi/networkmanager"
	"github.com/shazow/wifibridge/wifi/wpa"
)

// NetworkManager picks its own wireless device; -interface only names the
// wpa_supplicant interface.
var (
	newNetworkManager = func(logger *slog.Logger) (wifi.Manager, error) {
		m, err := networkmanager.New("", logger)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	newWPA = func(iface string, logger *slog.Logger) (wifi.Manager, error) {
		m, err := wpa.New(iface, logger)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
)

func GetManager(cfg *config.Config, logger *slog.Logger) (wifi.Manager, error) {
	switch cfg.Backend {
	case "networkmanager":
		return newNetworkManager(logger)
	case "wpa":
		return newWPA(cfg.Interface, logger)
	case "", "auto":
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", cfg.Backend, wifi.ErrNotSupported)
	}

	m, err := newNetworkManager(logger)
	if err == nil {
		return m, nil
	}
	logger.Warn("failed to initialize networkmanager backend, falling back to wpa_supplicant", "error", err)
	// If NetworkManager is not running, talk to wpa_supplicant directly
	return newWPA(cfg.Interface, logger)
}
